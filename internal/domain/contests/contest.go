package contests

import (
	"time"
)

const (
	// MinDuration is the shortest allowed distance between creation and endTime.
	MinDuration = time.Hour
	// MaxDuration is the longest allowed distance between creation and endTime.
	MaxDuration = 2 * 365 * 24 * time.Hour
)

// Contest is owned by the contest service. Every other service that tracks
// contests holds a replica updated only through consumed events.
type Contest struct {
	ID          string
	OwnerID     string
	Description string
	Place       string
	Image       string // target image URL
	StartTime   time.Time
	EndTime     time.Time
	StatusOpen  bool
	ThumbsUp    int
	ThumbsDown  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateEndTime enforces the creation-time window: endTime must fall
// between one hour and two years after now. Enforced at creation only.
func ValidateEndTime(endTime, now time.Time) error {
	if endTime.Before(now.Add(MinDuration)) {
		return ErrEndTimeTooSoon
	}
	if endTime.After(now.Add(MaxDuration)) {
		return ErrEndTimeTooLate
	}
	return nil
}

// Expired reports whether the contest should be closed at now.
func (c *Contest) Expired(now time.Time) bool {
	return c.StatusOpen && c.EndTime.Before(now)
}

// Close transitions the contest to closed. The transition is monotonic:
// closing an already closed contest reports false and changes nothing.
func (c *Contest) Close() bool {
	if !c.StatusOpen {
		return false
	}
	c.StatusOpen = false
	return true
}

// Patch carries the partial update the owner may apply after creation.
// Nil fields are left untouched on the stored contest.
type Patch struct {
	Place *string
	Image *string
}

// Apply copies the non-nil patch fields onto the contest.
func (p Patch) Apply(c *Contest) {
	if p.Place != nil {
		c.Place = *p.Place
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
}

// Vote direction for the thumbs endpoint.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

func ParseVote(value string) (Vote, error) {
	switch Vote(value) {
	case VoteUp, VoteDown:
		return Vote(value), nil
	}
	return "", ErrInvalidVote
}
