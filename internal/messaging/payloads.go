package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
)

// Message bodies are JSON entity snapshots. Field names match the wire
// format the services already speak, so replicas written against the old
// deployment keep decoding during a rolling migration.

type UserMessage struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	Role         string `json:"role"`
}

func NewUserMessage(u users.User) UserMessage {
	return UserMessage{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
}

func (m UserMessage) ToDomain() users.User {
	return users.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         users.Role(m.Role),
	}
}

type ContestMessage struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	Place       string    `json:"place,omitempty"`
	Image       string    `json:"image,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	StatusOpen  bool      `json:"statusOpen"`
	ThumbsUp    int       `json:"thumbsUp"`
	ThumbsDown  int       `json:"thumbsDown"`
}

func NewContestMessage(c contests.Contest) ContestMessage {
	return ContestMessage{
		ID:          c.ID,
		Owner:       c.OwnerID,
		Description: c.Description,
		Place:       c.Place,
		Image:       c.Image,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		StatusOpen:  c.StatusOpen,
		ThumbsUp:    c.ThumbsUp,
		ThumbsDown:  c.ThumbsDown,
	}
}

func (m ContestMessage) ToDomain() contests.Contest {
	return contests.Contest{
		ID:          m.ID,
		OwnerID:     m.Owner,
		Description: m.Description,
		Place:       m.Place,
		Image:       m.Image,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		StatusOpen:  m.StatusOpen,
		ThumbsUp:    m.ThumbsUp,
		ThumbsDown:  m.ThumbsDown,
	}
}

// ContestPatchMessage is the partial payload of contest.updated: only the
// fields the owner may change after creation. Absent fields must not
// clobber replica state.
type ContestPatchMessage struct {
	ID    string  `json:"_id"`
	Place *string `json:"place,omitempty"`
	Image *string `json:"image,omitempty"`
}

func (m ContestPatchMessage) ToPatch() contests.Patch {
	return contests.Patch{Place: m.Place, Image: m.Image}
}

type SubmissionMessage struct {
	ID          string  `json:"_id"`
	Contest     string  `json:"contest"`
	Participant string  `json:"participant"`
	Image       string  `json:"image,omitempty"`
	Score       float64 `json:"score"`
}

func NewSubmissionMessage(s submissions.Submission) SubmissionMessage {
	return SubmissionMessage{
		ID:          s.ID,
		Contest:     s.ContestID,
		Participant: s.ParticipantID,
		Image:       s.Image,
		Score:       s.Score,
	}
}

func (m SubmissionMessage) ToDomain() submissions.Submission {
	return submissions.Submission{
		ID:            m.ID,
		ContestID:     m.Contest,
		ParticipantID: m.Participant,
		Image:         m.Image,
		Score:         m.Score,
	}
}

// ContestStatusMessage is emitted by the clock service when a contest
// closes. It is the sole mechanism other services learn about closure.
type ContestStatusMessage struct {
	ContestID string `json:"contestId"`
	Status    bool   `json:"status"`
}

// Encode marshals a payload for publishing.
func Encode(payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return body, nil
}

// Decode unmarshals a consumed message body.
func Decode(body []byte, payload any) error {
	if err := json.Unmarshal(body, payload); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
