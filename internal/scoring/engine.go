// Package scoring computes a submission's score against the contest's
// target image: a tag-similarity percentage from an external auto-tagging
// API, weighted with a timeliness bonus for early submission.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultMinConfidence is the cutoff below which tags are ignored.
	DefaultMinConfidence = 30.0

	matchWeight = 0.9
	timeWeight  = 0.1
)

var (
	// ErrNoTargetImage is returned when the contest has no target image
	// or the submission has no upload yet.
	ErrNoTargetImage = errors.New("submission and target image are both required for scoring")
	// ErrDuplicateImage rejects an exact duplicate of the target image
	// (100% tag match). No score is saved and no event published.
	ErrDuplicateImage = errors.New("submission matches the target image exactly")
)

// Tag is one auto-tagging label with its confidence (0-100).
type Tag struct {
	Label      string
	Confidence float64
}

// Tagger fetches auto-tagging results for an image URL.
type Tagger interface {
	Tags(ctx context.Context, imageURL string) ([]Tag, error)
}

// FilterTags drops tags below the confidence cutoff.
func FilterTags(tags []Tag, minConfidence float64) []Tag {
	var kept []Tag
	for _, tag := range tags {
		if tag.Confidence >= minConfidence {
			kept = append(kept, tag)
		}
	}
	return kept
}

// PercentageMatch compares two filtered tag sets. For each submission tag
// with a same-label contest tag, the pair counts as a match and contributes
// the absolute confidence difference; the match ratio is then discounted by
// the average difference.
func PercentageMatch(submissionTags, contestTags []Tag) float64 {
	if len(submissionTags) == 0 || len(contestTags) == 0 {
		return 0
	}

	byLabel := make(map[string]float64, len(contestTags))
	for _, tag := range contestTags {
		if _, ok := byLabel[tag.Label]; !ok {
			byLabel[tag.Label] = tag.Confidence
		}
	}

	matchingTags := 0
	confidenceDiffSum := 0.0
	for _, tag := range submissionTags {
		if confidence, ok := byLabel[tag.Label]; ok {
			matchingTags++
			confidenceDiffSum += math.Abs(tag.Confidence - confidence)
		}
	}
	if matchingTags == 0 {
		return 0
	}

	total := len(submissionTags)
	if len(contestTags) > total {
		total = len(contestTags)
	}
	avgDiff := confidenceDiffSum / float64(matchingTags)
	return float64(matchingTags) / float64(total) * (1 - avgDiff/100) * 100
}

// TimeScore rewards early submission: 100 at the contest start, falling
// linearly to 0 at the end. A zero-length contest scores 0 rather than
// dividing by zero.
func TimeScore(startTime, endTime, now time.Time) float64 {
	duration := endTime.Sub(startTime)
	if duration <= 0 {
		return 0
	}
	elapsed := math.Abs(float64(now.Sub(startTime)))
	score := 1 - elapsed/float64(duration)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score * 100
}

// FinalScore combines the similarity match and timeliness bonus, rounded
// to two decimals. It is a pure function of its inputs: identical tag sets
// and times always yield the identical score.
func FinalScore(percentageMatch, timeScore float64) float64 {
	return math.Round((matchWeight*percentageMatch+timeWeight*timeScore)*100) / 100
}

// Scorer runs the full scoring pipeline against a Tagger.
type Scorer struct {
	tagger        Tagger
	minConfidence float64
}

func NewScorer(tagger Tagger, minConfidence float64) *Scorer {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Scorer{tagger: tagger, minConfidence: minConfidence}
}

// Score computes the final score for a submission image against the target
// image. A tagging failure for either image aborts the whole attempt with a
// retryable error rather than proceeding on partial results.
func (s *Scorer) Score(ctx context.Context, submissionImage, targetImage string, startTime, endTime, now time.Time) (float64, error) {
	if submissionImage == "" || targetImage == "" {
		return 0, ErrNoTargetImage
	}

	submissionTags, err := s.tagger.Tags(ctx, submissionImage)
	if err != nil {
		return 0, fmt.Errorf("tag submission image: %w", err)
	}
	contestTags, err := s.tagger.Tags(ctx, targetImage)
	if err != nil {
		return 0, fmt.Errorf("tag target image: %w", err)
	}

	percentageMatch := PercentageMatch(
		FilterTags(submissionTags, s.minConfidence),
		FilterTags(contestTags, s.minConfidence),
	)
	if percentageMatch == 100 {
		return 0, ErrDuplicateImage
	}

	return FinalScore(percentageMatch, TimeScore(startTime, endTime, now)), nil
}
