package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTags(t *testing.T) {
	tags := []Tag{
		{Label: "mountain", Confidence: 92.4},
		{Label: "sky", Confidence: 30},
		{Label: "noise", Confidence: 29.99},
	}

	kept := FilterTags(tags, DefaultMinConfidence)
	require.Len(t, kept, 2)
	assert.Equal(t, "mountain", kept[0].Label)
	assert.Equal(t, "sky", kept[1].Label, "cutoff is inclusive")
}

func TestPercentageMatch(t *testing.T) {
	t.Run("no overlap scores zero", func(t *testing.T) {
		sub := []Tag{{Label: "dog", Confidence: 80}}
		con := []Tag{{Label: "cat", Confidence: 80}}
		assert.Zero(t, PercentageMatch(sub, con))
	})

	t.Run("empty sets score zero", func(t *testing.T) {
		assert.Zero(t, PercentageMatch(nil, []Tag{{Label: "cat", Confidence: 80}}))
		assert.Zero(t, PercentageMatch([]Tag{{Label: "cat", Confidence: 80}}, nil))
	})

	t.Run("identical sets score 100", func(t *testing.T) {
		tags := []Tag{
			{Label: "mountain", Confidence: 92},
			{Label: "snow", Confidence: 71},
		}
		assert.InDelta(t, 100, PercentageMatch(tags, tags), 1e-9)
	})

	t.Run("confidence difference discounts the match", func(t *testing.T) {
		sub := []Tag{{Label: "mountain", Confidence: 90}}
		con := []Tag{{Label: "mountain", Confidence: 70}}
		// 1/1 match ratio, avg diff 20 -> 80.
		assert.InDelta(t, 80, PercentageMatch(sub, con), 1e-9)
	})

	t.Run("ratio uses the larger tag set", func(t *testing.T) {
		sub := []Tag{{Label: "mountain", Confidence: 90}}
		con := []Tag{
			{Label: "mountain", Confidence: 90},
			{Label: "snow", Confidence: 80},
		}
		// 1 match out of max(1,2)=2, no confidence diff -> 50.
		assert.InDelta(t, 50, PercentageMatch(sub, con), 1e-9)
	})
}

func TestTimeScore(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	t.Run("submission at start scores full", func(t *testing.T) {
		assert.InDelta(t, 100, TimeScore(start, end, start), 1e-9)
	})

	t.Run("submission halfway scores half", func(t *testing.T) {
		assert.InDelta(t, 50, TimeScore(start, end, start.Add(5*time.Hour)), 1e-9)
	})

	t.Run("submission at end scores zero", func(t *testing.T) {
		assert.Zero(t, TimeScore(start, end, end))
	})

	t.Run("clamped below zero", func(t *testing.T) {
		assert.Zero(t, TimeScore(start, end, end.Add(time.Hour)))
	})

	t.Run("zero-length contest scores zero", func(t *testing.T) {
		assert.Zero(t, TimeScore(start, start, start))
	})
}

func TestFinalScore(t *testing.T) {
	assert.InDelta(t, 77.0, FinalScore(80, 50), 1e-9)
	assert.InDelta(t, 5.0, FinalScore(0, 50), 1e-9, "zero match still earns the time bonus")
	assert.Equal(t, 12.35, FinalScore(12.345/0.9, 0), "rounded to two decimals")
}

type stubTagger struct {
	tags map[string][]Tag
	err  error
}

func (s *stubTagger) Tags(_ context.Context, imageURL string) ([]Tag, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tags[imageURL], nil
}

func TestScorer(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	t.Run("scores a partial match", func(t *testing.T) {
		tagger := &stubTagger{tags: map[string][]Tag{
			"https://img/sub.jpg": {
				{Label: "mountain", Confidence: 90},
				{Label: "grain", Confidence: 12},
			},
			"https://img/target.jpg": {
				{Label: "mountain", Confidence: 70},
			},
		}}
		scorer := NewScorer(tagger, DefaultMinConfidence)

		score, err := scorer.Score(context.Background(), "https://img/sub.jpg", "https://img/target.jpg", start, end, start.Add(5*time.Hour))
		require.NoError(t, err)
		// match 80, time 50 -> 0.9*80 + 0.1*50.
		assert.Equal(t, 77.0, score)
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		tagger := &stubTagger{tags: map[string][]Tag{
			"a": {{Label: "sea", Confidence: 64.3}, {Label: "boat", Confidence: 55.1}},
			"b": {{Label: "sea", Confidence: 71.8}, {Label: "sunset", Confidence: 48.2}},
		}}
		scorer := NewScorer(tagger, DefaultMinConfidence)

		first, err := scorer.Score(context.Background(), "a", "b", start, end, start.Add(time.Hour))
		require.NoError(t, err)
		second, err := scorer.Score(context.Background(), "a", "b", start, end, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects an exact duplicate of the target", func(t *testing.T) {
		same := []Tag{{Label: "mountain", Confidence: 90}, {Label: "snow", Confidence: 80}}
		tagger := &stubTagger{tags: map[string][]Tag{"a": same, "b": same}}
		scorer := NewScorer(tagger, DefaultMinConfidence)

		_, err := scorer.Score(context.Background(), "a", "b", start, end, start)
		assert.ErrorIs(t, err, ErrDuplicateImage)
	})

	t.Run("aborts when tagging fails", func(t *testing.T) {
		tagger := &stubTagger{err: assert.AnError}
		scorer := NewScorer(tagger, DefaultMinConfidence)

		_, err := scorer.Score(context.Background(), "a", "b", start, end, start)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("requires both images", func(t *testing.T) {
		scorer := NewScorer(&stubTagger{}, DefaultMinConfidence)

		_, err := scorer.Score(context.Background(), "", "b", start, end, start)
		assert.ErrorIs(t, err, ErrNoTargetImage)
		_, err = scorer.Score(context.Background(), "a", "", start, end, start)
		assert.ErrorIs(t, err, ErrNoTargetImage)
	})
}
