package trustscoredomain

import (
	"time"

	"github.com/google/uuid"
)

// Calculate builds the record for freshly computed components, carrying over
// the history of prev when there is one.
func Calculate(prev *Record, c Components, at time.Time) *Record {
	score := Total(c)
	tier := TierFor(score)

	var history []HistoryEntry
	if prev != nil {
		history = prev.History
	}

	return &Record{
		Score:           score,
		Tier:            tier,
		BaseScore:       score,
		Components:      c,
		CalculatedAt:    at,
		NextThreshold:   NextThreshold(score),
		Recommendations: Recommendations(c),
		History: AppendHistory(history, HistoryEntry{
			Score:        score,
			Tier:         tier,
			CalculatedAt: at,
			Source:       SourceCalculated,
		}),
	}
}

// Decay applies inactivity decay to r. The components are left as they were.
// It reports false when the score would not change.
func Decay(r *Record, weeksInactive int, at time.Time) (*Record, bool) {
	base := DecayBase(r)
	score := DecayedScore(base, weeksInactive)
	if score >= r.Score {
		return r, false
	}

	out := *r
	out.BaseScore = base
	out.Score = score
	out.Tier = TierFor(score)
	out.NextThreshold = NextThreshold(score)
	out.DecayedAt = &at
	out.History = AppendHistory(r.History, HistoryEntry{
		Score:        score,
		Tier:         out.Tier,
		CalculatedAt: at,
		Source:       SourceDecayed,
	})
	return &out, true
}

// DefaultResult is returned for users that have never been scored.
func DefaultResult(userID uuid.UUID, at time.Time) *Result {
	return &Result{
		UserID:          userID,
		Score:           NeutralScore,
		Tier:            TierFor(NeutralScore),
		CalculatedAt:    at,
		NextThreshold:   NextThreshold(NeutralScore),
		Recommendations: []string{},
		IsDefault:       true,
	}
}
