package trustscoredomain

import (
	"math"
	"time"
)

const (
	// DefaultInactivityDays is how long a user may be inactive before decay.
	DefaultInactivityDays = 30
	decayPerWeek          = 0.01
	minDecayFactor        = 0.7
	// MaxHistory is the number of history entries kept in the stats document.
	MaxHistory = 10
)

// DaysInactive counts whole days between lastActive and now.
func DaysInactive(lastActive, now time.Time) int {
	if !now.After(lastActive) {
		return 0
	}
	return int(now.Sub(lastActive) / (24 * time.Hour))
}

// Inactive reports whether more than inactivityDays have passed since
// lastActive.
func Inactive(lastActive, now time.Time, inactivityDays int) bool {
	return now.Sub(lastActive) > time.Duration(inactivityDays)*24*time.Hour
}

// WeeksInactive is floor(days/7).
func WeeksInactive(days int) int {
	if days <= 0 {
		return 0
	}
	return days / 7
}

// DecayFactor is 1 - 1% per inactive week, never below 0.7.
func DecayFactor(weeksInactive int) float64 {
	return math.Max(minDecayFactor, 1-float64(weeksInactive)*decayPerWeek)
}

// DecayedScore applies the decay factor for weeksInactive to score.
func DecayedScore(score, weeksInactive int) int {
	return clampScore(float64(score) * DecayFactor(weeksInactive))
}

// DecayBase is the score decay starts from: the most recent calculated
// score, so repeated passes over the same inactivity do not compound.
// Records written before BaseScore existed fall back to the history.
func DecayBase(r *Record) int {
	if r.BaseScore > 0 {
		return r.BaseScore
	}
	for i := len(r.History) - 1; i >= 0; i-- {
		if r.History[i].Source == SourceCalculated {
			return r.History[i].Score
		}
	}
	return r.Score
}

// AppendHistory adds entry and keeps the newest MaxHistory entries.
func AppendHistory(history []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	out := append(append([]HistoryEntry(nil), history...), entry)
	if len(out) > MaxHistory {
		out = out[len(out)-MaxHistory:]
	}
	return out
}
