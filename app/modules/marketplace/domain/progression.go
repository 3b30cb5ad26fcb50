package marketplacedomain

import "time"

// XPPerLevel is the experience needed to gain one level.
const XPPerLevel = 500

// LevelForXP derives the user level from accumulated experience. Everyone
// starts at level 1.
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return 1 + int(xp/XPPerLevel)
}

// NextLoginStreak returns the streak after a login at now. A login on the
// calendar day after the previous one extends the streak, a second login on
// the same day keeps it, anything else restarts it at 1. Days are UTC.
func NextLoginStreak(current int, lastLogin *time.Time, now time.Time) int {
	if lastLogin == nil || current <= 0 {
		return 1
	}
	last := truncateDay(*lastLogin)
	today := truncateDay(now)
	switch {
	case today.Equal(last):
		return current
	case today.Equal(last.AddDate(0, 0, 1)):
		return current + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ReviewStreak tracks consecutive five-star reviews a user has received.
type ReviewStreak struct {
	Current    int `json:"current"`
	Best       int `json:"best"`
	LastRating int `json:"lastRating"`
}

// Apply folds a newly received rating into the streak.
func (s ReviewStreak) Apply(rating int) ReviewStreak {
	if rating == MaxRating {
		s.Current++
	} else {
		s.Current = 0
	}
	if s.Current > s.Best {
		s.Best = s.Current
	}
	s.LastRating = rating
	return s
}
