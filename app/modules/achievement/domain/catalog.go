package achievementdomain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Trigger is the kind of event that causes achievements to be evaluated.
type Trigger string

const (
	TriggerJobCompleted      Trigger = "job_completed"
	TriggerReviewReceived    Trigger = "review_received"
	TriggerReferralConverted Trigger = "referral_converted"
	TriggerBadgeVerified     Trigger = "badge_verified"
	TriggerTrustScoreUpdated Trigger = "trust_score_updated"
	TriggerUserLogin         Trigger = "user_login"
)

var ErrUnknownTrigger = errors.New("unknown achievement trigger")

func (t Trigger) IsValid() bool {
	switch t {
	case TriggerJobCompleted, TriggerReviewReceived, TriggerReferralConverted,
		TriggerBadgeVerified, TriggerTrustScoreUpdated, TriggerUserLogin:
		return true
	}
	return false
}

// UserStatistics is everything the predicates look at. It is loaded once per
// evaluation.
type UserStatistics struct {
	CompletedJobs      int
	ReviewCount        int
	AvgRating          float64
	FiveStarStreak     int
	TotalEarnings      decimal.Decimal
	ActiveReferrals    int
	VerifiedBadgeTypes int
	TrustScore         int
	LoginStreak        int
}

// Achievement is one entry of the fixed catalog.
type Achievement struct {
	Key         string
	Name        string
	Description string
	XP          int64
	Triggers    []Trigger
	Predicate   func(UserStatistics) bool
}

// Unlocked is an achievement minted by an evaluation.
type Unlocked struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	XP         int64     `json:"xp"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// AchievementView is a catalog entry as seen by one user.
type AchievementView struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	XP          int64      `json:"xp"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

var highEarnerThreshold = decimal.NewFromInt(10000)

var catalog = []Achievement{
	{
		Key: "first_job", Name: "First Job", XP: 50,
		Description: "Complete your first job.",
		Triggers:    []Trigger{TriggerJobCompleted},
		Predicate:   func(s UserStatistics) bool { return s.CompletedJobs >= 1 },
	},
	{
		Key: "rising_pro", Name: "Rising Pro", XP: 200,
		Description: "Complete 10 jobs.",
		Triggers:    []Trigger{TriggerJobCompleted},
		Predicate:   func(s UserStatistics) bool { return s.CompletedJobs >= 10 },
	},
	{
		Key: "veteran", Name: "Veteran", XP: 750,
		Description: "Complete 50 jobs.",
		Triggers:    []Trigger{TriggerJobCompleted},
		Predicate:   func(s UserStatistics) bool { return s.CompletedJobs >= 50 },
	},
	{
		Key: "first_review", Name: "First Review", XP: 25,
		Description: "Receive your first review.",
		Triggers:    []Trigger{TriggerReviewReceived},
		Predicate:   func(s UserStatistics) bool { return s.ReviewCount >= 1 },
	},
	{
		Key: "top_rated", Name: "Top Rated", XP: 500,
		Description: "Receive 10 or more reviews with an average of at least 4.8.",
		Triggers:    []Trigger{TriggerReviewReceived},
		Predicate:   func(s UserStatistics) bool { return s.ReviewCount >= 10 && s.AvgRating >= 4.8 },
	},
	{
		Key: "perfect_streak", Name: "Perfect Streak", XP: 300,
		Description: "Receive five 5-star reviews in a row.",
		Triggers:    []Trigger{TriggerReviewReceived},
		Predicate:   func(s UserStatistics) bool { return s.FiveStarStreak >= 5 },
	},
	{
		Key: "high_earner", Name: "High Earner", XP: 500,
		Description: "Earn $10,000 on the platform.",
		Triggers:    []Trigger{TriggerJobCompleted},
		Predicate:   func(s UserStatistics) bool { return s.TotalEarnings.GreaterThanOrEqual(highEarnerThreshold) },
	},
	{
		Key: "networker", Name: "Networker", XP: 150,
		Description: "Have 5 active referrals.",
		Triggers:    []Trigger{TriggerReferralConverted},
		Predicate:   func(s UserStatistics) bool { return s.ActiveReferrals >= 5 },
	},
	{
		Key: "ambassador", Name: "Ambassador", XP: 600,
		Description: "Have 25 active referrals.",
		Triggers:    []Trigger{TriggerReferralConverted},
		Predicate:   func(s UserStatistics) bool { return s.ActiveReferrals >= 25 },
	},
	{
		Key: "fully_verified", Name: "Fully Verified", XP: 250,
		Description: "Hold every verification badge.",
		Triggers:    []Trigger{TriggerBadgeVerified},
		Predicate:   func(s UserStatistics) bool { return s.VerifiedBadgeTypes >= 5 },
	},
	{
		Key: "trusted", Name: "Trusted", XP: 300,
		Description: "Reach a trust score of 80.",
		Triggers:    []Trigger{TriggerTrustScoreUpdated},
		Predicate:   func(s UserStatistics) bool { return s.TrustScore >= 80 },
	},
	{
		Key: "dedicated", Name: "Dedicated", XP: 200,
		Description: "Log in 30 days in a row.",
		Triggers:    []Trigger{TriggerUserLogin},
		Predicate:   func(s UserStatistics) bool { return s.LoginStreak >= 30 },
	},
}

// Catalog returns every achievement in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// ForTrigger returns the achievements evaluated on trigger.
func ForTrigger(trigger Trigger) []Achievement {
	var out []Achievement
	for _, a := range catalog {
		for _, t := range a.Triggers {
			if t == trigger {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Lookup finds an achievement by key.
func Lookup(key string) (Achievement, bool) {
	for _, a := range catalog {
		if a.Key == key {
			return a, true
		}
	}
	return Achievement{}, false
}
