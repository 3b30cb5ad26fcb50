package achievementdomain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogKeysAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range Catalog() {
		assert.False(t, seen[a.Key], "duplicate key %s", a.Key)
		seen[a.Key] = true
		assert.Positive(t, a.XP)
		require.NotEmpty(t, a.Triggers, a.Key)
		for _, tr := range a.Triggers {
			assert.True(t, tr.IsValid(), "%s has invalid trigger %s", a.Key, tr)
		}
	}
	assert.Len(t, seen, 12)
}

func TestForTrigger(t *testing.T) {
	keys := func(as []Achievement) []string {
		var out []string
		for _, a := range as {
			out = append(out, a.Key)
		}
		return out
	}

	assert.Equal(t, []string{"first_job", "rising_pro", "veteran", "high_earner"}, keys(ForTrigger(TriggerJobCompleted)))
	assert.Equal(t, []string{"first_review", "top_rated", "perfect_streak"}, keys(ForTrigger(TriggerReviewReceived)))
	assert.Equal(t, []string{"trusted"}, keys(ForTrigger(TriggerTrustScoreUpdated)))
	assert.Empty(t, ForTrigger(Trigger("nope")))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		key   string
		stats UserStatistics
		want  bool
	}{
		{"first_job", UserStatistics{CompletedJobs: 1}, true},
		{"first_job", UserStatistics{}, false},
		{"rising_pro", UserStatistics{CompletedJobs: 9}, false},
		{"veteran", UserStatistics{CompletedJobs: 50}, true},
		{"top_rated", UserStatistics{ReviewCount: 10, AvgRating: 4.8}, true},
		{"top_rated", UserStatistics{ReviewCount: 10, AvgRating: 4.79}, false},
		{"top_rated", UserStatistics{ReviewCount: 9, AvgRating: 5}, false},
		{"perfect_streak", UserStatistics{FiveStarStreak: 5}, true},
		{"high_earner", UserStatistics{TotalEarnings: decimal.RequireFromString("9999.99")}, false},
		{"high_earner", UserStatistics{TotalEarnings: decimal.RequireFromString("10000.00")}, true},
		{"networker", UserStatistics{ActiveReferrals: 5}, true},
		{"ambassador", UserStatistics{ActiveReferrals: 24}, false},
		{"fully_verified", UserStatistics{VerifiedBadgeTypes: 5}, true},
		{"trusted", UserStatistics{TrustScore: 80}, true},
		{"trusted", UserStatistics{TrustScore: 79}, false},
		{"dedicated", UserStatistics{LoginStreak: 30}, true},
	}

	for _, tt := range tests {
		a, ok := Lookup(tt.key)
		require.True(t, ok, tt.key)
		assert.Equal(t, tt.want, a.Predicate(tt.stats), "%s %+v", tt.key, tt.stats)
	}
}

func TestCatalogReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Key = "mutated"
	a, ok := Lookup("first_job")
	assert.True(t, ok)
	assert.Equal(t, "first_job", a.Key)
}
