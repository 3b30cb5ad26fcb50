package trustscoredomain

import marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"

// ReviewStats aggregates the reviews a user received.
type ReviewStats struct {
	Count   int     `bun:"count"`
	Average float64 `bun:"average"`
}

// JobStats counts the jobs a user took part in as client or freelancer.
type JobStats struct {
	Total     int `bun:"total"`
	Completed int `bun:"completed"`
	Cancelled int `bun:"cancelled"`
}

// EndorsementStats aggregates the endorsements a user received.
type EndorsementStats struct {
	Count           int     `bun:"count"`
	Average         float64 `bun:"average"`
	Verified        int     `bun:"verified"`
	UniqueEndorsers int     `bun:"unique_endorsers"`
}

// ActivityStats feeds the activity component.
type ActivityStats struct {
	LoginStreak     int `bun:"login_streak"`
	Level           int `bun:"level"`
	RecentCompleted int `bun:"recent_completed"`
}

// DisputeStats counts disputes raised against a user.
type DisputeStats struct {
	Total     int `bun:"total"`
	Upheld    int `bun:"upheld"`
	Dismissed int `bun:"dismissed"`
}

// BadgeSet is the set of badge types a user holds. Duplicate rows collapse.
type BadgeSet map[marketplacedomain.BadgeType]struct{}

// NewBadgeSet builds a set from possibly repeated badge types.
func NewBadgeSet(types ...marketplacedomain.BadgeType) BadgeSet {
	s := make(BadgeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}
