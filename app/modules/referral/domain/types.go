package referraldomain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

type Link struct {
	Code      string    `json:"code"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

type Referral struct {
	ID             uuid.UUID  `json:"id"`
	ReferrerID     uuid.UUID  `json:"referrerId"`
	ReferredUserID uuid.UUID  `json:"referredUserId"`
	ReferredName   string     `json:"referredName,omitempty"`
	Code           string     `json:"code"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	ConvertedAt    *time.Time `json:"convertedAt,omitempty"`
}

// ConversionOutcome describes what RecordConversion changed. Converted is
// false when the referral was already active.
type ConversionOutcome struct {
	Referral        Referral `json:"referral"`
	Converted       bool     `json:"converted"`
	ActiveReferrals int      `json:"activeReferrals"`
	Tier            Tier     `json:"tier"`
	Rewards         Rewards  `json:"rewards"`
}

type ClaimSummary struct {
	Claimed int             `json:"claimed"`
	XP      int64           `json:"xp"`
	Amount  decimal.Decimal `json:"amount"`
	TotalXP int64           `json:"totalXp"`
	Level   int             `json:"level"`
}

type Counts struct {
	Signups int `json:"signups"`
	Active  int `json:"active"`
}

type Stats struct {
	Clicks              int             `json:"clicks"`
	Signups             int             `json:"signups"`
	ActiveReferrals     int             `json:"activeReferrals"`
	ConversionRate      float64         `json:"conversionRate"`
	Tier                Tier            `json:"tier"`
	NextTier            *Tier           `json:"nextTier,omitempty"`
	ReferralsToNextTier int             `json:"referralsToNextTier"`
	NextMilestone       *Milestone      `json:"nextMilestone,omitempty"`
	XPEarned            int64           `json:"xpEarned"`
	CashEarned          decimal.Decimal `json:"cashEarned"`
	PendingRewards      int             `json:"pendingRewards"`
	PendingXP           int64           `json:"pendingXp"`
	PendingCash         decimal.Decimal `json:"pendingCash"`
}

// BuildStats derives the dashboard numbers. ConversionRate is the percentage
// of signups that became active, rounded to one decimal.
func BuildStats(policy TierPolicy, clicks int, counts Counts, rewards Rewards) Stats {
	claimedXP, pendingXP, claimedAmount, pendingAmount := rewards.Totals()
	st := Stats{
		Clicks:          clicks,
		Signups:         counts.Signups,
		ActiveReferrals: counts.Active,
		Tier:            policy.Tier(counts.Active),
		NextMilestone:   NextMilestone(counts.Active),
		XPEarned:        claimedXP,
		CashEarned:      claimedAmount,
		PendingRewards:  len(rewards.Pending()),
		PendingXP:       pendingXP,
		PendingCash:     pendingAmount,
	}
	if counts.Signups > 0 {
		st.ConversionRate = math.Round(float64(counts.Active)/float64(counts.Signups)*1000) / 10
	}
	if next, needed, ok := policy.NextTier(counts.Active); ok {
		st.NextTier = &next
		st.ReferralsToNextTier = needed
	}
	return st
}

type LeaderboardEntry struct {
	Rank            int       `json:"rank"`
	UserID          uuid.UUID `json:"userId"`
	Username        string    `json:"username"`
	ActiveReferrals int       `json:"activeReferrals"`
	Tier            Tier      `json:"tier"`
}

type Dashboard struct {
	Link            Link               `json:"link"`
	Stats           Stats              `json:"stats"`
	Tiers           TierPolicy         `json:"tiers"`
	Milestones      []Milestone        `json:"milestones"`
	RecentReferrals []Referral         `json:"recentReferrals"`
	Rewards         Rewards            `json:"rewards"`
	TopReferrers    []LeaderboardEntry `json:"topReferrers"`
}

// ReportRow is one line of the referral export.
type ReportRow struct {
	ReferralID       uuid.UUID
	ReferrerID       uuid.UUID
	ReferrerUsername string
	ReferredUserID   uuid.UUID
	ReferredUsername string
	Code             string
	Status           Status
	CreatedAt        time.Time
	ConvertedAt      *time.Time
}
