package referraldomain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RewardType string

const (
	RewardConversion RewardType = "conversion"
	RewardMilestone  RewardType = "milestone"
)

// Reward is one entry of the referralRewards array in the stats document.
type Reward struct {
	ID             uuid.UUID       `json:"id"`
	Type           RewardType      `json:"type"`
	Milestone      int             `json:"milestone,omitempty"`
	ReferredUserID *uuid.UUID      `json:"referredUserId,omitempty"`
	XP             int64           `json:"xp"`
	Amount         decimal.Decimal `json:"amount"`
	Claimed        bool            `json:"claimed"`
	CreatedAt      time.Time       `json:"createdAt"`
	ClaimedAt      *time.Time      `json:"claimedAt,omitempty"`
}

type Rewards []Reward

// HasMilestone reports whether the milestone reward was already granted.
func (rs Rewards) HasMilestone(count int) bool {
	for _, r := range rs {
		if r.Type == RewardMilestone && r.Milestone == count {
			return true
		}
	}
	return false
}

func (rs Rewards) Find(id uuid.UUID) int {
	for i, r := range rs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Pending returns the unclaimed rewards, oldest first.
func (rs Rewards) Pending() Rewards {
	out := Rewards{}
	for _, r := range rs {
		if !r.Claimed {
			out = append(out, r)
		}
	}
	return out
}

// Totals sums XP and cash, split by claim state.
func (rs Rewards) Totals() (claimedXP, pendingXP int64, claimedAmount, pendingAmount decimal.Decimal) {
	claimedAmount, pendingAmount = decimal.Zero, decimal.Zero
	for _, r := range rs {
		if r.Claimed {
			claimedXP += r.XP
			claimedAmount = claimedAmount.Add(r.Amount)
		} else {
			pendingXP += r.XP
			pendingAmount = pendingAmount.Add(r.Amount)
		}
	}
	return claimedXP, pendingXP, claimedAmount, pendingAmount
}

// Grant appends the conversion bonus and any newly crossed milestones for a
// referrer that now has active referrals. It returns the updated list and the
// rewards it added.
func (rs Rewards) Grant(policy TierPolicy, active int, referredUserID uuid.UUID, newID func() uuid.UUID, now time.Time) (Rewards, Rewards) {
	bonus := ConversionBonus(policy.Tier(active))
	referred := referredUserID
	added := Rewards{{
		ID:             newID(),
		Type:           RewardConversion,
		ReferredUserID: &referred,
		XP:             bonus.XP,
		Amount:         bonus.Amount,
		CreatedAt:      now,
	}}
	for _, m := range milestones {
		if active < m.Count || rs.HasMilestone(m.Count) {
			continue
		}
		added = append(added, Reward{
			ID:        newID(),
			Type:      RewardMilestone,
			Milestone: m.Count,
			XP:        m.XP,
			Amount:    decimal.Zero,
			CreatedAt: now,
		})
	}
	out := make(Rewards, 0, len(rs)+len(added))
	out = append(out, rs...)
	out = append(out, added...)
	return out, added
}
