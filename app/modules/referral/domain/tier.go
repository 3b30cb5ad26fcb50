package referraldomain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// TierPolicy holds the active-referral counts at which each tier starts.
type TierPolicy struct {
	Name     string `json:"name"`
	Silver   int    `json:"silver"`
	Gold     int    `json:"gold"`
	Platinum int    `json:"platinum"`
}

var (
	// ServicePolicy is the default 10/25/50 breakpoint set.
	ServicePolicy = TierPolicy{Name: "service", Silver: 10, Gold: 25, Platinum: 50}
	// QueryLayerPolicy is the 6/16/31 breakpoint set.
	QueryLayerPolicy = TierPolicy{Name: "query_layer", Silver: 6, Gold: 16, Platinum: 31}
)

// PolicyByName resolves a configured policy name. Empty means ServicePolicy.
func PolicyByName(name string) (TierPolicy, error) {
	switch name {
	case "", ServicePolicy.Name:
		return ServicePolicy, nil
	case QueryLayerPolicy.Name:
		return QueryLayerPolicy, nil
	}
	return TierPolicy{}, fmt.Errorf("%w: %q", ErrUnknownTierPolicy, name)
}

// Tier depends on the active referral count only.
func (p TierPolicy) Tier(active int) Tier {
	switch {
	case active >= p.Platinum:
		return TierPlatinum
	case active >= p.Gold:
		return TierGold
	case active >= p.Silver:
		return TierSilver
	default:
		return TierBronze
	}
}

// NextTier returns the tier after the current one and how many more active
// referrals it takes. ok is false at platinum.
func (p TierPolicy) NextTier(active int) (next Tier, needed int, ok bool) {
	switch p.Tier(active) {
	case TierBronze:
		return TierSilver, p.Silver - active, true
	case TierSilver:
		return TierGold, p.Gold - active, true
	case TierGold:
		return TierPlatinum, p.Platinum - active, true
	}
	return "", 0, false
}

// Bonus is what the referrer earns for one conversion.
type Bonus struct {
	XP     int64           `json:"xp"`
	Amount decimal.Decimal `json:"amount"`
}

var conversionBonuses = map[Tier]Bonus{
	TierBronze:   {XP: 50, Amount: decimal.RequireFromString("5.00")},
	TierSilver:   {XP: 75, Amount: decimal.RequireFromString("7.50")},
	TierGold:     {XP: 100, Amount: decimal.RequireFromString("10.00")},
	TierPlatinum: {XP: 150, Amount: decimal.RequireFromString("15.00")},
}

func ConversionBonus(t Tier) Bonus {
	if b, ok := conversionBonuses[t]; ok {
		return b
	}
	return conversionBonuses[TierBronze]
}

// Milestone is a one-time XP payout at a fixed active-referral count.
type Milestone struct {
	Count int   `json:"count"`
	XP    int64 `json:"xp"`
}

var milestones = []Milestone{
	{Count: 5, XP: 250},
	{Count: 10, XP: 500},
	{Count: 25, XP: 1500},
	{Count: 50, XP: 5000},
}

func Milestones() []Milestone {
	return append([]Milestone(nil), milestones...)
}

// NextMilestone returns nil once every milestone has been reached.
func NextMilestone(active int) *Milestone {
	for _, m := range milestones {
		if active < m.Count {
			m := m
			return &m
		}
	}
	return nil
}
