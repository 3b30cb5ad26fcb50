package trustscoredomain

import (
	"time"

	"github.com/google/uuid"
)

// Tier is the label derived from a total score.
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// Components is the per-factor breakdown of a score. Every field is 0..100.
type Components struct {
	Reviews      int `json:"reviews"`
	Completion   int `json:"completion"`
	Verification int `json:"verification"`
	Endorsements int `json:"endorsements"`
	Activity     int `json:"activity"`
	Disputes     int `json:"disputes"`
}

// HistorySource records why a history entry was written.
type HistorySource string

const (
	SourceCalculated HistorySource = "calculated"
	SourceDecayed    HistorySource = "decayed"
)

type HistoryEntry struct {
	Score        int           `json:"score"`
	Tier         Tier          `json:"tier"`
	CalculatedAt time.Time     `json:"calculatedAt"`
	Source       HistorySource `json:"source"`
}

// Result is a trust score as returned to callers.
type Result struct {
	UserID          uuid.UUID  `json:"userId"`
	Score           int        `json:"score"`
	Tier            Tier       `json:"tier"`
	Components      Components `json:"components"`
	CalculatedAt    time.Time  `json:"calculatedAt"`
	NextThreshold   int        `json:"nextThreshold"`
	Recommendations []string   `json:"recommendations"`
	DecayedAt       *time.Time `json:"decayedAt,omitempty"`
	IsDefault       bool       `json:"isDefault,omitempty"`
}

// Record is the value stored under the trustScore key of the stats document.
// BaseScore is the last calculated score; decay always starts from it.
type Record struct {
	Score           int            `json:"score"`
	Tier            Tier           `json:"tier"`
	BaseScore       int            `json:"baseScore,omitempty"`
	Components      Components     `json:"components"`
	CalculatedAt    time.Time      `json:"calculatedAt"`
	NextThreshold   int            `json:"nextThreshold"`
	Recommendations []string       `json:"recommendations"`
	DecayedAt       *time.Time     `json:"decayedAt,omitempty"`
	History         []HistoryEntry `json:"history"`
}

// Result converts the stored record for userID.
func (r *Record) Result(userID uuid.UUID) *Result {
	recs := r.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return &Result{
		UserID:          userID,
		Score:           r.Score,
		Tier:            r.Tier,
		Components:      r.Components,
		CalculatedAt:    r.CalculatedAt,
		NextThreshold:   r.NextThreshold,
		Recommendations: recs,
		DecayedAt:       r.DecayedAt,
	}
}

// DecayOutcome reports what a decay pass did to one user.
type DecayOutcome struct {
	UserID        uuid.UUID `json:"userId"`
	Applied       bool      `json:"applied"`
	WeeksInactive int       `json:"weeksInactive"`
	PreviousScore int       `json:"previousScore"`
	Score         int       `json:"score"`
	PreviousTier  Tier      `json:"previousTier"`
	Tier          Tier      `json:"tier"`
}

// DecaySweepSummary totals a decay pass over all inactive users.
type DecaySweepSummary struct {
	Scanned int `json:"scanned"`
	Decayed int `json:"decayed"`
	Failed  int `json:"failed"`
}
