// Package trustscoreevents defines the topics and payloads published by the
// trust score module.
package trustscoreevents

import (
	"time"

	"github.com/google/uuid"
)

const (
	TrustScoreCalculatedV1 = "trustscore.calculated.v1"
	TrustScoreDecayedV1    = "trustscore.decayed.v1"

	// RecalculationRequestedV1 carries one user per message so a failure for
	// one user does not redeliver the work done for the others.
	RecalculationRequestedV1 = "trustscore.recalculation.requested.v1"
)

type RecalculationRequestedPayloadV1 struct {
	UserID uuid.UUID `json:"user_id"`
	Reason string    `json:"reason"`
}

type TrustScoreCalculatedPayloadV1 struct {
	UserID        uuid.UUID `json:"user_id"`
	Score         int       `json:"score"`
	Tier          string    `json:"tier"`
	PreviousScore *int      `json:"previous_score,omitempty"`
	PreviousTier  string    `json:"previous_tier,omitempty"`
	CalculatedAt  time.Time `json:"calculated_at"`
}

type TrustScoreDecayedPayloadV1 struct {
	UserID        uuid.UUID `json:"user_id"`
	PreviousScore int       `json:"previous_score"`
	Score         int       `json:"score"`
	PreviousTier  string    `json:"previous_tier"`
	Tier          string    `json:"tier"`
	WeeksInactive int       `json:"weeks_inactive"`
	DecayedAt     time.Time `json:"decayed_at"`
}
