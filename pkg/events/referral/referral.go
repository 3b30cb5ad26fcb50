// Package referralevents defines the topics and payloads published by the
// referral module.
package referralevents

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReferralConvertedV1        = "referral.converted.v1"
	ReferralMilestoneReachedV1 = "referral.milestone.reached.v1"
)

type ReferralConvertedPayloadV1 struct {
	ReferralID      uuid.UUID `json:"referral_id"`
	ReferrerID      uuid.UUID `json:"referrer_id"`
	ReferredUserID  uuid.UUID `json:"referred_user_id"`
	ActiveReferrals int       `json:"active_referrals"`
	Tier            string    `json:"tier"`
	ConvertedAt     time.Time `json:"converted_at"`
}

type ReferralMilestoneReachedPayloadV1 struct {
	ReferrerID uuid.UUID `json:"referrer_id"`
	Milestone  int       `json:"milestone"`
	XP         int64     `json:"xp"`
}
