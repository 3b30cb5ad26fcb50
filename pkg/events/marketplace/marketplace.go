// Package marketplaceevents defines the topics and payloads published by the
// marketplace module.
package marketplaceevents

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	UserRegisteredV1   = "marketplace.user.registered.v1"
	UserLoginV1        = "marketplace.user.login.v1"
	JobCompletedV1     = "marketplace.job.completed.v1"
	JobCancelledV1     = "marketplace.job.cancelled.v1"
	ReviewSubmittedV1  = "marketplace.review.submitted.v1"
	DisputeResolvedV1  = "marketplace.dispute.resolved.v1"
	BadgeVerifiedV1    = "marketplace.badge.verified.v1"
	EndorsementAddedV1 = "marketplace.endorsement.added.v1"
)

// UserRegisteredPayloadV1 is published once per new account. ReferralCode is
// empty when the user signed up without one.
type UserRegisteredPayloadV1 struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	ReferralCode string    `json:"referral_code,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserLoginPayloadV1 struct {
	UserID      uuid.UUID `json:"user_id"`
	LoginStreak int       `json:"login_streak"`
	LoggedInAt  time.Time `json:"logged_in_at"`
}

type JobCompletedPayloadV1 struct {
	JobID        uuid.UUID       `json:"job_id"`
	ClientID     uuid.UUID       `json:"client_id"`
	FreelancerID uuid.UUID       `json:"freelancer_id"`
	Paid         decimal.Decimal `json:"paid"`
	CompletedAt  time.Time       `json:"completed_at"`
}

type JobCancelledPayloadV1 struct {
	JobID        uuid.UUID  `json:"job_id"`
	ClientID     uuid.UUID  `json:"client_id"`
	FreelancerID *uuid.UUID `json:"freelancer_id,omitempty"`
	CancelledAt  time.Time  `json:"cancelled_at"`
}

type ReviewSubmittedPayloadV1 struct {
	ReviewID   uuid.UUID `json:"review_id"`
	JobID      uuid.UUID `json:"job_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
}

type DisputeResolvedPayloadV1 struct {
	DisputeID     uuid.UUID `json:"dispute_id"`
	JobID         uuid.UUID `json:"job_id"`
	RaisedBy      uuid.UUID `json:"raised_by"`
	AgainstUserID uuid.UUID `json:"against_user_id"`
	Status        string    `json:"status"`
}

type BadgeVerifiedPayloadV1 struct {
	UserID    uuid.UUID `json:"user_id"`
	BadgeType string    `json:"badge_type"`
}

type EndorsementAddedPayloadV1 struct {
	UserID     uuid.UUID `json:"user_id"`
	EndorserID uuid.UUID `json:"endorser_id"`
	Skill      string    `json:"skill"`
}
