package marketplacedb

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
)

// User is a marketplace account. Level and XP feed the activity score.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Username     string     `bun:"username,notnull,unique" json:"username"`
	Email        string     `bun:"email,notnull,unique" json:"email"`
	DisplayName  string     `bun:"display_name" json:"display_name"`
	Level        int        `bun:"level,notnull,default:1" json:"level"`
	XP           int64      `bun:"xp,notnull,default:0" json:"xp"`
	LoginStreak  int        `bun:"login_streak,notnull,default:0" json:"login_streak"`
	LastLoginAt  *time.Time `bun:"last_login_at" json:"last_login_at"`
	LastActiveAt time.Time  `bun:"last_active_at,nullzero,notnull,default:current_timestamp" json:"last_active_at"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// UserStats holds the per-user JSON stats document.
type UserStats struct {
	bun.BaseModel `bun:"table:user_stats,alias:us"`

	UserID    uuid.UUID     `bun:"user_id,pk,type:uuid" json:"user_id"`
	Stats     StatsDocument `bun:"stats,notnull" json:"stats"`
	UpdatedAt time.Time     `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID           uuid.UUID                   `bun:"id,pk,type:uuid" json:"id"`
	ClientID     uuid.UUID                   `bun:"client_id,notnull,type:uuid" json:"client_id"`
	FreelancerID *uuid.UUID                  `bun:"freelancer_id,type:uuid" json:"freelancer_id"`
	Title        string                      `bun:"title,notnull" json:"title"`
	Description  string                      `bun:"description" json:"description"`
	Budget       decimal.Decimal             `bun:"budget,notnull,type:numeric(12,2)" json:"budget"`
	Status       marketplacedomain.JobStatus `bun:"status,notnull,default:'open'" json:"status"`
	CreatedAt    time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	StartedAt    *time.Time                  `bun:"started_at" json:"started_at"`
	CompletedAt  *time.Time                  `bun:"completed_at" json:"completed_at"`
	CancelledAt  *time.Time                  `bun:"cancelled_at" json:"cancelled_at"`
}

// IsParty reports whether userID is the client or the assigned freelancer.
func (j *Job) IsParty(userID uuid.UUID) bool {
	if j.ClientID == userID {
		return true
	}
	return j.FreelancerID != nil && *j.FreelancerID == userID
}

// Counterparty returns the other party of the job for userID.
func (j *Job) Counterparty(userID uuid.UUID) (uuid.UUID, bool) {
	if j.FreelancerID == nil {
		return uuid.Nil, false
	}
	switch userID {
	case j.ClientID:
		return *j.FreelancerID, true
	case *j.FreelancerID:
		return j.ClientID, true
	}
	return uuid.Nil, false
}

type Bid struct {
	bun.BaseModel `bun:"table:bids,alias:b"`

	ID           uuid.UUID                   `bun:"id,pk,type:uuid" json:"id"`
	JobID        uuid.UUID                   `bun:"job_id,notnull,type:uuid" json:"job_id"`
	FreelancerID uuid.UUID                   `bun:"freelancer_id,notnull,type:uuid" json:"freelancer_id"`
	Amount       decimal.Decimal             `bun:"amount,notnull,type:numeric(12,2)" json:"amount"`
	Message      string                      `bun:"message" json:"message"`
	Status       marketplacedomain.BidStatus `bun:"status,notnull,default:'pending'" json:"status"`
	CreatedAt    time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type Milestone struct {
	bun.BaseModel `bun:"table:milestones,alias:m"`

	ID         uuid.UUID                         `bun:"id,pk,type:uuid" json:"id"`
	JobID      uuid.UUID                         `bun:"job_id,notnull,type:uuid" json:"job_id"`
	Title      string                            `bun:"title,notnull" json:"title"`
	Amount     decimal.Decimal                   `bun:"amount,notnull,type:numeric(12,2)" json:"amount"`
	Status     marketplacedomain.MilestoneStatus `bun:"status,notnull,default:'funded'" json:"status"`
	Position   int                               `bun:"position,notnull,default:0" json:"position"`
	CreatedAt  time.Time                         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	ReleasedAt *time.Time                        `bun:"released_at" json:"released_at"`
}

type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	JobID      uuid.UUID `bun:"job_id,notnull,type:uuid" json:"job_id"`
	ReviewerID uuid.UUID `bun:"reviewer_id,notnull,type:uuid" json:"reviewer_id"`
	RevieweeID uuid.UUID `bun:"reviewee_id,notnull,type:uuid" json:"reviewee_id"`
	Rating     int       `bun:"rating,notnull" json:"rating"`
	Comment    string    `bun:"comment" json:"comment"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type Earning struct {
	bun.BaseModel `bun:"table:earnings,alias:e"`

	ID          uuid.UUID       `bun:"id,pk,type:uuid" json:"id"`
	UserID      uuid.UUID       `bun:"user_id,notnull,type:uuid" json:"user_id"`
	JobID       uuid.UUID       `bun:"job_id,notnull,type:uuid" json:"job_id"`
	MilestoneID *uuid.UUID      `bun:"milestone_id,type:uuid" json:"milestone_id"`
	Amount      decimal.Decimal `bun:"amount,notnull,type:numeric(12,2)" json:"amount"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// EarningsSummary aggregates a user's earnings.
type EarningsSummary struct {
	Total        decimal.Decimal `bun:"total" json:"total"`
	Count        int             `bun:"count" json:"count"`
	Last30Days   decimal.Decimal `bun:"last_30_days" json:"last_30_days"`
	LastEarnedAt *time.Time      `bun:"last_earned_at" json:"last_earned_at"`
}

type Dispute struct {
	bun.BaseModel `bun:"table:disputes,alias:d"`

	ID            uuid.UUID                       `bun:"id,pk,type:uuid" json:"id"`
	JobID         uuid.UUID                       `bun:"job_id,notnull,type:uuid" json:"job_id"`
	RaisedBy      uuid.UUID                       `bun:"raised_by,notnull,type:uuid" json:"raised_by"`
	AgainstUserID uuid.UUID                       `bun:"against_user_id,notnull,type:uuid" json:"against_user_id"`
	Reason        string                          `bun:"reason" json:"reason"`
	Status        marketplacedomain.DisputeStatus `bun:"status,notnull,default:'open'" json:"status"`
	CreatedAt     time.Time                       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	ResolvedAt    *time.Time                      `bun:"resolved_at" json:"resolved_at"`
}

// VerificationBadge records a passed verification. Duplicate rows can exist.
type VerificationBadge struct {
	bun.BaseModel `bun:"table:verification_badges,alias:vb"`

	ID         uuid.UUID                   `bun:"id,pk,type:uuid" json:"id"`
	UserID     uuid.UUID                   `bun:"user_id,notnull,type:uuid" json:"user_id"`
	BadgeType  marketplacedomain.BadgeType `bun:"badge_type,notnull" json:"badge_type"`
	VerifiedAt time.Time                   `bun:"verified_at,nullzero,notnull,default:current_timestamp" json:"verified_at"`
}

type Endorsement struct {
	bun.BaseModel `bun:"table:endorsements,alias:en"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID     uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	EndorserID uuid.UUID `bun:"endorser_id,notnull,type:uuid" json:"endorser_id"`
	Skill      string    `bun:"skill,notnull" json:"skill"`
	Rating     int       `bun:"rating,notnull" json:"rating"`
	Verified   bool      `bun:"verified,notnull,default:false" json:"verified"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// FAQ is a support article shown in the help center.
type FAQ struct {
	bun.BaseModel `bun:"table:faqs,alias:f"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Category  string    `bun:"category,notnull" json:"category"`
	Question  string    `bun:"question,notnull" json:"question"`
	Answer    string    `bun:"answer,notnull" json:"answer"`
	Position  int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// JobFilter narrows ListJobs.
type JobFilter struct {
	Status   marketplacedomain.JobStatus
	ClientID *uuid.UUID
	Limit    int
	Offset   int
}
