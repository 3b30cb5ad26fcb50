package marketplacedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
)

// UserRepository reads and writes accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, db bun.IDB, user *User) error
	GetUser(ctx context.Context, db bun.IDB, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, db bun.IDB, username string) (*User, error)
	UpdateLogin(ctx context.Context, db bun.IDB, id uuid.UUID, streak int, at time.Time) error
	TouchActivity(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error
}

// JobRepository covers jobs, bids, milestones and earnings.
type JobRepository interface {
	CreateJob(ctx context.Context, db bun.IDB, job *Job) error
	GetJob(ctx context.Context, db bun.IDB, id uuid.UUID) (*Job, error)
	GetJobForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context, db bun.IDB, filter JobFilter) ([]Job, error)
	UpdateJob(ctx context.Context, db bun.IDB, job *Job) error
	CountCompletedJobs(ctx context.Context, db bun.IDB, freelancerID uuid.UUID) (int, error)

	CreateBid(ctx context.Context, db bun.IDB, bid *Bid) error
	GetBid(ctx context.Context, db bun.IDB, id uuid.UUID) (*Bid, error)
	ListBids(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]Bid, error)
	UpdateBidStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.BidStatus) error
	RejectOtherBids(ctx context.Context, db bun.IDB, jobID, acceptedBidID uuid.UUID) error

	CreateMilestone(ctx context.Context, db bun.IDB, m *Milestone) error
	GetMilestone(ctx context.Context, db bun.IDB, id uuid.UUID) (*Milestone, error)
	ListMilestones(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]Milestone, error)
	MarkMilestoneReleased(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error

	CreateEarning(ctx context.Context, db bun.IDB, e *Earning) error
	GetEarningsSummary(ctx context.Context, db bun.IDB, userID uuid.UUID, now time.Time) (*EarningsSummary, error)
}

// ReputationRepository covers the rows that feed the trust score: reviews,
// disputes, verification badges and endorsements.
type ReputationRepository interface {
	CreateReview(ctx context.Context, db bun.IDB, review *Review) error
	HasReviewed(ctx context.Context, db bun.IDB, jobID, reviewerID uuid.UUID) (bool, error)
	ListReviewsForUser(ctx context.Context, db bun.IDB, revieweeID uuid.UUID, limit int) ([]Review, error)

	CreateDispute(ctx context.Context, db bun.IDB, d *Dispute) error
	GetDispute(ctx context.Context, db bun.IDB, id uuid.UUID) (*Dispute, error)
	ResolveDispute(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.DisputeStatus, at time.Time) error

	CreateBadge(ctx context.Context, db bun.IDB, b *VerificationBadge) error
	ListBadges(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]VerificationBadge, error)

	CreateEndorsement(ctx context.Context, db bun.IDB, e *Endorsement) error
	ListEndorsements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]Endorsement, error)
}

// SupportRepository serves help-center content.
type SupportRepository interface {
	ListFAQs(ctx context.Context, db bun.IDB, category string) ([]FAQ, error)
	CreateFAQ(ctx context.Context, db bun.IDB, faq *FAQ) error
}

// StatsRepository manages the per-user stats document and XP.
type StatsRepository interface {
	// GetStats returns the document, or an empty one when the user has none.
	GetStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (StatsDocument, error)
	// LockStats creates the row if needed and locks it until the surrounding
	// transaction ends.
	LockStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (StatsDocument, error)
	SaveStats(ctx context.Context, db bun.IDB, userID uuid.UUID, doc StatsDocument) error
	// AddXP credits experience and recomputes the level.
	AddXP(ctx context.Context, db bun.IDB, userID uuid.UUID, amount int64) (xp int64, level int, err error)
}

// Repository is the full marketplace query layer.
type Repository interface {
	UserRepository
	JobRepository
	ReputationRepository
	SupportRepository
	StatsRepository
}
