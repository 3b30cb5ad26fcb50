package marketplaceservice

import (
	"context"

	"github.com/google/uuid"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

// Service defines the marketplace operations.
type Service interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*marketplacedb.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error)
	RecordLogin(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error)

	CreateJob(ctx context.Context, req CreateJobRequest) (*marketplacedb.Job, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*JobDetails, error)
	ListJobs(ctx context.Context, filter marketplacedb.JobFilter) ([]marketplacedb.Job, error)
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*marketplacedb.Bid, error)
	ListBids(ctx context.Context, jobID uuid.UUID) ([]marketplacedb.Bid, error)
	AcceptBid(ctx context.Context, clientID, jobID, bidID uuid.UUID) (*marketplacedb.Job, error)
	AddMilestone(ctx context.Context, req AddMilestoneRequest) (*marketplacedb.Milestone, error)
	ReleaseMilestone(ctx context.Context, clientID, jobID, milestoneID uuid.UUID) (*marketplacedb.Earning, error)
	CompleteJob(ctx context.Context, clientID, jobID uuid.UUID) (*marketplacedb.Job, error)
	CancelJob(ctx context.Context, actorID, jobID uuid.UUID) (*marketplacedb.Job, error)
	GetEarningsSummary(ctx context.Context, userID uuid.UUID) (*marketplacedb.EarningsSummary, error)

	SubmitReview(ctx context.Context, req SubmitReviewRequest) (*marketplacedb.Review, error)
	OpenDispute(ctx context.Context, req OpenDisputeRequest) (*marketplacedb.Dispute, error)
	ResolveDispute(ctx context.Context, disputeID uuid.UUID, status marketplacedomain.DisputeStatus) (*marketplacedb.Dispute, error)
	VerifyBadge(ctx context.Context, userID uuid.UUID, badge marketplacedomain.BadgeType) (*marketplacedb.VerificationBadge, error)
	AddEndorsement(ctx context.Context, req AddEndorsementRequest) (*marketplacedb.Endorsement, error)

	ListFAQs(ctx context.Context, category string) ([]marketplacedb.FAQ, error)
	CreateFAQ(ctx context.Context, req CreateFAQRequest) (*marketplacedb.FAQ, error)
}
