package marketplaceservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

// ------------------------
// Fake Marketplace Repo
// ------------------------

type FakeMarketplaceRepo struct {
	trace []string

	// Stats is the stats document served by LockStats and written by SaveStats
	// when no override is set.
	Stats marketplacedb.StatsDocument

	CreateUserFunc            func(ctx context.Context, db bun.IDB, user *marketplacedb.User) error
	GetUserFunc               func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.User, error)
	GetUserByUsernameFunc     func(ctx context.Context, db bun.IDB, username string) (*marketplacedb.User, error)
	UpdateLoginFunc           func(ctx context.Context, db bun.IDB, id uuid.UUID, streak int, at time.Time) error
	TouchActivityFunc         func(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error
	CreateJobFunc             func(ctx context.Context, db bun.IDB, job *marketplacedb.Job) error
	GetJobFunc                func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error)
	GetJobForUpdateFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error)
	ListJobsFunc              func(ctx context.Context, db bun.IDB, filter marketplacedb.JobFilter) ([]marketplacedb.Job, error)
	UpdateJobFunc             func(ctx context.Context, db bun.IDB, job *marketplacedb.Job) error
	CountCompletedJobsFunc    func(ctx context.Context, db bun.IDB, freelancerID uuid.UUID) (int, error)
	CreateBidFunc             func(ctx context.Context, db bun.IDB, bid *marketplacedb.Bid) error
	GetBidFunc                func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Bid, error)
	ListBidsFunc              func(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]marketplacedb.Bid, error)
	UpdateBidStatusFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.BidStatus) error
	RejectOtherBidsFunc       func(ctx context.Context, db bun.IDB, jobID, acceptedBidID uuid.UUID) error
	CreateMilestoneFunc       func(ctx context.Context, db bun.IDB, m *marketplacedb.Milestone) error
	GetMilestoneFunc          func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Milestone, error)
	ListMilestonesFunc        func(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]marketplacedb.Milestone, error)
	MarkMilestoneReleasedFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error
	CreateEarningFunc         func(ctx context.Context, db bun.IDB, e *marketplacedb.Earning) error
	GetEarningsSummaryFunc    func(ctx context.Context, db bun.IDB, userID uuid.UUID, now time.Time) (*marketplacedb.EarningsSummary, error)
	CreateReviewFunc          func(ctx context.Context, db bun.IDB, review *marketplacedb.Review) error
	HasReviewedFunc           func(ctx context.Context, db bun.IDB, jobID, reviewerID uuid.UUID) (bool, error)
	ListReviewsForUserFunc    func(ctx context.Context, db bun.IDB, revieweeID uuid.UUID, limit int) ([]marketplacedb.Review, error)
	CreateDisputeFunc         func(ctx context.Context, db bun.IDB, d *marketplacedb.Dispute) error
	GetDisputeFunc            func(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Dispute, error)
	ResolveDisputeFunc        func(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.DisputeStatus, at time.Time) error
	CreateBadgeFunc           func(ctx context.Context, db bun.IDB, b *marketplacedb.VerificationBadge) error
	ListBadgesFunc            func(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedb.VerificationBadge, error)
	CreateEndorsementFunc     func(ctx context.Context, db bun.IDB, e *marketplacedb.Endorsement) error
	ListEndorsementsFunc      func(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedb.Endorsement, error)
	ListFAQsFunc              func(ctx context.Context, db bun.IDB, category string) ([]marketplacedb.FAQ, error)
	CreateFAQFunc             func(ctx context.Context, db bun.IDB, faq *marketplacedb.FAQ) error
	GetStatsFunc              func(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error)
	LockStatsFunc             func(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error)
	SaveStatsFunc             func(ctx context.Context, db bun.IDB, userID uuid.UUID, doc marketplacedb.StatsDocument) error
	AddXPFunc                 func(ctx context.Context, db bun.IDB, userID uuid.UUID, amount int64) (int64, int, error)
}

func NewFakeMarketplaceRepo() *FakeMarketplaceRepo {
	return &FakeMarketplaceRepo{
		trace: []string{},
	}
}

func (f *FakeMarketplaceRepo) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeMarketplaceRepo) CreateUser(ctx context.Context, db bun.IDB, user *marketplacedb.User) error {
	f.record("CreateUser")
	if f.CreateUserFunc != nil {
		return f.CreateUserFunc(ctx, db, user)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetUser(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.User, error) {
	f.record("GetUser")
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, db, id)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) GetUserByUsername(ctx context.Context, db bun.IDB, username string) (*marketplacedb.User, error) {
	f.record("GetUserByUsername")
	if f.GetUserByUsernameFunc != nil {
		return f.GetUserByUsernameFunc(ctx, db, username)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) UpdateLogin(ctx context.Context, db bun.IDB, id uuid.UUID, streak int, at time.Time) error {
	f.record("UpdateLogin")
	if f.UpdateLoginFunc != nil {
		return f.UpdateLoginFunc(ctx, db, id, streak, at)
	}
	return nil
}

func (f *FakeMarketplaceRepo) TouchActivity(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error {
	f.record("TouchActivity")
	if f.TouchActivityFunc != nil {
		return f.TouchActivityFunc(ctx, db, id, at)
	}
	return nil
}

func (f *FakeMarketplaceRepo) CreateJob(ctx context.Context, db bun.IDB, job *marketplacedb.Job) error {
	f.record("CreateJob")
	if f.CreateJobFunc != nil {
		return f.CreateJobFunc(ctx, db, job)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetJob(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
	f.record("GetJob")
	if f.GetJobFunc != nil {
		return f.GetJobFunc(ctx, db, id)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) GetJobForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Job, error) {
	f.record("GetJobForUpdate")
	if f.GetJobForUpdateFunc != nil {
		return f.GetJobForUpdateFunc(ctx, db, id)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) ListJobs(ctx context.Context, db bun.IDB, filter marketplacedb.JobFilter) ([]marketplacedb.Job, error) {
	f.record("ListJobs")
	if f.ListJobsFunc != nil {
		return f.ListJobsFunc(ctx, db, filter)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) UpdateJob(ctx context.Context, db bun.IDB, job *marketplacedb.Job) error {
	f.record("UpdateJob")
	if f.UpdateJobFunc != nil {
		return f.UpdateJobFunc(ctx, db, job)
	}
	return nil
}

func (f *FakeMarketplaceRepo) CountCompletedJobs(ctx context.Context, db bun.IDB, freelancerID uuid.UUID) (int, error) {
	f.record("CountCompletedJobs")
	if f.CountCompletedJobsFunc != nil {
		return f.CountCompletedJobsFunc(ctx, db, freelancerID)
	}
	return 0, nil
}

func (f *FakeMarketplaceRepo) CreateBid(ctx context.Context, db bun.IDB, bid *marketplacedb.Bid) error {
	f.record("CreateBid")
	if f.CreateBidFunc != nil {
		return f.CreateBidFunc(ctx, db, bid)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetBid(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Bid, error) {
	f.record("GetBid")
	if f.GetBidFunc != nil {
		return f.GetBidFunc(ctx, db, id)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) ListBids(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]marketplacedb.Bid, error) {
	f.record("ListBids")
	if f.ListBidsFunc != nil {
		return f.ListBidsFunc(ctx, db, jobID)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) UpdateBidStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.BidStatus) error {
	f.record("UpdateBidStatus")
	if f.UpdateBidStatusFunc != nil {
		return f.UpdateBidStatusFunc(ctx, db, id, status)
	}
	return nil
}

func (f *FakeMarketplaceRepo) RejectOtherBids(ctx context.Context, db bun.IDB, jobID, acceptedBidID uuid.UUID) error {
	f.record("RejectOtherBids")
	if f.RejectOtherBidsFunc != nil {
		return f.RejectOtherBidsFunc(ctx, db, jobID, acceptedBidID)
	}
	return nil
}

func (f *FakeMarketplaceRepo) CreateMilestone(ctx context.Context, db bun.IDB, m *marketplacedb.Milestone) error {
	f.record("CreateMilestone")
	if f.CreateMilestoneFunc != nil {
		return f.CreateMilestoneFunc(ctx, db, m)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetMilestone(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Milestone, error) {
	f.record("GetMilestone")
	if f.GetMilestoneFunc != nil {
		return f.GetMilestoneFunc(ctx, db, id)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) ListMilestones(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]marketplacedb.Milestone, error) {
	f.record("ListMilestones")
	if f.ListMilestonesFunc != nil {
		return f.ListMilestonesFunc(ctx, db, jobID)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) MarkMilestoneReleased(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error {
	f.record("MarkMilestoneReleased")
	if f.MarkMilestoneReleasedFunc != nil {
		return f.MarkMilestoneReleasedFunc(ctx, db, id, at)
	}
	return nil
}

func (f *FakeMarketplaceRepo) CreateEarning(ctx context.Context, db bun.IDB, e *marketplacedb.Earning) error {
	f.record("CreateEarning")
	if f.CreateEarningFunc != nil {
		return f.CreateEarningFunc(ctx, db, e)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetEarningsSummary(ctx context.Context, db bun.IDB, userID uuid.UUID, now time.Time) (*marketplacedb.EarningsSummary, error) {
	f.record("GetEarningsSummary")
	if f.GetEarningsSummaryFunc != nil {
		return f.GetEarningsSummaryFunc(ctx, db, userID, now)
	}
	return &marketplacedb.EarningsSummary{}, nil
}

func (f *FakeMarketplaceRepo) CreateReview(ctx context.Context, db bun.IDB, review *marketplacedb.Review) error {
	f.record("CreateReview")
	if f.CreateReviewFunc != nil {
		return f.CreateReviewFunc(ctx, db, review)
	}
	return nil
}

func (f *FakeMarketplaceRepo) HasReviewed(ctx context.Context, db bun.IDB, jobID, reviewerID uuid.UUID) (bool, error) {
	f.record("HasReviewed")
	if f.HasReviewedFunc != nil {
		return f.HasReviewedFunc(ctx, db, jobID, reviewerID)
	}
	return false, nil
}

func (f *FakeMarketplaceRepo) ListReviewsForUser(ctx context.Context, db bun.IDB, revieweeID uuid.UUID, limit int) ([]marketplacedb.Review, error) {
	f.record("ListReviewsForUser")
	if f.ListReviewsForUserFunc != nil {
		return f.ListReviewsForUserFunc(ctx, db, revieweeID, limit)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) CreateDispute(ctx context.Context, db bun.IDB, d *marketplacedb.Dispute) error {
	f.record("CreateDispute")
	if f.CreateDisputeFunc != nil {
		return f.CreateDisputeFunc(ctx, db, d)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetDispute(ctx context.Context, db bun.IDB, id uuid.UUID) (*marketplacedb.Dispute, error) {
	f.record("GetDispute")
	if f.GetDisputeFunc != nil {
		return f.GetDisputeFunc(ctx, db, id)
	}
	return nil, marketplacedb.ErrNotFound
}

func (f *FakeMarketplaceRepo) ResolveDispute(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.DisputeStatus, at time.Time) error {
	f.record("ResolveDispute")
	if f.ResolveDisputeFunc != nil {
		return f.ResolveDisputeFunc(ctx, db, id, status, at)
	}
	return nil
}

func (f *FakeMarketplaceRepo) CreateBadge(ctx context.Context, db bun.IDB, b *marketplacedb.VerificationBadge) error {
	f.record("CreateBadge")
	if f.CreateBadgeFunc != nil {
		return f.CreateBadgeFunc(ctx, db, b)
	}
	return nil
}

func (f *FakeMarketplaceRepo) ListBadges(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedb.VerificationBadge, error) {
	f.record("ListBadges")
	if f.ListBadgesFunc != nil {
		return f.ListBadgesFunc(ctx, db, userID)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) CreateEndorsement(ctx context.Context, db bun.IDB, e *marketplacedb.Endorsement) error {
	f.record("CreateEndorsement")
	if f.CreateEndorsementFunc != nil {
		return f.CreateEndorsementFunc(ctx, db, e)
	}
	return nil
}

func (f *FakeMarketplaceRepo) ListEndorsements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedb.Endorsement, error) {
	f.record("ListEndorsements")
	if f.ListEndorsementsFunc != nil {
		return f.ListEndorsementsFunc(ctx, db, userID)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) ListFAQs(ctx context.Context, db bun.IDB, category string) ([]marketplacedb.FAQ, error) {
	f.record("ListFAQs")
	if f.ListFAQsFunc != nil {
		return f.ListFAQsFunc(ctx, db, category)
	}
	return nil, nil
}

func (f *FakeMarketplaceRepo) CreateFAQ(ctx context.Context, db bun.IDB, faq *marketplacedb.FAQ) error {
	f.record("CreateFAQ")
	if f.CreateFAQFunc != nil {
		return f.CreateFAQFunc(ctx, db, faq)
	}
	return nil
}

func (f *FakeMarketplaceRepo) GetStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error) {
	f.record("GetStats")
	if f.GetStatsFunc != nil {
		return f.GetStatsFunc(ctx, db, userID)
	}
	return marketplacedb.StatsDocument("{}"), nil
}

func (f *FakeMarketplaceRepo) LockStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (marketplacedb.StatsDocument, error) {
	f.record("LockStats")
	if f.LockStatsFunc != nil {
		return f.LockStatsFunc(ctx, db, userID)
	}
	if f.Stats != nil {
		return f.Stats, nil
	}
	return marketplacedb.StatsDocument("{}"), nil
}

func (f *FakeMarketplaceRepo) SaveStats(ctx context.Context, db bun.IDB, userID uuid.UUID, doc marketplacedb.StatsDocument) error {
	f.record("SaveStats")
	if f.SaveStatsFunc != nil {
		return f.SaveStatsFunc(ctx, db, userID, doc)
	}
	f.Stats = doc
	return nil
}

func (f *FakeMarketplaceRepo) AddXP(ctx context.Context, db bun.IDB, userID uuid.UUID, amount int64) (int64, int, error) {
	f.record("AddXP")
	if f.AddXPFunc != nil {
		return f.AddXPFunc(ctx, db, userID, amount)
	}
	return amount, marketplacedomain.LevelForXP(amount), nil
}

// --- Accessors for assertions ---

func (f *FakeMarketplaceRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ marketplacedb.Repository = (*FakeMarketplaceRepo)(nil)
