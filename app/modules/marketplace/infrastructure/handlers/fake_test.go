package marketplacehandlers

import (
	"context"

	"github.com/google/uuid"

	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	trace []string

	RegisterUserFunc       func(ctx context.Context, req marketplaceservice.RegisterUserRequest) (*marketplacedb.User, error)
	GetUserFunc            func(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error)
	RecordLoginFunc        func(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error)
	CreateJobFunc          func(ctx context.Context, req marketplaceservice.CreateJobRequest) (*marketplacedb.Job, error)
	GetJobFunc             func(ctx context.Context, jobID uuid.UUID) (*marketplaceservice.JobDetails, error)
	ListJobsFunc           func(ctx context.Context, filter marketplacedb.JobFilter) ([]marketplacedb.Job, error)
	PlaceBidFunc           func(ctx context.Context, req marketplaceservice.PlaceBidRequest) (*marketplacedb.Bid, error)
	ListBidsFunc           func(ctx context.Context, jobID uuid.UUID) ([]marketplacedb.Bid, error)
	AcceptBidFunc          func(ctx context.Context, clientID, jobID, bidID uuid.UUID) (*marketplacedb.Job, error)
	AddMilestoneFunc       func(ctx context.Context, req marketplaceservice.AddMilestoneRequest) (*marketplacedb.Milestone, error)
	ReleaseMilestoneFunc   func(ctx context.Context, clientID, jobID, milestoneID uuid.UUID) (*marketplacedb.Earning, error)
	CompleteJobFunc        func(ctx context.Context, clientID, jobID uuid.UUID) (*marketplacedb.Job, error)
	CancelJobFunc          func(ctx context.Context, actorID, jobID uuid.UUID) (*marketplacedb.Job, error)
	GetEarningsSummaryFunc func(ctx context.Context, userID uuid.UUID) (*marketplacedb.EarningsSummary, error)
	SubmitReviewFunc       func(ctx context.Context, req marketplaceservice.SubmitReviewRequest) (*marketplacedb.Review, error)
	OpenDisputeFunc        func(ctx context.Context, req marketplaceservice.OpenDisputeRequest) (*marketplacedb.Dispute, error)
	ResolveDisputeFunc     func(ctx context.Context, disputeID uuid.UUID, status marketplacedomain.DisputeStatus) (*marketplacedb.Dispute, error)
	VerifyBadgeFunc        func(ctx context.Context, userID uuid.UUID, badge marketplacedomain.BadgeType) (*marketplacedb.VerificationBadge, error)
	AddEndorsementFunc     func(ctx context.Context, req marketplaceservice.AddEndorsementRequest) (*marketplacedb.Endorsement, error)
	ListFAQsFunc           func(ctx context.Context, category string) ([]marketplacedb.FAQ, error)
	CreateFAQFunc          func(ctx context.Context, req marketplaceservice.CreateFAQRequest) (*marketplacedb.FAQ, error)
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the service methods called, in order.
func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeService) RegisterUser(ctx context.Context, req marketplaceservice.RegisterUserRequest) (*marketplacedb.User, error) {
	f.record("RegisterUser")
	if f.RegisterUserFunc != nil {
		return f.RegisterUserFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) GetUser(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error) {
	f.record("GetUser")
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeService) RecordLogin(ctx context.Context, userID uuid.UUID) (*marketplacedb.User, error) {
	f.record("RecordLogin")
	if f.RecordLoginFunc != nil {
		return f.RecordLoginFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeService) CreateJob(ctx context.Context, req marketplaceservice.CreateJobRequest) (*marketplacedb.Job, error) {
	f.record("CreateJob")
	if f.CreateJobFunc != nil {
		return f.CreateJobFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) GetJob(ctx context.Context, jobID uuid.UUID) (*marketplaceservice.JobDetails, error) {
	f.record("GetJob")
	if f.GetJobFunc != nil {
		return f.GetJobFunc(ctx, jobID)
	}
	return nil, nil
}

func (f *FakeService) ListJobs(ctx context.Context, filter marketplacedb.JobFilter) ([]marketplacedb.Job, error) {
	f.record("ListJobs")
	if f.ListJobsFunc != nil {
		return f.ListJobsFunc(ctx, filter)
	}
	return nil, nil
}

func (f *FakeService) PlaceBid(ctx context.Context, req marketplaceservice.PlaceBidRequest) (*marketplacedb.Bid, error) {
	f.record("PlaceBid")
	if f.PlaceBidFunc != nil {
		return f.PlaceBidFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) ListBids(ctx context.Context, jobID uuid.UUID) ([]marketplacedb.Bid, error) {
	f.record("ListBids")
	if f.ListBidsFunc != nil {
		return f.ListBidsFunc(ctx, jobID)
	}
	return nil, nil
}

func (f *FakeService) AcceptBid(ctx context.Context, clientID, jobID, bidID uuid.UUID) (*marketplacedb.Job, error) {
	f.record("AcceptBid")
	if f.AcceptBidFunc != nil {
		return f.AcceptBidFunc(ctx, clientID, jobID, bidID)
	}
	return nil, nil
}

func (f *FakeService) AddMilestone(ctx context.Context, req marketplaceservice.AddMilestoneRequest) (*marketplacedb.Milestone, error) {
	f.record("AddMilestone")
	if f.AddMilestoneFunc != nil {
		return f.AddMilestoneFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) ReleaseMilestone(ctx context.Context, clientID, jobID, milestoneID uuid.UUID) (*marketplacedb.Earning, error) {
	f.record("ReleaseMilestone")
	if f.ReleaseMilestoneFunc != nil {
		return f.ReleaseMilestoneFunc(ctx, clientID, jobID, milestoneID)
	}
	return nil, nil
}

func (f *FakeService) CompleteJob(ctx context.Context, clientID, jobID uuid.UUID) (*marketplacedb.Job, error) {
	f.record("CompleteJob")
	if f.CompleteJobFunc != nil {
		return f.CompleteJobFunc(ctx, clientID, jobID)
	}
	return nil, nil
}

func (f *FakeService) CancelJob(ctx context.Context, actorID, jobID uuid.UUID) (*marketplacedb.Job, error) {
	f.record("CancelJob")
	if f.CancelJobFunc != nil {
		return f.CancelJobFunc(ctx, actorID, jobID)
	}
	return nil, nil
}

func (f *FakeService) GetEarningsSummary(ctx context.Context, userID uuid.UUID) (*marketplacedb.EarningsSummary, error) {
	f.record("GetEarningsSummary")
	if f.GetEarningsSummaryFunc != nil {
		return f.GetEarningsSummaryFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeService) SubmitReview(ctx context.Context, req marketplaceservice.SubmitReviewRequest) (*marketplacedb.Review, error) {
	f.record("SubmitReview")
	if f.SubmitReviewFunc != nil {
		return f.SubmitReviewFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) OpenDispute(ctx context.Context, req marketplaceservice.OpenDisputeRequest) (*marketplacedb.Dispute, error) {
	f.record("OpenDispute")
	if f.OpenDisputeFunc != nil {
		return f.OpenDisputeFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) ResolveDispute(ctx context.Context, disputeID uuid.UUID, status marketplacedomain.DisputeStatus) (*marketplacedb.Dispute, error) {
	f.record("ResolveDispute")
	if f.ResolveDisputeFunc != nil {
		return f.ResolveDisputeFunc(ctx, disputeID, status)
	}
	return nil, nil
}

func (f *FakeService) VerifyBadge(ctx context.Context, userID uuid.UUID, badge marketplacedomain.BadgeType) (*marketplacedb.VerificationBadge, error) {
	f.record("VerifyBadge")
	if f.VerifyBadgeFunc != nil {
		return f.VerifyBadgeFunc(ctx, userID, badge)
	}
	return nil, nil
}

func (f *FakeService) AddEndorsement(ctx context.Context, req marketplaceservice.AddEndorsementRequest) (*marketplacedb.Endorsement, error) {
	f.record("AddEndorsement")
	if f.AddEndorsementFunc != nil {
		return f.AddEndorsementFunc(ctx, req)
	}
	return nil, nil
}

func (f *FakeService) ListFAQs(ctx context.Context, category string) ([]marketplacedb.FAQ, error) {
	f.record("ListFAQs")
	if f.ListFAQsFunc != nil {
		return f.ListFAQsFunc(ctx, category)
	}
	return nil, nil
}

func (f *FakeService) CreateFAQ(ctx context.Context, req marketplaceservice.CreateFAQRequest) (*marketplacedb.FAQ, error) {
	f.record("CreateFAQ")
	if f.CreateFAQFunc != nil {
		return f.CreateFAQFunc(ctx, req)
	}
	return nil, nil
}

var _ marketplaceservice.Service = (*FakeService)(nil)
