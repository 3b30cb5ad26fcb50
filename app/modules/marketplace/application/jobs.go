package marketplaceservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	"github.com/escrowhub/api/pkg/results"
)

func (s *MarketplaceService) CreateJob(ctx context.Context, req CreateJobRequest) (*marketplacedb.Job, error) {
	return execute(s, ctx, "CreateJob", req.ClientID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Job, error], error) {
		title := strings.TrimSpace(req.Title)
		if title == "" || req.ClientID == uuid.Nil {
			return failure[*marketplacedb.Job](marketplacedomain.ErrMissingField)
		}
		if !req.Budget.IsPositive() {
			return failure[*marketplacedb.Job](marketplacedomain.ErrInvalidAmount)
		}
		if _, err := s.repo.GetUser(ctx, db, req.ClientID); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Job](err)
			}
			return infraError[*marketplacedb.Job]("failed to get client", err)
		}

		job := &marketplacedb.Job{
			ID:          uuid.New(),
			ClientID:    req.ClientID,
			Title:       title,
			Description: req.Description,
			Budget:      req.Budget,
			Status:      marketplacedomain.JobStatusOpen,
			CreatedAt:   s.now(),
		}
		if err := s.repo.CreateJob(ctx, db, job); err != nil {
			return infraError[*marketplacedb.Job]("failed to create job", err)
		}
		if err := s.touch(ctx, db, req.ClientID); err != nil {
			return infraError[*marketplacedb.Job]("failed to touch client", err)
		}
		return success(job)
	})
}

// GetJob returns the job together with its bids and milestones.
func (s *MarketplaceService) GetJob(ctx context.Context, jobID uuid.UUID) (*JobDetails, error) {
	return execute(s, ctx, "GetJob", jobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*JobDetails, error], error) {
		job, err := s.repo.GetJob(ctx, db, jobID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*JobDetails](err)
			}
			return infraError[*JobDetails]("failed to get job", err)
		}
		bids, err := s.repo.ListBids(ctx, db, jobID)
		if err != nil {
			return infraError[*JobDetails]("failed to list bids", err)
		}
		milestones, err := s.repo.ListMilestones(ctx, db, jobID)
		if err != nil {
			return infraError[*JobDetails]("failed to list milestones", err)
		}
		return success(&JobDetails{Job: job, Bids: bids, Milestones: milestones})
	})
}

func (s *MarketplaceService) ListJobs(ctx context.Context, filter marketplacedb.JobFilter) ([]marketplacedb.Job, error) {
	return execute(s, ctx, "ListJobs", string(filter.Status), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]marketplacedb.Job, error], error) {
		if filter.Status != "" && !filter.Status.IsValid() {
			return failure[[]marketplacedb.Job](marketplacedomain.ErrInvalidStatus)
		}
		jobs, err := s.repo.ListJobs(ctx, db, filter)
		if err != nil {
			return infraError[[]marketplacedb.Job]("failed to list jobs", err)
		}
		if jobs == nil {
			jobs = []marketplacedb.Job{}
		}
		return success(jobs)
	})
}

func (s *MarketplaceService) PlaceBid(ctx context.Context, req PlaceBidRequest) (*marketplacedb.Bid, error) {
	return execute(s, ctx, "PlaceBid", req.JobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Bid, error], error) {
		if !req.Amount.IsPositive() {
			return failure[*marketplacedb.Bid](marketplacedomain.ErrInvalidAmount)
		}
		job, err := s.repo.GetJob(ctx, db, req.JobID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Bid](err)
			}
			return infraError[*marketplacedb.Bid]("failed to get job", err)
		}
		if job.Status != marketplacedomain.JobStatusOpen {
			return failure[*marketplacedb.Bid](marketplacedomain.ErrJobNotOpen)
		}
		if job.ClientID == req.FreelancerID {
			return failure[*marketplacedb.Bid](marketplacedomain.ErrOwnJob)
		}

		bid := &marketplacedb.Bid{
			ID:           uuid.New(),
			JobID:        req.JobID,
			FreelancerID: req.FreelancerID,
			Amount:       req.Amount,
			Message:      req.Message,
			Status:       marketplacedomain.BidStatusPending,
			CreatedAt:    s.now(),
		}
		if err := s.repo.CreateBid(ctx, db, bid); err != nil {
			if errors.Is(err, marketplacedb.ErrDuplicate) {
				return failure[*marketplacedb.Bid](marketplacedomain.ErrBidAlreadyExists)
			}
			return infraError[*marketplacedb.Bid]("failed to create bid", err)
		}
		if err := s.touch(ctx, db, req.FreelancerID); err != nil {
			return infraError[*marketplacedb.Bid]("failed to touch freelancer", err)
		}
		return success(bid)
	})
}

func (s *MarketplaceService) ListBids(ctx context.Context, jobID uuid.UUID) ([]marketplacedb.Bid, error) {
	return execute(s, ctx, "ListBids", jobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]marketplacedb.Bid, error], error) {
		bids, err := s.repo.ListBids(ctx, db, jobID)
		if err != nil {
			return infraError[[]marketplacedb.Bid]("failed to list bids", err)
		}
		if bids == nil {
			bids = []marketplacedb.Bid{}
		}
		return success(bids)
	})
}

// AcceptBid assigns the bidding freelancer, starts the job and rejects every
// other pending bid.
func (s *MarketplaceService) AcceptBid(ctx context.Context, clientID, jobID, bidID uuid.UUID) (*marketplacedb.Job, error) {
	return execute(s, ctx, "AcceptBid", jobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Job, error], error) {
		job, fail, err := s.lockClientJob(ctx, db, clientID, jobID)
		if fail != nil || err != nil {
			return results.OperationResult[*marketplacedb.Job, error]{Failure: fail}, err
		}
		if job.Status != marketplacedomain.JobStatusOpen {
			return failure[*marketplacedb.Job](marketplacedomain.ErrJobNotOpen)
		}

		bid, err := s.repo.GetBid(ctx, db, bidID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Job](err)
			}
			return infraError[*marketplacedb.Job]("failed to get bid", err)
		}
		if bid.JobID != job.ID {
			return failure[*marketplacedb.Job](marketplacedb.ErrNotFound)
		}
		if bid.Status != marketplacedomain.BidStatusPending {
			return failure[*marketplacedb.Job](marketplacedomain.ErrBidNotPending)
		}

		if err := s.repo.UpdateBidStatus(ctx, db, bid.ID, marketplacedomain.BidStatusAccepted); err != nil {
			return infraError[*marketplacedb.Job]("failed to accept bid", err)
		}
		if err := s.repo.RejectOtherBids(ctx, db, job.ID, bid.ID); err != nil {
			return infraError[*marketplacedb.Job]("failed to reject other bids", err)
		}

		now := s.now()
		freelancerID := bid.FreelancerID
		job.FreelancerID = &freelancerID
		job.Status = marketplacedomain.JobStatusInProgress
		job.StartedAt = &now
		if err := s.repo.UpdateJob(ctx, db, job); err != nil {
			return infraError[*marketplacedb.Job]("failed to start job", err)
		}
		return success(job)
	})
}

func (s *MarketplaceService) AddMilestone(ctx context.Context, req AddMilestoneRequest) (*marketplacedb.Milestone, error) {
	return execute(s, ctx, "AddMilestone", req.JobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Milestone, error], error) {
		if strings.TrimSpace(req.Title) == "" {
			return failure[*marketplacedb.Milestone](marketplacedomain.ErrMissingField)
		}
		if !req.Amount.IsPositive() {
			return failure[*marketplacedb.Milestone](marketplacedomain.ErrInvalidAmount)
		}
		job, fail, err := s.lockClientJob(ctx, db, req.ClientID, req.JobID)
		if fail != nil || err != nil {
			return results.OperationResult[*marketplacedb.Milestone, error]{Failure: fail}, err
		}
		if job.Status != marketplacedomain.JobStatusOpen && job.Status != marketplacedomain.JobStatusInProgress {
			return failure[*marketplacedb.Milestone](marketplacedomain.ErrInvalidTransition)
		}

		m := &marketplacedb.Milestone{
			ID:        uuid.New(),
			JobID:     job.ID,
			Title:     strings.TrimSpace(req.Title),
			Amount:    req.Amount,
			Status:    marketplacedomain.MilestoneStatusFunded,
			Position:  req.Position,
			CreatedAt: s.now(),
		}
		if err := s.repo.CreateMilestone(ctx, db, m); err != nil {
			return infraError[*marketplacedb.Milestone]("failed to create milestone", err)
		}
		return success(m)
	})
}

// ReleaseMilestone pays one funded milestone to the assigned freelancer.
func (s *MarketplaceService) ReleaseMilestone(ctx context.Context, clientID, jobID, milestoneID uuid.UUID) (*marketplacedb.Earning, error) {
	return execute(s, ctx, "ReleaseMilestone", milestoneID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Earning, error], error) {
		job, fail, err := s.lockClientJob(ctx, db, clientID, jobID)
		if fail != nil || err != nil {
			return results.OperationResult[*marketplacedb.Earning, error]{Failure: fail}, err
		}
		if job.Status != marketplacedomain.JobStatusInProgress {
			return failure[*marketplacedb.Earning](marketplacedomain.ErrInvalidTransition)
		}
		if job.FreelancerID == nil {
			return failure[*marketplacedb.Earning](marketplacedomain.ErrNoFreelancer)
		}

		m, err := s.repo.GetMilestone(ctx, db, milestoneID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Earning](err)
			}
			return infraError[*marketplacedb.Earning]("failed to get milestone", err)
		}
		if m.JobID != job.ID {
			return failure[*marketplacedb.Earning](marketplacedb.ErrNotFound)
		}

		earning, err := s.releaseMilestone(ctx, db, job, m)
		if err != nil {
			if errors.Is(err, marketplacedomain.ErrMilestoneReleased) {
				return failure[*marketplacedb.Earning](err)
			}
			return infraError[*marketplacedb.Earning]("failed to release milestone", err)
		}
		return success(earning)
	})
}

func (s *MarketplaceService) releaseMilestone(ctx context.Context, db bun.IDB, job *marketplacedb.Job, m *marketplacedb.Milestone) (*marketplacedb.Earning, error) {
	if m.Status == marketplacedomain.MilestoneStatusReleased {
		return nil, marketplacedomain.ErrMilestoneReleased
	}
	now := s.now()
	if err := s.repo.MarkMilestoneReleased(ctx, db, m.ID, now); err != nil {
		if errors.Is(err, marketplacedb.ErrNoRowsAffected) {
			return nil, marketplacedomain.ErrMilestoneReleased
		}
		return nil, err
	}
	milestoneID := m.ID
	earning := &marketplacedb.Earning{
		ID:          uuid.New(),
		UserID:      *job.FreelancerID,
		JobID:       job.ID,
		MilestoneID: &milestoneID,
		Amount:      m.Amount,
		CreatedAt:   now,
	}
	if err := s.repo.CreateEarning(ctx, db, earning); err != nil {
		return nil, err
	}
	return earning, nil
}

// CompleteJob releases every funded milestone, or pays the accepted bid when
// the job has no milestones, then marks the job completed.
func (s *MarketplaceService) CompleteJob(ctx context.Context, clientID, jobID uuid.UUID) (*marketplacedb.Job, error) {
	var event *marketplaceevents.JobCompletedPayloadV1

	job, err := execute(s, ctx, "CompleteJob", jobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Job, error], error) {
		job, fail, err := s.lockClientJob(ctx, db, clientID, jobID)
		if fail != nil || err != nil {
			return results.OperationResult[*marketplacedb.Job, error]{Failure: fail}, err
		}
		if job.FreelancerID == nil {
			return failure[*marketplacedb.Job](marketplacedomain.ErrNoFreelancer)
		}
		if !marketplacedomain.CanTransition(job.Status, marketplacedomain.JobStatusCompleted) {
			return failure[*marketplacedb.Job](marketplacedomain.ErrInvalidTransition)
		}

		paid, err := s.settleJob(ctx, db, job)
		if err != nil {
			return infraError[*marketplacedb.Job]("failed to settle job", err)
		}

		now := s.now()
		job.Status = marketplacedomain.JobStatusCompleted
		job.CompletedAt = &now
		if err := s.repo.UpdateJob(ctx, db, job); err != nil {
			return infraError[*marketplacedb.Job]("failed to complete job", err)
		}
		if err := s.touch(ctx, db, job.ClientID, *job.FreelancerID); err != nil {
			return infraError[*marketplacedb.Job]("failed to touch job parties", err)
		}

		event = &marketplaceevents.JobCompletedPayloadV1{
			JobID:        job.ID,
			ClientID:     job.ClientID,
			FreelancerID: *job.FreelancerID,
			Paid:         paid,
			CompletedAt:  now,
		}
		return success(job)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{topic: marketplaceevents.JobCompletedV1, payload: event})
	return job, nil
}

// settleJob pays out what is still owed on job and returns the amount paid.
func (s *MarketplaceService) settleJob(ctx context.Context, db bun.IDB, job *marketplacedb.Job) (decimal.Decimal, error) {
	milestones, err := s.repo.ListMilestones(ctx, db, job.ID)
	if err != nil {
		return decimal.Zero, err
	}

	paid := decimal.Zero
	if len(milestones) > 0 {
		for i := range milestones {
			if milestones[i].Status != marketplacedomain.MilestoneStatusFunded {
				continue
			}
			earning, err := s.releaseMilestone(ctx, db, job, &milestones[i])
			if err != nil {
				return decimal.Zero, err
			}
			paid = paid.Add(earning.Amount)
		}
		return paid, nil
	}

	amount := job.Budget
	bids, err := s.repo.ListBids(ctx, db, job.ID)
	if err != nil {
		return decimal.Zero, err
	}
	for _, b := range bids {
		if b.Status == marketplacedomain.BidStatusAccepted {
			amount = b.Amount
			break
		}
	}
	earning := &marketplacedb.Earning{
		ID:        uuid.New(),
		UserID:    *job.FreelancerID,
		JobID:     job.ID,
		Amount:    amount,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateEarning(ctx, db, earning); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// CancelJob cancels a job on behalf of either party.
func (s *MarketplaceService) CancelJob(ctx context.Context, actorID, jobID uuid.UUID) (*marketplacedb.Job, error) {
	job, err := execute(s, ctx, "CancelJob", jobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Job, error], error) {
		job, err := s.repo.GetJobForUpdate(ctx, db, jobID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Job](err)
			}
			return infraError[*marketplacedb.Job]("failed to get job", err)
		}
		if !job.IsParty(actorID) {
			return failure[*marketplacedb.Job](marketplacedomain.ErrNotJobParty)
		}
		if !marketplacedomain.CanTransition(job.Status, marketplacedomain.JobStatusCancelled) {
			return failure[*marketplacedb.Job](marketplacedomain.ErrInvalidTransition)
		}

		now := s.now()
		job.Status = marketplacedomain.JobStatusCancelled
		job.CancelledAt = &now
		if err := s.repo.UpdateJob(ctx, db, job); err != nil {
			return infraError[*marketplacedb.Job]("failed to cancel job", err)
		}
		return success(job)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{
		topic: marketplaceevents.JobCancelledV1,
		payload: &marketplaceevents.JobCancelledPayloadV1{
			JobID:        job.ID,
			ClientID:     job.ClientID,
			FreelancerID: job.FreelancerID,
			CancelledAt:  *job.CancelledAt,
		},
	})
	return job, nil
}

func (s *MarketplaceService) GetEarningsSummary(ctx context.Context, userID uuid.UUID) (*marketplacedb.EarningsSummary, error) {
	return execute(s, ctx, "GetEarningsSummary", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.EarningsSummary, error], error) {
		summary, err := s.repo.GetEarningsSummary(ctx, db, userID, s.now())
		if err != nil {
			return infraError[*marketplacedb.EarningsSummary]("failed to get earnings summary", err)
		}
		return success(summary)
	})
}

// lockClientJob loads and locks a job that clientID owns. A non-nil fail is a
// domain failure.
func (s *MarketplaceService) lockClientJob(ctx context.Context, db bun.IDB, clientID, jobID uuid.UUID) (*marketplacedb.Job, *error, error) {
	job, err := s.repo.GetJobForUpdate(ctx, db, jobID)
	if err != nil {
		if errors.Is(err, marketplacedb.ErrNotFound) {
			return nil, &err, nil
		}
		return nil, nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job.ClientID != clientID {
		fail := marketplacedomain.ErrNotJobParty
		return nil, &fail, nil
	}
	return job, nil, nil
}
