package marketplaceservice

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	"github.com/escrowhub/api/pkg/results"
)

// SubmitReview records a review of the other party of a completed job and
// folds the rating into the reviewee's five-star streak.
func (s *MarketplaceService) SubmitReview(ctx context.Context, req SubmitReviewRequest) (*marketplacedb.Review, error) {
	review, err := execute(s, ctx, "SubmitReview", req.JobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Review, error], error) {
		if !marketplacedomain.ValidRating(req.Rating) {
			return failure[*marketplacedb.Review](marketplacedomain.ErrInvalidRating)
		}
		job, err := s.repo.GetJob(ctx, db, req.JobID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Review](err)
			}
			return infraError[*marketplacedb.Review]("failed to get job", err)
		}
		if job.Status != marketplacedomain.JobStatusCompleted {
			return failure[*marketplacedb.Review](marketplacedomain.ErrJobNotCompleted)
		}
		revieweeID, ok := job.Counterparty(req.ReviewerID)
		if !ok {
			return failure[*marketplacedb.Review](marketplacedomain.ErrNotJobParty)
		}

		reviewed, err := s.repo.HasReviewed(ctx, db, job.ID, req.ReviewerID)
		if err != nil {
			return infraError[*marketplacedb.Review]("failed to check existing review", err)
		}
		if reviewed {
			return failure[*marketplacedb.Review](marketplacedomain.ErrAlreadyReviewed)
		}

		review := &marketplacedb.Review{
			ID:         uuid.New(),
			JobID:      job.ID,
			ReviewerID: req.ReviewerID,
			RevieweeID: revieweeID,
			Rating:     req.Rating,
			Comment:    req.Comment,
			CreatedAt:  s.now(),
		}
		if err := s.repo.CreateReview(ctx, db, review); err != nil {
			if errors.Is(err, marketplacedb.ErrDuplicate) {
				return failure[*marketplacedb.Review](marketplacedomain.ErrAlreadyReviewed)
			}
			return infraError[*marketplacedb.Review]("failed to create review", err)
		}

		if err := s.updateReviewStreak(ctx, db, revieweeID, req.Rating); err != nil {
			return infraError[*marketplacedb.Review]("failed to update review streak", err)
		}
		if err := s.touch(ctx, db, req.ReviewerID); err != nil {
			return infraError[*marketplacedb.Review]("failed to touch reviewer", err)
		}
		return success(review)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{
		topic: marketplaceevents.ReviewSubmittedV1,
		payload: &marketplaceevents.ReviewSubmittedPayloadV1{
			ReviewID:   review.ID,
			JobID:      review.JobID,
			ReviewerID: review.ReviewerID,
			RevieweeID: review.RevieweeID,
			Rating:     review.Rating,
		},
	})
	return review, nil
}

func (s *MarketplaceService) updateReviewStreak(ctx context.Context, db bun.IDB, userID uuid.UUID, rating int) error {
	doc, err := s.repo.LockStats(ctx, db, userID)
	if err != nil {
		return err
	}
	var streak marketplacedomain.ReviewStreak
	if _, err := doc.Decode(marketplacedb.StatsKeyReviewStreak, &streak); err != nil {
		s.logger.WarnContext(ctx, "Resetting unreadable review streak",
			"user_id", userID.String(),
			"error", err.Error(),
		)
		streak = marketplacedomain.ReviewStreak{}
	}
	updated, err := doc.With(marketplacedb.StatsKeyReviewStreak, streak.Apply(rating))
	if err != nil {
		return err
	}
	return s.repo.SaveStats(ctx, db, userID, updated)
}

// OpenDispute puts an in-progress job on hold against the other party.
func (s *MarketplaceService) OpenDispute(ctx context.Context, req OpenDisputeRequest) (*marketplacedb.Dispute, error) {
	return execute(s, ctx, "OpenDispute", req.JobID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Dispute, error], error) {
		job, err := s.repo.GetJobForUpdate(ctx, db, req.JobID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Dispute](err)
			}
			return infraError[*marketplacedb.Dispute]("failed to get job", err)
		}
		against, ok := job.Counterparty(req.RaisedBy)
		if !ok {
			return failure[*marketplacedb.Dispute](marketplacedomain.ErrNotJobParty)
		}
		if !marketplacedomain.CanTransition(job.Status, marketplacedomain.JobStatusDisputed) {
			return failure[*marketplacedb.Dispute](marketplacedomain.ErrInvalidTransition)
		}

		d := &marketplacedb.Dispute{
			ID:            uuid.New(),
			JobID:         job.ID,
			RaisedBy:      req.RaisedBy,
			AgainstUserID: against,
			Reason:        req.Reason,
			Status:        marketplacedomain.DisputeStatusOpen,
			CreatedAt:     s.now(),
		}
		if err := s.repo.CreateDispute(ctx, db, d); err != nil {
			return infraError[*marketplacedb.Dispute]("failed to create dispute", err)
		}
		job.Status = marketplacedomain.JobStatusDisputed
		if err := s.repo.UpdateJob(ctx, db, job); err != nil {
			return infraError[*marketplacedb.Dispute]("failed to mark job disputed", err)
		}
		return success(d)
	})
}

// ResolveDispute rules on an open dispute. An upheld dispute cancels the job,
// a dismissed one puts it back in progress.
func (s *MarketplaceService) ResolveDispute(ctx context.Context, disputeID uuid.UUID, status marketplacedomain.DisputeStatus) (*marketplacedb.Dispute, error) {
	d, err := execute(s, ctx, "ResolveDispute", disputeID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Dispute, error], error) {
		if !status.IsResolution() {
			return failure[*marketplacedb.Dispute](marketplacedomain.ErrInvalidResolution)
		}
		d, err := s.repo.GetDispute(ctx, db, disputeID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Dispute](err)
			}
			return infraError[*marketplacedb.Dispute]("failed to get dispute", err)
		}
		if d.Status != marketplacedomain.DisputeStatusOpen {
			return failure[*marketplacedb.Dispute](marketplacedomain.ErrDisputeNotOpen)
		}

		now := s.now()
		if err := s.repo.ResolveDispute(ctx, db, d.ID, status, now); err != nil {
			if errors.Is(err, marketplacedb.ErrNoRowsAffected) {
				return failure[*marketplacedb.Dispute](marketplacedomain.ErrDisputeNotOpen)
			}
			return infraError[*marketplacedb.Dispute]("failed to resolve dispute", err)
		}

		job, err := s.repo.GetJobForUpdate(ctx, db, d.JobID)
		if err != nil {
			return infraError[*marketplacedb.Dispute]("failed to get disputed job", err)
		}
		if job.Status == marketplacedomain.JobStatusDisputed {
			if status == marketplacedomain.DisputeStatusUpheld {
				job.Status = marketplacedomain.JobStatusCancelled
				job.CancelledAt = &now
			} else {
				job.Status = marketplacedomain.JobStatusInProgress
			}
			if err := s.repo.UpdateJob(ctx, db, job); err != nil {
				return infraError[*marketplacedb.Dispute]("failed to update disputed job", err)
			}
		}

		d.Status = status
		d.ResolvedAt = &now
		return success(d)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{
		topic: marketplaceevents.DisputeResolvedV1,
		payload: &marketplaceevents.DisputeResolvedPayloadV1{
			DisputeID:     d.ID,
			JobID:         d.JobID,
			RaisedBy:      d.RaisedBy,
			AgainstUserID: d.AgainstUserID,
			Status:        string(d.Status),
		},
	})
	return d, nil
}

// VerifyBadge records a passed verification. Repeating a verification adds a
// row but does not raise the verification score.
func (s *MarketplaceService) VerifyBadge(ctx context.Context, userID uuid.UUID, badge marketplacedomain.BadgeType) (*marketplacedb.VerificationBadge, error) {
	b, err := execute(s, ctx, "VerifyBadge", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.VerificationBadge, error], error) {
		if !badge.IsValid() {
			return failure[*marketplacedb.VerificationBadge](marketplacedomain.ErrInvalidBadgeType)
		}
		if _, err := s.repo.GetUser(ctx, db, userID); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.VerificationBadge](err)
			}
			return infraError[*marketplacedb.VerificationBadge]("failed to get user", err)
		}
		b := &marketplacedb.VerificationBadge{
			ID:         uuid.New(),
			UserID:     userID,
			BadgeType:  badge,
			VerifiedAt: s.now(),
		}
		if err := s.repo.CreateBadge(ctx, db, b); err != nil {
			return infraError[*marketplacedb.VerificationBadge]("failed to create badge", err)
		}
		return success(b)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{
		topic:   marketplaceevents.BadgeVerifiedV1,
		payload: &marketplaceevents.BadgeVerifiedPayloadV1{UserID: b.UserID, BadgeType: string(b.BadgeType)},
	})
	return b, nil
}

func (s *MarketplaceService) AddEndorsement(ctx context.Context, req AddEndorsementRequest) (*marketplacedb.Endorsement, error) {
	e, err := execute(s, ctx, "AddEndorsement", req.UserID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*marketplacedb.Endorsement, error], error) {
		if req.UserID == req.EndorserID {
			return failure[*marketplacedb.Endorsement](marketplacedomain.ErrSelfEndorsement)
		}
		skill := strings.TrimSpace(req.Skill)
		if skill == "" {
			return failure[*marketplacedb.Endorsement](marketplacedomain.ErrMissingField)
		}
		if !marketplacedomain.ValidRating(req.Rating) {
			return failure[*marketplacedb.Endorsement](marketplacedomain.ErrInvalidRating)
		}
		if _, err := s.repo.GetUser(ctx, db, req.UserID); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*marketplacedb.Endorsement](err)
			}
			return infraError[*marketplacedb.Endorsement]("failed to get user", err)
		}

		e := &marketplacedb.Endorsement{
			ID:         uuid.New(),
			UserID:     req.UserID,
			EndorserID: req.EndorserID,
			Skill:      skill,
			Rating:     req.Rating,
			Verified:   req.Verified,
			CreatedAt:  s.now(),
		}
		if err := s.repo.CreateEndorsement(ctx, db, e); err != nil {
			return infraError[*marketplacedb.Endorsement]("failed to create endorsement", err)
		}
		return success(e)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pendingEvent{
		topic: marketplaceevents.EndorsementAddedV1,
		payload: &marketplaceevents.EndorsementAddedPayloadV1{
			UserID:     e.UserID,
			EndorserID: e.EndorserID,
			Skill:      e.Skill,
		},
	})
	return e, nil
}
