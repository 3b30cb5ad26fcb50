package trustscoreservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
	trustscoreevents "github.com/escrowhub/api/pkg/events/trustscore"
	"github.com/escrowhub/api/pkg/observability/attr"
	"github.com/escrowhub/api/pkg/results"
)

// CalculateTrustScore recomputes every component, persists the result under
// the trustScore key and appends it to the history.
func (s *TrustScoreService) CalculateTrustScore(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error) {
	var event *trustscoreevents.TrustScoreCalculatedPayloadV1

	result, err := execute(s, ctx, "CalculateTrustScore", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*trustscoredomain.Result, error], error) {
		if _, err := s.repo.LastActiveAt(ctx, db, userID); err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*trustscoredomain.Result](err)
			}
			return infraError[*trustscoredomain.Result]("failed to get user", err)
		}

		// Aggregates run outside the transaction so one failing query does
		// not abort the write below.
		components := s.components(ctx, userID)

		doc, err := s.stats.LockStats(ctx, db, userID)
		if err != nil {
			return infraError[*trustscoredomain.Result]("failed to lock stats", err)
		}
		prev := s.decodeRecord(ctx, userID, doc)

		now := s.now()
		rec := trustscoredomain.Calculate(prev, components, now)
		doc, err = doc.With(marketplacedb.StatsKeyTrustScore, rec)
		if err != nil {
			return infraError[*trustscoredomain.Result]("failed to encode trust score", err)
		}
		if err := s.stats.SaveStats(ctx, db, userID, doc); err != nil {
			return infraError[*trustscoredomain.Result]("failed to save trust score", err)
		}

		event = &trustscoreevents.TrustScoreCalculatedPayloadV1{
			UserID:       userID,
			Score:        rec.Score,
			Tier:         string(rec.Tier),
			CalculatedAt: now,
		}
		if prev != nil {
			score := prev.Score
			event.PreviousScore = &score
			event.PreviousTier = string(prev.Tier)
		}
		return success(rec.Result(userID))
	})
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, result)
	s.publish(ctx, trustscoreevents.TrustScoreCalculatedV1, event)
	return result, nil
}

// components loads every component independently. A failing query is logged
// and its component falls back to the neutral score.
func (s *TrustScoreService) components(ctx context.Context, userID uuid.UUID) trustscoredomain.Components {
	return trustscoredomain.Components{
		Reviews: s.component(ctx, userID, "reviews", func() (int, error) {
			st, err := s.repo.ReviewStats(ctx, nil, userID)
			return trustscoredomain.ReviewScore(st), err
		}),
		Completion: s.component(ctx, userID, "completion", func() (int, error) {
			st, err := s.repo.JobStats(ctx, nil, userID)
			return trustscoredomain.CompletionScore(st), err
		}),
		Verification: s.component(ctx, userID, "verification", func() (int, error) {
			types, err := s.repo.BadgeTypes(ctx, nil, userID)
			return trustscoredomain.VerificationScore(trustscoredomain.NewBadgeSet(types...)), err
		}),
		Endorsements: s.component(ctx, userID, "endorsements", func() (int, error) {
			st, err := s.repo.EndorsementStats(ctx, nil, userID)
			return trustscoredomain.EndorsementScore(st), err
		}),
		Activity: s.component(ctx, userID, "activity", func() (int, error) {
			st, err := s.repo.ActivityStats(ctx, nil, userID, s.now().AddDate(0, 0, -30))
			return trustscoredomain.ActivityScore(st), err
		}),
		Disputes: s.component(ctx, userID, "disputes", func() (int, error) {
			st, err := s.repo.DisputeStats(ctx, nil, userID)
			return trustscoredomain.DisputeScore(st), err
		}),
	}
}

func (s *TrustScoreService) component(ctx context.Context, userID uuid.UUID, name string, load func() (int, error)) int {
	score, err := load()
	if err != nil {
		s.logger.WarnContext(ctx, "Trust score component failed, using neutral score",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.String("component", name),
			attr.Error(err),
		)
		return trustscoredomain.NeutralScore
	}
	return score
}

// decodeRecord returns nil when the document has no usable trust score.
func (s *TrustScoreService) decodeRecord(ctx context.Context, userID uuid.UUID, doc marketplacedb.StatsDocument) *trustscoredomain.Record {
	var rec trustscoredomain.Record
	found, err := doc.Decode(marketplacedb.StatsKeyTrustScore, &rec)
	if err != nil {
		s.logger.WarnContext(ctx, "Ignoring unreadable trust score",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.Error(err),
		)
		return nil
	}
	if !found {
		return nil
	}
	return &rec
}

// GetTrustScore returns the persisted score, or the neutral default for users
// that have never been scored.
func (s *TrustScoreService) GetTrustScore(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error) {
	if cached, err := s.cache.Get(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "Trust score cache read failed", attr.UserID(userID), attr.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	result, err := execute(s, ctx, "GetTrustScore", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*trustscoredomain.Result, error], error) {
		doc, err := s.stats.GetStats(ctx, db, userID)
		if err != nil {
			return infraError[*trustscoredomain.Result]("failed to get stats", err)
		}
		rec := s.decodeRecord(ctx, userID, doc)
		if rec == nil {
			return success(trustscoredomain.DefaultResult(userID, s.now()))
		}
		return success(rec.Result(userID))
	})
	if err != nil {
		return nil, err
	}

	if !result.IsDefault {
		s.cacheSet(ctx, result)
	}
	return result, nil
}

// GetTrustScoreHistory returns up to the last ten scores, oldest first.
func (s *TrustScoreService) GetTrustScoreHistory(ctx context.Context, userID uuid.UUID) ([]trustscoredomain.HistoryEntry, error) {
	return execute(s, ctx, "GetTrustScoreHistory", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]trustscoredomain.HistoryEntry, error], error) {
		doc, err := s.stats.GetStats(ctx, db, userID)
		if err != nil {
			return infraError[[]trustscoredomain.HistoryEntry]("failed to get stats", err)
		}
		rec := s.decodeRecord(ctx, userID, doc)
		if rec == nil || rec.History == nil {
			return success([]trustscoredomain.HistoryEntry{})
		}
		return success(rec.History)
	})
}

func (s *TrustScoreService) cacheSet(ctx context.Context, result *trustscoredomain.Result) {
	if err := s.cache.Set(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "Trust score cache write failed", attr.UserID(result.UserID), attr.Error(err))
	}
}
