package trustscoreservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
	trustscoreevents "github.com/escrowhub/api/pkg/events/trustscore"
	"github.com/escrowhub/api/pkg/observability/attr"
	"github.com/escrowhub/api/pkg/results"
)

const decayPageSize = 200

// ApplyDecay lowers the persisted score of a user inactive for longer than the
// configured window. Active users and users without a score are left alone.
func (s *TrustScoreService) ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*trustscoredomain.DecayOutcome, error) {
	var decayed *trustscoredomain.Record

	outcome, err := execute(s, ctx, "ApplyDecay", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*trustscoredomain.DecayOutcome, error], error) {
		lastActive, err := s.repo.LastActiveAt(ctx, db, userID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*trustscoredomain.DecayOutcome](err)
			}
			return infraError[*trustscoredomain.DecayOutcome]("failed to get last activity", err)
		}

		out := &trustscoredomain.DecayOutcome{UserID: userID}
		if !trustscoredomain.Inactive(lastActive, now, s.inactivityDays) {
			return success(out)
		}
		out.WeeksInactive = trustscoredomain.WeeksInactive(trustscoredomain.DaysInactive(lastActive, now))

		doc, err := s.stats.LockStats(ctx, db, userID)
		if err != nil {
			return infraError[*trustscoredomain.DecayOutcome]("failed to lock stats", err)
		}
		rec := s.decodeRecord(ctx, userID, doc)
		if rec == nil {
			return success(out)
		}
		out.PreviousScore, out.PreviousTier = rec.Score, rec.Tier
		out.Score, out.Tier = rec.Score, rec.Tier

		next, changed := trustscoredomain.Decay(rec, out.WeeksInactive, now)
		if !changed {
			return success(out)
		}

		doc, err = doc.With(marketplacedb.StatsKeyTrustScore, next)
		if err != nil {
			return infraError[*trustscoredomain.DecayOutcome]("failed to encode trust score", err)
		}
		if err := s.stats.SaveStats(ctx, db, userID, doc); err != nil {
			return infraError[*trustscoredomain.DecayOutcome]("failed to save trust score", err)
		}

		out.Applied = true
		out.Score, out.Tier = next.Score, next.Tier
		decayed = next
		return success(out)
	})
	if err != nil {
		return nil, err
	}

	if outcome.Applied {
		s.cacheSet(ctx, decayed.Result(userID))
		s.publish(ctx, trustscoreevents.TrustScoreDecayedV1, &trustscoreevents.TrustScoreDecayedPayloadV1{
			UserID:        userID,
			PreviousScore: outcome.PreviousScore,
			Score:         outcome.Score,
			PreviousTier:  string(outcome.PreviousTier),
			Tier:          string(outcome.Tier),
			WeeksInactive: outcome.WeeksInactive,
			DecayedAt:     now,
		})
	}
	return outcome, nil
}

// ApplyDecayToInactive runs ApplyDecay for every scored user inactive longer
// than the configured window. Each user is decayed in its own transaction;
// failures are counted and the sweep continues.
func (s *TrustScoreService) ApplyDecayToInactive(ctx context.Context, now time.Time) (trustscoredomain.DecaySweepSummary, error) {
	result, err := withTelemetry(s, ctx, "ApplyDecayToInactive", now.Format(time.RFC3339), func(ctx context.Context) (results.OperationResult[trustscoredomain.DecaySweepSummary, error], error) {
		var summary trustscoredomain.DecaySweepSummary
		cutoff := now.AddDate(0, 0, -s.inactivityDays)
		after := uuid.Nil

		for {
			if err := ctx.Err(); err != nil {
				return results.OperationResult[trustscoredomain.DecaySweepSummary, error]{}, err
			}
			ids, err := s.repo.ListInactiveScoredUsers(ctx, nil, cutoff, after, decayPageSize)
			if err != nil {
				return infraError[trustscoredomain.DecaySweepSummary]("failed to list inactive users", err)
			}
			for _, id := range ids {
				summary.Scanned++
				outcome, err := s.ApplyDecay(ctx, id, now)
				switch {
				case err != nil:
					summary.Failed++
					s.logger.ErrorContext(ctx, "Decay failed for user", attr.UserID(id), attr.Error(err))
				case outcome.Applied:
					summary.Decayed++
				}
			}
			if len(ids) < decayPageSize {
				break
			}
			after = ids[len(ids)-1]
		}

		s.logger.InfoContext(ctx, "Decay sweep finished",
			attr.Int("scanned", summary.Scanned),
			attr.Int("decayed", summary.Decayed),
			attr.Int("failed", summary.Failed),
		)
		return success(summary)
	})
	if err != nil {
		return trustscoredomain.DecaySweepSummary{}, err
	}
	return *result.Success, nil
}
