package referralservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	referralevents "github.com/escrowhub/api/pkg/events/referral"
	"github.com/escrowhub/api/pkg/results"
)

// RecordConversion activates the referral of referredUserID and credits the
// referrer with the conversion bonus of their new tier plus any milestone
// reached. A referral that is already active is reported with Converted
// false and changes nothing.
func (s *ReferralService) RecordConversion(ctx context.Context, referredUserID uuid.UUID) (*referraldomain.ConversionOutcome, error) {
	outcome, err := execute(s, ctx, "RecordConversion", referredUserID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*referraldomain.ConversionOutcome, error], error) {
		ref, err := s.repo.GetReferralByReferredForUpdate(ctx, db, referredUserID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[*referraldomain.ConversionOutcome](referraldomain.ErrNoReferral)
			}
			return infraError[*referraldomain.ConversionOutcome]("failed to get referral", err)
		}
		if ref.Status == referraldomain.StatusActive {
			return success(&referraldomain.ConversionOutcome{Referral: ref.ToDomain()})
		}

		now := s.now()
		if err := s.repo.ActivateReferral(ctx, db, ref.ID, now); err != nil {
			return infraError[*referraldomain.ConversionOutcome]("failed to activate referral", err)
		}
		ref.Status = referraldomain.StatusActive
		ref.ConvertedAt = &now

		counts, err := s.repo.CountReferrals(ctx, db, ref.ReferrerID)
		if err != nil {
			return infraError[*referraldomain.ConversionOutcome]("failed to count referrals", err)
		}

		doc, err := s.stats.LockStats(ctx, db, ref.ReferrerID)
		if err != nil {
			return infraError[*referraldomain.ConversionOutcome]("failed to lock stats", err)
		}
		rewards, added := s.loadRewards(ctx, ref.ReferrerID, doc).Grant(s.policy, counts.Active, referredUserID, s.newID, now)
		doc, err = doc.With(marketplacedb.StatsKeyReferralRewards, rewards)
		if err != nil {
			return infraError[*referraldomain.ConversionOutcome]("failed to encode rewards", err)
		}
		if err := s.stats.SaveStats(ctx, db, ref.ReferrerID, doc); err != nil {
			return infraError[*referraldomain.ConversionOutcome]("failed to save rewards", err)
		}

		return success(&referraldomain.ConversionOutcome{
			Referral:        ref.ToDomain(),
			Converted:       true,
			ActiveReferrals: counts.Active,
			Tier:            s.policy.Tier(counts.Active),
			Rewards:         added,
		})
	})
	if err != nil {
		return nil, err
	}

	if outcome.Converted {
		s.publish(ctx, referralevents.ReferralConvertedV1, &referralevents.ReferralConvertedPayloadV1{
			ReferralID:      outcome.Referral.ID,
			ReferrerID:      outcome.Referral.ReferrerID,
			ReferredUserID:  outcome.Referral.ReferredUserID,
			ActiveReferrals: outcome.ActiveReferrals,
			Tier:            string(outcome.Tier),
			ConvertedAt:     *outcome.Referral.ConvertedAt,
		})
		for _, r := range outcome.Rewards {
			if r.Type != referraldomain.RewardMilestone {
				continue
			}
			s.publish(ctx, referralevents.ReferralMilestoneReachedV1, &referralevents.ReferralMilestoneReachedPayloadV1{
				ReferrerID: outcome.Referral.ReferrerID,
				Milestone:  r.Milestone,
				XP:         r.XP,
			})
		}
	}
	return outcome, nil
}
