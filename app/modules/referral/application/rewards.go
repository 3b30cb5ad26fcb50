package referralservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	"github.com/escrowhub/api/pkg/results"
)

// ListRewards returns every reward, claimed or not, in the order granted.
func (s *ReferralService) ListRewards(ctx context.Context, userID uuid.UUID) (referraldomain.Rewards, error) {
	return execute(s, ctx, "ListRewards", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[referraldomain.Rewards, error], error) {
		doc, err := s.stats.GetStats(ctx, db, userID)
		if err != nil {
			return infraError[referraldomain.Rewards]("failed to get stats", err)
		}
		rewards := s.loadRewards(ctx, userID, doc)
		if rewards == nil {
			rewards = referraldomain.Rewards{}
		}
		return success(rewards)
	})
}

// ClaimReward marks one reward claimed and credits its XP. The stats row stays
// locked for the whole read-modify-write.
func (s *ReferralService) ClaimReward(ctx context.Context, userID, rewardID uuid.UUID) (*referraldomain.Reward, error) {
	return execute(s, ctx, "ClaimReward", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*referraldomain.Reward, error], error) {
		doc, err := s.stats.LockStats(ctx, db, userID)
		if err != nil {
			return infraError[*referraldomain.Reward]("failed to lock stats", err)
		}
		rewards := s.loadRewards(ctx, userID, doc)
		i := rewards.Find(rewardID)
		if i < 0 {
			return failure[*referraldomain.Reward](referraldomain.ErrRewardNotFound)
		}
		if rewards[i].Claimed {
			return failure[*referraldomain.Reward](referraldomain.ErrRewardAlreadyClaimed)
		}

		now := s.now()
		rewards[i].Claimed = true
		rewards[i].ClaimedAt = &now

		doc, err = doc.With(marketplacedb.StatsKeyReferralRewards, rewards)
		if err != nil {
			return infraError[*referraldomain.Reward]("failed to encode rewards", err)
		}
		if err := s.stats.SaveStats(ctx, db, userID, doc); err != nil {
			return infraError[*referraldomain.Reward]("failed to save rewards", err)
		}
		if rewards[i].XP > 0 {
			if _, _, err := s.stats.AddXP(ctx, db, userID, rewards[i].XP); err != nil {
				return infraError[*referraldomain.Reward]("failed to add xp", err)
			}
		}
		claimed := rewards[i]
		return success(&claimed)
	})
}

// ClaimAllRewards claims every pending reward in one transaction.
func (s *ReferralService) ClaimAllRewards(ctx context.Context, userID uuid.UUID) (referraldomain.ClaimSummary, error) {
	return execute(s, ctx, "ClaimAllRewards", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[referraldomain.ClaimSummary, error], error) {
		summary := referraldomain.ClaimSummary{Amount: decimal.Zero}

		doc, err := s.stats.LockStats(ctx, db, userID)
		if err != nil {
			return infraError[referraldomain.ClaimSummary]("failed to lock stats", err)
		}
		rewards := s.loadRewards(ctx, userID, doc)

		now := s.now()
		for i := range rewards {
			if rewards[i].Claimed {
				continue
			}
			rewards[i].Claimed = true
			rewards[i].ClaimedAt = &now
			summary.Claimed++
			summary.XP += rewards[i].XP
			summary.Amount = summary.Amount.Add(rewards[i].Amount)
		}
		if summary.Claimed == 0 {
			return success(summary)
		}

		doc, err = doc.With(marketplacedb.StatsKeyReferralRewards, rewards)
		if err != nil {
			return infraError[referraldomain.ClaimSummary]("failed to encode rewards", err)
		}
		if err := s.stats.SaveStats(ctx, db, userID, doc); err != nil {
			return infraError[referraldomain.ClaimSummary]("failed to save rewards", err)
		}
		if summary.XP > 0 {
			xp, level, err := s.stats.AddXP(ctx, db, userID, summary.XP)
			if err != nil {
				return infraError[referraldomain.ClaimSummary]("failed to add xp", err)
			}
			summary.TotalXP, summary.Level = xp, level
		}
		return success(summary)
	})
}
