package achievementservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
	achievementdb "github.com/escrowhub/api/app/modules/achievement/infrastructure/repositories"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	achievementevents "github.com/escrowhub/api/pkg/events/achievement"
	"github.com/escrowhub/api/pkg/observability/attr"
	"github.com/escrowhub/api/pkg/results"
)

// CheckAndAward evaluates every achievement registered for trigger and mints
// the ones whose predicate now holds. Each award commits on its own, so a
// failing achievement is logged and the rest are still evaluated.
func (s *AchievementService) CheckAndAward(ctx context.Context, userID uuid.UUID, trigger achievementdomain.Trigger) ([]achievementdomain.Unlocked, error) {
	result, err := withTelemetry(s, ctx, "CheckAndAward", userID.String(), func(ctx context.Context) (results.OperationResult[[]achievementdomain.Unlocked, error], error) {
		if !trigger.IsValid() {
			return failure[[]achievementdomain.Unlocked](fmt.Errorf("%w: %q", achievementdomain.ErrUnknownTrigger, trigger))
		}

		stats, err := s.statistics(ctx, userID)
		if err != nil {
			if errors.Is(err, marketplacedb.ErrNotFound) {
				return failure[[]achievementdomain.Unlocked](err)
			}
			return infraError[[]achievementdomain.Unlocked]("failed to load statistics", err)
		}

		unlocked := make([]achievementdomain.Unlocked, 0)
		for _, a := range achievementdomain.ForTrigger(trigger) {
			if !a.Predicate(stats) {
				continue
			}
			u, err := s.award(ctx, userID, a)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to award achievement",
					attr.ExtractCorrelationID(ctx),
					attr.UserID(userID),
					attr.String("achievement", a.Key),
					attr.Error(err),
				)
				continue
			}
			if u == nil {
				continue
			}
			unlocked = append(unlocked, *u)
			s.publish(ctx, achievementevents.AchievementUnlockedV1, &achievementevents.AchievementUnlockedPayloadV1{
				UserID:     userID,
				Key:        u.Key,
				Name:       u.Name,
				XP:         u.XP,
				UnlockedAt: u.UnlockedAt,
			})
		}
		return success(unlocked)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// statistics merges the aggregate counters with the values kept in the stats
// document.
func (s *AchievementService) statistics(ctx context.Context, userID uuid.UUID) (achievementdomain.UserStatistics, error) {
	stats, err := s.repo.Statistics(ctx, nil, userID)
	if err != nil {
		return stats, err
	}
	doc, err := s.stats.GetStats(ctx, nil, userID)
	if err != nil {
		return stats, err
	}
	stats.FiveStarStreak = int(doc.Get(marketplacedb.StatsKeyReviewStreak + ".current").Int())
	stats.TrustScore = int(doc.Get(marketplacedb.StatsKeyTrustScore + ".score").Int())
	return stats, nil
}

// award returns nil when the user already holds the achievement.
func (s *AchievementService) award(ctx context.Context, userID uuid.UUID, a achievementdomain.Achievement) (*achievementdomain.Unlocked, error) {
	held, err := s.repo.UserHasAchievement(ctx, nil, userID, a.Key)
	if err != nil {
		return nil, err
	}
	if held {
		return nil, nil
	}

	now := s.now()
	result, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*achievementdomain.Unlocked, error], error) {
		inserted, err := s.repo.InsertAchievement(ctx, db, &achievementdb.UserAchievement{
			UserID:         userID,
			AchievementKey: a.Key,
			UnlockedAt:     now,
		})
		if err != nil {
			return infraError[*achievementdomain.Unlocked]("failed to insert achievement", err)
		}
		// Lost a race with a concurrent evaluation.
		if !inserted {
			return success[*achievementdomain.Unlocked](nil)
		}
		if _, _, err := s.stats.AddXP(ctx, db, userID, a.XP); err != nil {
			return infraError[*achievementdomain.Unlocked]("failed to add xp", err)
		}
		return success(&achievementdomain.Unlocked{
			Key:        a.Key,
			Name:       a.Name,
			XP:         a.XP,
			UnlockedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// ListUserAchievements returns the whole catalog with the user's unlocks
// filled in.
func (s *AchievementService) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]achievementdomain.AchievementView, error) {
	return execute(s, ctx, "ListUserAchievements", userID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]achievementdomain.AchievementView, error], error) {
		rows, err := s.repo.ListUserAchievements(ctx, db, userID)
		if err != nil {
			return infraError[[]achievementdomain.AchievementView]("failed to list achievements", err)
		}
		unlockedAt := make(map[string]achievementdb.UserAchievement, len(rows))
		for _, row := range rows {
			unlockedAt[row.AchievementKey] = row
		}

		views := s.Catalog()
		for i := range views {
			row, ok := unlockedAt[views[i].Key]
			if !ok {
				continue
			}
			at := row.UnlockedAt
			views[i].Unlocked = true
			views[i].UnlockedAt = &at
		}
		return success(views)
	})
}

// Catalog lists every achievement without user state.
func (s *AchievementService) Catalog() []achievementdomain.AchievementView {
	entries := achievementdomain.Catalog()
	views := make([]achievementdomain.AchievementView, 0, len(entries))
	for _, a := range entries {
		views = append(views, achievementdomain.AchievementView{
			Key:         a.Key,
			Name:        a.Name,
			Description: a.Description,
			XP:          a.XP,
		})
	}
	return views
}
