package achievementservice

import (
	"context"

	"github.com/google/uuid"

	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
)

// Service defines the achievement operations.
type Service interface {
	CheckAndAward(ctx context.Context, userID uuid.UUID, trigger achievementdomain.Trigger) ([]achievementdomain.Unlocked, error)
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]achievementdomain.AchievementView, error)
	Catalog() []achievementdomain.AchievementView
}
