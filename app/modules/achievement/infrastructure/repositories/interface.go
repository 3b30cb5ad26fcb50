package achievementdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
)

// Repository stores unlocked achievements and loads the statistics the
// catalog predicates read.
type Repository interface {
	UserHasAchievement(ctx context.Context, db bun.IDB, userID uuid.UUID, key string) (bool, error)
	// InsertAchievement reports false when the user already holds key.
	InsertAchievement(ctx context.Context, db bun.IDB, a *UserAchievement) (bool, error)
	ListUserAchievements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]UserAchievement, error)
	// Statistics returns marketplacedb.ErrNotFound for unknown users. The
	// stats document fields are left zero.
	Statistics(ctx context.Context, db bun.IDB, userID uuid.UUID) (achievementdomain.UserStatistics, error)
}
