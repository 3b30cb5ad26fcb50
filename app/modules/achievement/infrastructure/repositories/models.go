package achievementdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserAchievement records that a user unlocked one catalog entry.
type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievements,alias:ua"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	UserID         uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	AchievementKey string    `bun:"achievement_key,notnull" json:"achievement_key"`
	UnlockedAt     time.Time `bun:"unlocked_at,nullzero,notnull,default:current_timestamp" json:"unlocked_at"`
}
