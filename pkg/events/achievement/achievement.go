// Package achievementevents defines the topics and payloads published by the
// achievement module.
package achievementevents

import (
	"time"

	"github.com/google/uuid"
)

const AchievementUnlockedV1 = "achievement.unlocked.v1"

type AchievementUnlockedPayloadV1 struct {
	UserID     uuid.UUID `json:"user_id"`
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	XP         int64     `json:"xp"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
