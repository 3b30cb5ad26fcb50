package achievementmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating user_achievements table...")

		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS user_achievements (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				achievement_key VARCHAR(64) NOT NULL,
				unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (user_id, achievement_key)
			);
		`)
		if err != nil {
			return fmt.Errorf("failed to create user_achievements: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping user_achievements table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS user_achievements`)
		return err
	})
}
