package referralmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating referral tables...")

		statements := []string{
			`CREATE TABLE IF NOT EXISTS referral_codes (
				user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
				code VARCHAR(16) NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS referral_clicks (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				code VARCHAR(16) NOT NULL REFERENCES referral_codes(code) ON DELETE CASCADE,
				ip_hash CHAR(64) NOT NULL,
				user_agent VARCHAR(512) NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_referral_clicks_code ON referral_clicks (code)`,
			`CREATE TABLE IF NOT EXISTS referrals (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				referrer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				referred_user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
				code VARCHAR(16) NOT NULL,
				status VARCHAR(16) NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'active')),
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				converted_at TIMESTAMPTZ,
				CHECK (referrer_id <> referred_user_id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_referrals_referrer_status ON referrals (referrer_id, status)`,
		}
		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create referral tables: %w", err)
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping referral tables...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS referrals, referral_clicks, referral_codes`)
		return err
	})
}
