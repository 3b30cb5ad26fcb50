package marketplacemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating marketplace tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					username VARCHAR(64) NOT NULL,
					email VARCHAR(255) NOT NULL UNIQUE,
					display_name VARCHAR(128),
					level INTEGER NOT NULL DEFAULT 1,
					xp BIGINT NOT NULL DEFAULT 0,
					login_streak INTEGER NOT NULL DEFAULT 0,
					last_login_at TIMESTAMPTZ,
					last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (lower(username));
				CREATE INDEX IF NOT EXISTS idx_users_last_active_at ON users (last_active_at);

				CREATE TABLE IF NOT EXISTS user_stats (
					user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
					stats JSONB NOT NULL DEFAULT '{}'::jsonb,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create user tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS jobs (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					client_id UUID NOT NULL REFERENCES users(id),
					freelancer_id UUID REFERENCES users(id),
					title VARCHAR(200) NOT NULL,
					description TEXT,
					budget NUMERIC(12,2) NOT NULL CHECK (budget > 0),
					status VARCHAR(20) NOT NULL DEFAULT 'open',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					started_at TIMESTAMPTZ,
					completed_at TIMESTAMPTZ,
					cancelled_at TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);
				CREATE INDEX IF NOT EXISTS idx_jobs_client_id ON jobs (client_id);
				CREATE INDEX IF NOT EXISTS idx_jobs_freelancer_status ON jobs (freelancer_id, status);

				CREATE TABLE IF NOT EXISTS bids (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
					freelancer_id UUID NOT NULL REFERENCES users(id),
					amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
					message TEXT,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (job_id, freelancer_id)
				);

				CREATE TABLE IF NOT EXISTS milestones (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
					title VARCHAR(200) NOT NULL,
					amount NUMERIC(12,2) NOT NULL CHECK (amount > 0),
					status VARCHAR(20) NOT NULL DEFAULT 'funded',
					position INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					released_at TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_milestones_job_id ON milestones (job_id);

				CREATE TABLE IF NOT EXISTS earnings (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id UUID NOT NULL REFERENCES users(id),
					job_id UUID NOT NULL REFERENCES jobs(id),
					milestone_id UUID REFERENCES milestones(id),
					amount NUMERIC(12,2) NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_earnings_user_created ON earnings (user_id, created_at);
			`); err != nil {
				return fmt.Errorf("failed to create job tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS reviews (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					job_id UUID NOT NULL REFERENCES jobs(id),
					reviewer_id UUID NOT NULL REFERENCES users(id),
					reviewee_id UUID NOT NULL REFERENCES users(id),
					rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
					comment TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (job_id, reviewer_id)
				);
				CREATE INDEX IF NOT EXISTS idx_reviews_reviewee ON reviews (reviewee_id, created_at DESC);

				CREATE TABLE IF NOT EXISTS disputes (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					job_id UUID NOT NULL REFERENCES jobs(id),
					raised_by UUID NOT NULL REFERENCES users(id),
					against_user_id UUID NOT NULL REFERENCES users(id),
					reason TEXT,
					status VARCHAR(20) NOT NULL DEFAULT 'open',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					resolved_at TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_disputes_against ON disputes (against_user_id, status);

				CREATE TABLE IF NOT EXISTS verification_badges (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					badge_type VARCHAR(32) NOT NULL,
					verified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_verification_badges_user ON verification_badges (user_id);

				CREATE TABLE IF NOT EXISTS endorsements (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					endorser_id UUID NOT NULL REFERENCES users(id),
					skill VARCHAR(100) NOT NULL,
					rating SMALLINT NOT NULL CHECK (rating BETWEEN 1 AND 5),
					verified BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_endorsements_user ON endorsements (user_id);

				CREATE TABLE IF NOT EXISTS faqs (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					category VARCHAR(64) NOT NULL,
					question TEXT NOT NULL,
					answer TEXT NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_faqs_category ON faqs (category, position);
			`); err != nil {
				return fmt.Errorf("failed to create reputation tables: %w", err)
			}

			fmt.Println("Marketplace tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping marketplace tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS faqs;
				DROP TABLE IF EXISTS endorsements;
				DROP TABLE IF EXISTS verification_badges;
				DROP TABLE IF EXISTS disputes;
				DROP TABLE IF EXISTS reviews;
				DROP TABLE IF EXISTS earnings;
				DROP TABLE IF EXISTS milestones;
				DROP TABLE IF EXISTS bids;
				DROP TABLE IF EXISTS jobs;
				DROP TABLE IF EXISTS user_stats;
				DROP TABLE IF EXISTS users;
			`); err != nil {
				return fmt.Errorf("failed to drop marketplace tables: %w", err)
			}
			return nil
		})
	})
}
