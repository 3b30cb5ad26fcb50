package achievementdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	achievementdomain "github.com/escrowhub/api/app/modules/achievement/domain"
	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

var _ Repository = (*Impl)(nil)

func NewRepository(db bun.IDB) *Impl {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) UserHasAchievement(ctx context.Context, db bun.IDB, userID uuid.UUID, key string) (bool, error) {
	exists, err := r.resolveDB(db).NewSelect().
		Model((*UserAchievement)(nil)).
		Where("ua.user_id = ?", userID).
		Where("ua.achievement_key = ?", key).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check achievement: %w", err)
	}
	return exists, nil
}

func (r *Impl) InsertAchievement(ctx context.Context, db bun.IDB, a *UserAchievement) (bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	res, err := r.resolveDB(db).NewInsert().
		Model(a).
		On("CONFLICT (user_id, achievement_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert achievement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) ListUserAchievements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]UserAchievement, error) {
	var out []UserAchievement
	err := r.resolveDB(db).NewSelect().
		Model(&out).
		Where("ua.user_id = ?", userID).
		Order("ua.unlocked_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return out, nil
}

type statisticsRow struct {
	CompletedJobs      int             `bun:"completed_jobs"`
	ReviewCount        int             `bun:"review_count"`
	AvgRating          float64         `bun:"avg_rating"`
	TotalEarnings      decimal.Decimal `bun:"total_earnings"`
	ActiveReferrals    int             `bun:"active_referrals"`
	VerifiedBadgeTypes int             `bun:"verified_badge_types"`
	LoginStreak        int             `bun:"login_streak"`
}

func (r *Impl) Statistics(ctx context.Context, db bun.IDB, userID uuid.UUID) (achievementdomain.UserStatistics, error) {
	db = r.resolveDB(db)

	completed := db.NewSelect().
		Model((*marketplacedb.Job)(nil)).
		ColumnExpr("COUNT(*)").
		Where("j.freelancer_id = u.id").
		Where("j.status = ?", marketplacedomain.JobStatusCompleted)
	reviewCount := db.NewSelect().
		Model((*marketplacedb.Review)(nil)).
		ColumnExpr("COUNT(*)").
		Where("r.reviewee_id = u.id")
	avgRating := db.NewSelect().
		Model((*marketplacedb.Review)(nil)).
		ColumnExpr("COALESCE(AVG(r.rating), 0)").
		Where("r.reviewee_id = u.id")
	earnings := db.NewSelect().
		Model((*marketplacedb.Earning)(nil)).
		ColumnExpr("COALESCE(SUM(e.amount), 0)").
		Where("e.user_id = u.id")
	referrals := db.NewSelect().
		TableExpr("referrals AS rf").
		ColumnExpr("COUNT(*)").
		Where("rf.referrer_id = u.id").
		Where("rf.status = 'active'")
	badges := db.NewSelect().
		Model((*marketplacedb.VerificationBadge)(nil)).
		ColumnExpr("COUNT(DISTINCT vb.badge_type)").
		Where("vb.user_id = u.id")

	var row statisticsRow
	err := db.NewSelect().
		Model((*marketplacedb.User)(nil)).
		ColumnExpr("(?) AS completed_jobs", completed).
		ColumnExpr("(?) AS review_count", reviewCount).
		ColumnExpr("(?) AS avg_rating", avgRating).
		ColumnExpr("(?) AS total_earnings", earnings).
		ColumnExpr("(?) AS active_referrals", referrals).
		ColumnExpr("(?) AS verified_badge_types", badges).
		Column("u.login_streak").
		Where("u.id = ?", userID).
		Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return achievementdomain.UserStatistics{}, marketplacedb.ErrNotFound
		}
		return achievementdomain.UserStatistics{}, fmt.Errorf("failed to load achievement statistics: %w", err)
	}

	return achievementdomain.UserStatistics{
		CompletedJobs:      row.CompletedJobs,
		ReviewCount:        row.ReviewCount,
		AvgRating:          row.AvgRating,
		TotalEarnings:      row.TotalEarnings,
		ActiveReferrals:    row.ActiveReferrals,
		VerifiedBadgeTypes: row.VerifiedBadgeTypes,
		LoginStreak:        row.LoginStreak,
	}, nil
}
