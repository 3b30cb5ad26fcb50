package trustscoredb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
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

func (r *Impl) ReviewStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.ReviewStats, error) {
	var out trustscoredomain.ReviewStats
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.Review)(nil)).
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(AVG(r.rating), 0) AS average").
		Where("r.reviewee_id = ?", userID).
		Scan(ctx, &out)
	if err != nil {
		return out, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return out, nil
}

func (r *Impl) JobStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.JobStats, error) {
	var out trustscoredomain.JobStats
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.Job)(nil)).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COUNT(*) FILTER (WHERE j.status = ?) AS completed", marketplacedomain.JobStatusCompleted).
		ColumnExpr("COUNT(*) FILTER (WHERE j.status = ?) AS cancelled", marketplacedomain.JobStatusCancelled).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("j.client_id = ?", userID).WhereOr("j.freelancer_id = ?", userID)
		}).
		Scan(ctx, &out)
	if err != nil {
		return out, fmt.Errorf("failed to aggregate jobs: %w", err)
	}
	return out, nil
}

func (r *Impl) BadgeTypes(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedomain.BadgeType, error) {
	var out []marketplacedomain.BadgeType
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.VerificationBadge)(nil)).
		Distinct().
		Column("vb.badge_type").
		Where("vb.user_id = ?", userID).
		Scan(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list badge types: %w", err)
	}
	return out, nil
}

func (r *Impl) EndorsementStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.EndorsementStats, error) {
	var out trustscoredomain.EndorsementStats
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.Endorsement)(nil)).
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(AVG(en.rating), 0) AS average").
		ColumnExpr("COUNT(*) FILTER (WHERE en.verified) AS verified").
		ColumnExpr("COUNT(DISTINCT en.endorser_id) AS unique_endorsers").
		Where("en.user_id = ?", userID).
		Scan(ctx, &out)
	if err != nil {
		return out, fmt.Errorf("failed to aggregate endorsements: %w", err)
	}
	return out, nil
}

func (r *Impl) ActivityStats(ctx context.Context, db bun.IDB, userID uuid.UUID, since time.Time) (trustscoredomain.ActivityStats, error) {
	db = r.resolveDB(db)
	var out trustscoredomain.ActivityStats

	recent := db.NewSelect().
		Model((*marketplacedb.Job)(nil)).
		ColumnExpr("COUNT(*)").
		Where("j.status = ?", marketplacedomain.JobStatusCompleted).
		Where("j.completed_at >= ?", since).
		Where("(j.client_id = u.id OR j.freelancer_id = u.id)")

	err := db.NewSelect().
		Model((*marketplacedb.User)(nil)).
		Column("u.login_streak", "u.level").
		ColumnExpr("(?) AS recent_completed", recent).
		Where("u.id = ?", userID).
		Scan(ctx, &out)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, marketplacedb.ErrNotFound
		}
		return out, fmt.Errorf("failed to load activity: %w", err)
	}
	return out, nil
}

func (r *Impl) DisputeStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.DisputeStats, error) {
	var out trustscoredomain.DisputeStats
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.Dispute)(nil)).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COUNT(*) FILTER (WHERE d.status = ?) AS upheld", marketplacedomain.DisputeStatusUpheld).
		ColumnExpr("COUNT(*) FILTER (WHERE d.status = ?) AS dismissed", marketplacedomain.DisputeStatusDismissed).
		Where("d.against_user_id = ?", userID).
		Scan(ctx, &out)
	if err != nil {
		return out, fmt.Errorf("failed to aggregate disputes: %w", err)
	}
	return out, nil
}

func (r *Impl) LastActiveAt(ctx context.Context, db bun.IDB, userID uuid.UUID) (time.Time, error) {
	var at time.Time
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.User)(nil)).
		Column("u.last_active_at").
		Where("u.id = ?", userID).
		Scan(ctx, &at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, marketplacedb.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get last activity: %w", err)
	}
	return at, nil
}

func (r *Impl) ListInactiveScoredUsers(ctx context.Context, db bun.IDB, cutoff time.Time, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []uuid.UUID
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.User)(nil)).
		Column("u.id").
		Join("JOIN user_stats AS us ON us.user_id = u.id").
		Where("u.last_active_at < ?", cutoff).
		Where("us.stats -> ? IS NOT NULL", marketplacedb.StatsKeyTrustScore).
		Where("u.id > ?", after).
		OrderExpr("u.id ASC").
		Limit(limit).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive users: %w", err)
	}
	return ids, nil
}
