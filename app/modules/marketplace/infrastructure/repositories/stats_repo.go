package marketplacedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
)

func (r *Impl) GetStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (StatsDocument, error) {
	db = r.resolveDB(db)
	row := new(UserStats)
	err := db.NewSelect().Model(row).Where("us.user_id = ?", userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StatsDocument(emptyDocument), nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return row.Stats, nil
}

func (r *Impl) LockStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (StatsDocument, error) {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&UserStats{UserID: userID, Stats: StatsDocument(emptyDocument)}).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user stats row: %w", err)
	}

	row := new(UserStats)
	if err := db.NewSelect().Model(row).Where("us.user_id = ?", userID).For("UPDATE").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock user stats: %w", err)
	}
	return row.Stats, nil
}

func (r *Impl) SaveStats(ctx context.Context, db bun.IDB, userID uuid.UUID, doc StatsDocument) error {
	db = r.resolveDB(db)
	row := &UserStats{UserID: userID, Stats: doc, UpdatedAt: time.Now().UTC()}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("stats = EXCLUDED.stats").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}
	return nil
}

func (r *Impl) AddXP(ctx context.Context, db bun.IDB, userID uuid.UUID, amount int64) (int64, int, error) {
	db = r.resolveDB(db)
	var xp int64
	err := db.NewUpdate().
		Model((*User)(nil)).
		Set("xp = xp + ?", amount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Returning("xp").
		Scan(ctx, &xp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrNotFound
		}
		return 0, 0, fmt.Errorf("failed to add xp: %w", err)
	}

	level := marketplacedomain.LevelForXP(xp)
	if _, err := db.NewUpdate().
		Model((*User)(nil)).
		Set("level = ?", level).
		Where("id = ?", userID).
		Where("level <> ?", level).
		Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to update level: %w", err)
	}
	return xp, level, nil
}
