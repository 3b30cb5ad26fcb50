package referraldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
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

// inserted reports whether an ON CONFLICT DO NOTHING insert wrote a row. Bun
// sends these inserts with RETURNING, so the count is the rows returned.
func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) Username(ctx context.Context, db bun.IDB, userID uuid.UUID) (string, error) {
	var username string
	err := r.resolveDB(db).NewSelect().
		Model((*marketplacedb.User)(nil)).
		Column("u.username").
		Where("u.id = ?", userID).
		Scan(ctx, &username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", marketplacedb.ErrNotFound
		}
		return "", fmt.Errorf("failed to get username: %w", err)
	}
	return username, nil
}

func (r *Impl) GetCodeByUser(ctx context.Context, db bun.IDB, userID uuid.UUID) (*ReferralCode, error) {
	c := new(ReferralCode)
	if err := r.resolveDB(db).NewSelect().Model(c).Where("rc.user_id = ?", userID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, marketplacedb.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral code: %w", err)
	}
	return c, nil
}

func (r *Impl) GetCode(ctx context.Context, db bun.IDB, code string) (*ReferralCode, error) {
	c := new(ReferralCode)
	if err := r.resolveDB(db).NewSelect().Model(c).Where("rc.code = ?", code).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, marketplacedb.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral code: %w", err)
	}
	return c, nil
}

func (r *Impl) CreateCode(ctx context.Context, db bun.IDB, c *ReferralCode) (bool, error) {
	res, err := r.resolveDB(db).NewInsert().
		Model(c).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create referral code: %w", err)
	}
	return inserted(res)
}

func (r *Impl) InsertClick(ctx context.Context, db bun.IDB, click *ReferralClick) error {
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if _, err := r.resolveDB(db).NewInsert().Model(click).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}
	return nil
}

func (r *Impl) CountClicks(ctx context.Context, db bun.IDB, code string) (int, error) {
	n, err := r.resolveDB(db).NewSelect().
		Model((*ReferralClick)(nil)).
		Where("rcl.code = ?", code).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return n, nil
}

func (r *Impl) CreateReferral(ctx context.Context, db bun.IDB, ref *Referral) (bool, error) {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	res, err := r.resolveDB(db).NewInsert().
		Model(ref).
		On("CONFLICT (referred_user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create referral: %w", err)
	}
	return inserted(res)
}

func (r *Impl) GetReferralByReferredForUpdate(ctx context.Context, db bun.IDB, referredUserID uuid.UUID) (*Referral, error) {
	ref := new(Referral)
	err := r.resolveDB(db).NewSelect().
		Model(ref).
		Where("rf.referred_user_id = ?", referredUserID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, marketplacedb.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return ref, nil
}

// ActivateReferral only moves pending referrals.
func (r *Impl) ActivateReferral(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Referral)(nil)).
		Set("status = ?", referraldomain.StatusActive).
		Set("converted_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", referraldomain.StatusPending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to activate referral: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return marketplacedb.ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) CountReferrals(ctx context.Context, db bun.IDB, referrerID uuid.UUID) (referraldomain.Counts, error) {
	var counts referraldomain.Counts
	err := r.resolveDB(db).NewSelect().
		Model((*Referral)(nil)).
		ColumnExpr("COUNT(*) AS signups").
		ColumnExpr("COUNT(*) FILTER (WHERE rf.status = ?) AS active", referraldomain.StatusActive).
		Where("rf.referrer_id = ?", referrerID).
		Scan(ctx, &counts.Signups, &counts.Active)
	if err != nil {
		return counts, fmt.Errorf("failed to count referrals: %w", err)
	}
	return counts, nil
}

func (r *Impl) ListReferrals(ctx context.Context, db bun.IDB, referrerID uuid.UUID, limit int) ([]Referral, error) {
	var out []Referral
	err := r.resolveDB(db).NewSelect().
		Model(&out).
		ColumnExpr("rf.*").
		ColumnExpr("u.username AS referred_name").
		Join("JOIN users AS u ON u.id = rf.referred_user_id").
		Where("rf.referrer_id = ?", referrerID).
		Order("rf.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return out, nil
}

// TopReferrers ranks users by active referrals. Ties go to the earlier
// account. Rank and Tier are left for the caller.
func (r *Impl) TopReferrers(ctx context.Context, db bun.IDB, limit int) ([]referraldomain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := r.resolveDB(db).NewSelect().
		Model((*Referral)(nil)).
		ColumnExpr("rf.referrer_id AS user_id").
		ColumnExpr("u.username").
		ColumnExpr("COUNT(*) AS active_referrals").
		Join("JOIN users AS u ON u.id = rf.referrer_id").
		Where("rf.status = ?", referraldomain.StatusActive).
		GroupExpr("rf.referrer_id, u.username, u.created_at").
		OrderExpr("active_referrals DESC, u.created_at ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list top referrers: %w", err)
	}
	out := make([]referraldomain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, referraldomain.LeaderboardEntry{
			UserID:          row.UserID,
			Username:        row.Username,
			ActiveReferrals: row.ActiveReferrals,
		})
	}
	return out, nil
}

func (r *Impl) ListReferralsSince(ctx context.Context, db bun.IDB, since time.Time) ([]referraldomain.ReportRow, error) {
	var rows []reportRow
	err := r.resolveDB(db).NewSelect().
		Model((*Referral)(nil)).
		ColumnExpr("rf.id AS referral_id").
		ColumnExpr("rf.referrer_id").
		ColumnExpr("referrer.username AS referrer_username").
		ColumnExpr("rf.referred_user_id").
		ColumnExpr("referred.username AS referred_username").
		ColumnExpr("rf.code, rf.status, rf.created_at, rf.converted_at").
		Join("JOIN users AS referrer ON referrer.id = rf.referrer_id").
		Join("JOIN users AS referred ON referred.id = rf.referred_user_id").
		Where("rf.created_at >= ?", since).
		Order("rf.created_at ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals for report: %w", err)
	}
	out := make([]referraldomain.ReportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, referraldomain.ReportRow(row))
	}
	return out, nil
}
