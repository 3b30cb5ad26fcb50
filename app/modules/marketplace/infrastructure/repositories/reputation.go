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

func (r *Impl) CreateReview(ctx context.Context, db bun.IDB, review *Review) error {
	db = r.resolveDB(db)
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(review).Returning("*").Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *Impl) HasReviewed(ctx context.Context, db bun.IDB, jobID, reviewerID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().
		Model((*Review)(nil)).
		Where("r.job_id = ?", jobID).
		Where("r.reviewer_id = ?", reviewerID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check review: %w", err)
	}
	return exists, nil
}

func (r *Impl) ListReviewsForUser(ctx context.Context, db bun.IDB, revieweeID uuid.UUID, limit int) ([]Review, error) {
	db = r.resolveDB(db)
	if limit <= 0 {
		limit = 20
	}
	var reviews []Review
	err := db.NewSelect().
		Model(&reviews).
		Where("r.reviewee_id = ?", revieweeID).
		Order("r.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (r *Impl) CreateDispute(ctx context.Context, db bun.IDB, d *Dispute) error {
	db = r.resolveDB(db)
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = marketplacedomain.DisputeStatusOpen
	}
	if _, err := db.NewInsert().Model(d).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	return nil
}

func (r *Impl) GetDispute(ctx context.Context, db bun.IDB, id uuid.UUID) (*Dispute, error) {
	db = r.resolveDB(db)
	d := new(Dispute)
	if err := db.NewSelect().Model(d).Where("d.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get dispute: %w", err)
	}
	return d, nil
}

// ResolveDispute only moves open disputes, so a repeated ruling reports
// ErrNoRowsAffected.
func (r *Impl) ResolveDispute(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.DisputeStatus, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Dispute)(nil)).
		Set("status = ?", status).
		Set("resolved_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", marketplacedomain.DisputeStatusOpen).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve dispute: %w", err)
	}
	return requireRows(res)
}

func (r *Impl) CreateBadge(ctx context.Context, db bun.IDB, b *VerificationBadge) error {
	db = r.resolveDB(db)
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(b).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create verification badge: %w", err)
	}
	return nil
}

func (r *Impl) ListBadges(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]VerificationBadge, error) {
	db = r.resolveDB(db)
	var badges []VerificationBadge
	if err := db.NewSelect().Model(&badges).Where("vb.user_id = ?", userID).Order("vb.verified_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list verification badges: %w", err)
	}
	return badges, nil
}

func (r *Impl) CreateEndorsement(ctx context.Context, db bun.IDB, e *Endorsement) error {
	db = r.resolveDB(db)
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(e).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create endorsement: %w", err)
	}
	return nil
}

func (r *Impl) ListEndorsements(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]Endorsement, error) {
	db = r.resolveDB(db)
	var out []Endorsement
	if err := db.NewSelect().Model(&out).Where("en.user_id = ?", userID).Order("en.created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list endorsements: %w", err)
	}
	return out, nil
}
