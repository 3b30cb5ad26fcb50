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

func (r *Impl) CreateJob(ctx context.Context, db bun.IDB, job *Job) error {
	db = r.resolveDB(db)
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = marketplacedomain.JobStatusOpen
	}
	if _, err := db.NewInsert().Model(job).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *Impl) GetJob(ctx context.Context, db bun.IDB, id uuid.UUID) (*Job, error) {
	return r.getJob(ctx, r.resolveDB(db), id, false)
}

// GetJobForUpdate locks the job row for the rest of the transaction.
func (r *Impl) GetJobForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*Job, error) {
	return r.getJob(ctx, r.resolveDB(db), id, true)
}

func (r *Impl) getJob(ctx context.Context, db bun.IDB, id uuid.UUID, lock bool) (*Job, error) {
	job := new(Job)
	q := db.NewSelect().Model(job).Where("j.id = ?", id)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (r *Impl) ListJobs(ctx context.Context, db bun.IDB, filter JobFilter) ([]Job, error) {
	db = r.resolveDB(db)
	var jobs []Job
	q := db.NewSelect().Model(&jobs).Order("j.created_at DESC")
	if filter.Status != "" {
		q = q.Where("j.status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		q = q.Where("j.client_id = ?", *filter.ClientID)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q = q.Limit(limit).Offset(filter.Offset)
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJob writes the mutable job columns.
func (r *Impl) UpdateJob(ctx context.Context, db bun.IDB, job *Job) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model(job).
		Column("freelancer_id", "status", "started_at", "completed_at", "cancelled_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return requireRows(res)
}

func (r *Impl) CountCompletedJobs(ctx context.Context, db bun.IDB, freelancerID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*Job)(nil)).
		Where("j.freelancer_id = ?", freelancerID).
		Where("j.status = ?", marketplacedomain.JobStatusCompleted).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed jobs: %w", err)
	}
	return n, nil
}

func (r *Impl) CreateBid(ctx context.Context, db bun.IDB, bid *Bid) error {
	db = r.resolveDB(db)
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	if bid.Status == "" {
		bid.Status = marketplacedomain.BidStatusPending
	}
	if _, err := db.NewInsert().Model(bid).Returning("*").Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create bid: %w", err)
	}
	return nil
}

func (r *Impl) GetBid(ctx context.Context, db bun.IDB, id uuid.UUID) (*Bid, error) {
	db = r.resolveDB(db)
	bid := new(Bid)
	if err := db.NewSelect().Model(bid).Where("b.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

func (r *Impl) ListBids(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]Bid, error) {
	db = r.resolveDB(db)
	var bids []Bid
	if err := db.NewSelect().Model(&bids).Where("b.job_id = ?", jobID).Order("b.created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

func (r *Impl) UpdateBidStatus(ctx context.Context, db bun.IDB, id uuid.UUID, status marketplacedomain.BidStatus) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Bid)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update bid status: %w", err)
	}
	return requireRows(res)
}

func (r *Impl) RejectOtherBids(ctx context.Context, db bun.IDB, jobID, acceptedBidID uuid.UUID) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*Bid)(nil)).
		Set("status = ?", marketplacedomain.BidStatusRejected).
		Where("job_id = ?", jobID).
		Where("id <> ?", acceptedBidID).
		Where("status = ?", marketplacedomain.BidStatusPending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reject other bids: %w", err)
	}
	return nil
}

func (r *Impl) CreateMilestone(ctx context.Context, db bun.IDB, m *Milestone) error {
	db = r.resolveDB(db)
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = marketplacedomain.MilestoneStatusFunded
	}
	if _, err := db.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}
	return nil
}

func (r *Impl) GetMilestone(ctx context.Context, db bun.IDB, id uuid.UUID) (*Milestone, error) {
	db = r.resolveDB(db)
	m := new(Milestone)
	if err := db.NewSelect().Model(m).Where("m.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	return m, nil
}

func (r *Impl) ListMilestones(ctx context.Context, db bun.IDB, jobID uuid.UUID) ([]Milestone, error) {
	db = r.resolveDB(db)
	var ms []Milestone
	if err := db.NewSelect().Model(&ms).Where("m.job_id = ?", jobID).Order("m.position ASC", "m.created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return ms, nil
}

// MarkMilestoneReleased only touches funded milestones, so a second release
// reports ErrNoRowsAffected.
func (r *Impl) MarkMilestoneReleased(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Milestone)(nil)).
		Set("status = ?", marketplacedomain.MilestoneStatusReleased).
		Set("released_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", marketplacedomain.MilestoneStatusFunded).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to release milestone: %w", err)
	}
	return requireRows(res)
}

func (r *Impl) CreateEarning(ctx context.Context, db bun.IDB, e *Earning) error {
	db = r.resolveDB(db)
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(e).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create earning: %w", err)
	}
	return nil
}

func (r *Impl) GetEarningsSummary(ctx context.Context, db bun.IDB, userID uuid.UUID, now time.Time) (*EarningsSummary, error) {
	db = r.resolveDB(db)
	summary := new(EarningsSummary)
	err := db.NewSelect().
		Model((*Earning)(nil)).
		ColumnExpr("COALESCE(SUM(e.amount), 0) AS total").
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(SUM(e.amount) FILTER (WHERE e.created_at >= ?), 0) AS last_30_days", now.AddDate(0, 0, -30)).
		ColumnExpr("MAX(e.created_at) AS last_earned_at").
		Where("e.user_id = ?", userID).
		Scan(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize earnings: %w", err)
	}
	return summary, nil
}
