package trustscoredb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	marketplacedomain "github.com/escrowhub/api/app/modules/marketplace/domain"
	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
)

// Repository runs the aggregate queries behind each trust score component.
// It only reads the marketplace tables.
type Repository interface {
	ReviewStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.ReviewStats, error)
	JobStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.JobStats, error)
	BadgeTypes(ctx context.Context, db bun.IDB, userID uuid.UUID) ([]marketplacedomain.BadgeType, error)
	EndorsementStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.EndorsementStats, error)
	ActivityStats(ctx context.Context, db bun.IDB, userID uuid.UUID, since time.Time) (trustscoredomain.ActivityStats, error)
	DisputeStats(ctx context.Context, db bun.IDB, userID uuid.UUID) (trustscoredomain.DisputeStats, error)

	// LastActiveAt returns marketplacedb.ErrNotFound for unknown users.
	LastActiveAt(ctx context.Context, db bun.IDB, userID uuid.UUID) (time.Time, error)
	// ListInactiveScoredUsers pages, by id, through users with a persisted
	// score whose last activity is before cutoff.
	ListInactiveScoredUsers(ctx context.Context, db bun.IDB, cutoff time.Time, after uuid.UUID, limit int) ([]uuid.UUID, error)
}
