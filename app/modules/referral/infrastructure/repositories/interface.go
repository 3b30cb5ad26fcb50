package referraldb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
)

// Repository covers referral codes, clicks and referrals. Lookups return
// marketplacedb.ErrNotFound when nothing matches.
type Repository interface {
	Username(ctx context.Context, db bun.IDB, userID uuid.UUID) (string, error)

	GetCodeByUser(ctx context.Context, db bun.IDB, userID uuid.UUID) (*ReferralCode, error)
	GetCode(ctx context.Context, db bun.IDB, code string) (*ReferralCode, error)
	// CreateCode reports false when the user already has a code or the code
	// is taken.
	CreateCode(ctx context.Context, db bun.IDB, c *ReferralCode) (bool, error)

	InsertClick(ctx context.Context, db bun.IDB, click *ReferralClick) error
	CountClicks(ctx context.Context, db bun.IDB, code string) (int, error)

	// CreateReferral reports false when the user was already referred.
	CreateReferral(ctx context.Context, db bun.IDB, r *Referral) (bool, error)
	GetReferralByReferredForUpdate(ctx context.Context, db bun.IDB, referredUserID uuid.UUID) (*Referral, error)
	ActivateReferral(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) error
	CountReferrals(ctx context.Context, db bun.IDB, referrerID uuid.UUID) (referraldomain.Counts, error)
	ListReferrals(ctx context.Context, db bun.IDB, referrerID uuid.UUID, limit int) ([]Referral, error)

	TopReferrers(ctx context.Context, db bun.IDB, limit int) ([]referraldomain.LeaderboardEntry, error)
	ListReferralsSince(ctx context.Context, db bun.IDB, since time.Time) ([]referraldomain.ReportRow, error)
}
