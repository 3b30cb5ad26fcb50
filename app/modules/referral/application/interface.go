package referralservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
)

// Service defines the referral operations.
type Service interface {
	GetOrCreateLink(ctx context.Context, userID uuid.UUID) (*referraldomain.Link, error)
	RecordClick(ctx context.Context, code, ip, userAgent string) error
	RecordSignup(ctx context.Context, code string, referredUserID uuid.UUID) (*referraldomain.Referral, error)
	RecordConversion(ctx context.Context, referredUserID uuid.UUID) (*referraldomain.ConversionOutcome, error)

	ListRewards(ctx context.Context, userID uuid.UUID) (referraldomain.Rewards, error)
	ClaimReward(ctx context.Context, userID, rewardID uuid.UUID) (*referraldomain.Reward, error)
	ClaimAllRewards(ctx context.Context, userID uuid.UUID) (referraldomain.ClaimSummary, error)

	GetStats(ctx context.Context, userID uuid.UUID) (*referraldomain.Stats, error)
	GetDashboard(ctx context.Context, userID uuid.UUID) (*referraldomain.Dashboard, error)
	TopReferrers(ctx context.Context, limit int) ([]referraldomain.LeaderboardEntry, error)
	ExportReport(ctx context.Context, since time.Time) ([]byte, error)
}
