package trustscoreservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
)

// Service defines the trust score operations.
type Service interface {
	CalculateTrustScore(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error)
	GetTrustScore(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error)
	GetTrustScoreHistory(ctx context.Context, userID uuid.UUID) ([]trustscoredomain.HistoryEntry, error)
	ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*trustscoredomain.DecayOutcome, error)
	ApplyDecayToInactive(ctx context.Context, now time.Time) (trustscoredomain.DecaySweepSummary, error)
	RenderHistoryChart(ctx context.Context, userID uuid.UUID) ([]byte, error)
}
