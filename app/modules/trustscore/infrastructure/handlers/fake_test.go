package trustscorehandlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	trustscoreservice "github.com/escrowhub/api/app/modules/trustscore/application"
	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
)

type FakeService struct {
	trace []string

	CalculateTrustScoreFunc  func(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error)
	GetTrustScoreFunc        func(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error)
	GetTrustScoreHistoryFunc func(ctx context.Context, userID uuid.UUID) ([]trustscoredomain.HistoryEntry, error)
	ApplyDecayFunc           func(ctx context.Context, userID uuid.UUID, now time.Time) (*trustscoredomain.DecayOutcome, error)
	ApplyDecayToInactiveFunc func(ctx context.Context, now time.Time) (trustscoredomain.DecaySweepSummary, error)
	RenderHistoryChartFunc   func(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

var _ trustscoreservice.Service = (*FakeService)(nil)

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return append([]string(nil), f.trace...)
}

func (f *FakeService) CalculateTrustScore(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error) {
	f.record("CalculateTrustScore")
	if f.CalculateTrustScoreFunc != nil {
		return f.CalculateTrustScoreFunc(ctx, userID)
	}
	return &trustscoredomain.Result{UserID: userID}, nil
}

func (f *FakeService) GetTrustScore(ctx context.Context, userID uuid.UUID) (*trustscoredomain.Result, error) {
	f.record("GetTrustScore")
	if f.GetTrustScoreFunc != nil {
		return f.GetTrustScoreFunc(ctx, userID)
	}
	return trustscoredomain.DefaultResult(userID, time.Time{}), nil
}

func (f *FakeService) GetTrustScoreHistory(ctx context.Context, userID uuid.UUID) ([]trustscoredomain.HistoryEntry, error) {
	f.record("GetTrustScoreHistory")
	if f.GetTrustScoreHistoryFunc != nil {
		return f.GetTrustScoreHistoryFunc(ctx, userID)
	}
	return []trustscoredomain.HistoryEntry{}, nil
}

func (f *FakeService) ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*trustscoredomain.DecayOutcome, error) {
	f.record("ApplyDecay")
	if f.ApplyDecayFunc != nil {
		return f.ApplyDecayFunc(ctx, userID, now)
	}
	return &trustscoredomain.DecayOutcome{UserID: userID}, nil
}

func (f *FakeService) ApplyDecayToInactive(ctx context.Context, now time.Time) (trustscoredomain.DecaySweepSummary, error) {
	f.record("ApplyDecayToInactive")
	if f.ApplyDecayToInactiveFunc != nil {
		return f.ApplyDecayToInactiveFunc(ctx, now)
	}
	return trustscoredomain.DecaySweepSummary{}, nil
}

func (f *FakeService) RenderHistoryChart(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	f.record("RenderHistoryChart")
	if f.RenderHistoryChartFunc != nil {
		return f.RenderHistoryChartFunc(ctx, userID)
	}
	return nil, nil
}
