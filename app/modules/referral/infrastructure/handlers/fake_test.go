package referralhandlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	referralservice "github.com/escrowhub/api/app/modules/referral/application"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
)

// FakeService records the calls the handlers make. Unset funcs return zero
// values.
type FakeService struct {
	trace []string

	GetOrCreateLinkFunc  func(ctx context.Context, userID uuid.UUID) (*referraldomain.Link, error)
	RecordClickFunc      func(ctx context.Context, code, ip, userAgent string) error
	RecordSignupFunc     func(ctx context.Context, code string, referredUserID uuid.UUID) (*referraldomain.Referral, error)
	RecordConversionFunc func(ctx context.Context, referredUserID uuid.UUID) (*referraldomain.ConversionOutcome, error)
	ListRewardsFunc      func(ctx context.Context, userID uuid.UUID) (referraldomain.Rewards, error)
	ClaimRewardFunc      func(ctx context.Context, userID, rewardID uuid.UUID) (*referraldomain.Reward, error)
	ClaimAllRewardsFunc  func(ctx context.Context, userID uuid.UUID) (referraldomain.ClaimSummary, error)
	GetStatsFunc         func(ctx context.Context, userID uuid.UUID) (*referraldomain.Stats, error)
	GetDashboardFunc     func(ctx context.Context, userID uuid.UUID) (*referraldomain.Dashboard, error)
	TopReferrersFunc     func(ctx context.Context, limit int) ([]referraldomain.LeaderboardEntry, error)
	ExportReportFunc     func(ctx context.Context, since time.Time) ([]byte, error)
}

var _ referralservice.Service = (*FakeService)(nil)

func (f *FakeService) record(op string) { f.trace = append(f.trace, op) }

func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) GetOrCreateLink(ctx context.Context, userID uuid.UUID) (*referraldomain.Link, error) {
	f.record("GetOrCreateLink")
	if f.GetOrCreateLinkFunc != nil {
		return f.GetOrCreateLinkFunc(ctx, userID)
	}
	return &referraldomain.Link{}, nil
}

func (f *FakeService) RecordClick(ctx context.Context, code, ip, userAgent string) error {
	f.record("RecordClick")
	if f.RecordClickFunc != nil {
		return f.RecordClickFunc(ctx, code, ip, userAgent)
	}
	return nil
}

func (f *FakeService) RecordSignup(ctx context.Context, code string, referredUserID uuid.UUID) (*referraldomain.Referral, error) {
	f.record("RecordSignup")
	if f.RecordSignupFunc != nil {
		return f.RecordSignupFunc(ctx, code, referredUserID)
	}
	return &referraldomain.Referral{}, nil
}

func (f *FakeService) RecordConversion(ctx context.Context, referredUserID uuid.UUID) (*referraldomain.ConversionOutcome, error) {
	f.record("RecordConversion")
	if f.RecordConversionFunc != nil {
		return f.RecordConversionFunc(ctx, referredUserID)
	}
	return &referraldomain.ConversionOutcome{}, nil
}

func (f *FakeService) ListRewards(ctx context.Context, userID uuid.UUID) (referraldomain.Rewards, error) {
	f.record("ListRewards")
	if f.ListRewardsFunc != nil {
		return f.ListRewardsFunc(ctx, userID)
	}
	return referraldomain.Rewards{}, nil
}

func (f *FakeService) ClaimReward(ctx context.Context, userID, rewardID uuid.UUID) (*referraldomain.Reward, error) {
	f.record("ClaimReward")
	if f.ClaimRewardFunc != nil {
		return f.ClaimRewardFunc(ctx, userID, rewardID)
	}
	return &referraldomain.Reward{ID: rewardID, Claimed: true}, nil
}

func (f *FakeService) ClaimAllRewards(ctx context.Context, userID uuid.UUID) (referraldomain.ClaimSummary, error) {
	f.record("ClaimAllRewards")
	if f.ClaimAllRewardsFunc != nil {
		return f.ClaimAllRewardsFunc(ctx, userID)
	}
	return referraldomain.ClaimSummary{}, nil
}

func (f *FakeService) GetStats(ctx context.Context, userID uuid.UUID) (*referraldomain.Stats, error) {
	f.record("GetStats")
	if f.GetStatsFunc != nil {
		return f.GetStatsFunc(ctx, userID)
	}
	return &referraldomain.Stats{}, nil
}

func (f *FakeService) GetDashboard(ctx context.Context, userID uuid.UUID) (*referraldomain.Dashboard, error) {
	f.record("GetDashboard")
	if f.GetDashboardFunc != nil {
		return f.GetDashboardFunc(ctx, userID)
	}
	return &referraldomain.Dashboard{}, nil
}

func (f *FakeService) TopReferrers(ctx context.Context, limit int) ([]referraldomain.LeaderboardEntry, error) {
	f.record("TopReferrers")
	if f.TopReferrersFunc != nil {
		return f.TopReferrersFunc(ctx, limit)
	}
	return []referraldomain.LeaderboardEntry{}, nil
}

func (f *FakeService) ExportReport(ctx context.Context, since time.Time) ([]byte, error) {
	f.record("ExportReport")
	if f.ExportReportFunc != nil {
		return f.ExportReportFunc(ctx, since)
	}
	return []byte("xlsx"), nil
}
