package referral_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/app/modules/referral"
	referralservice "github.com/escrowhub/api/app/modules/referral/application"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	"github.com/escrowhub/api/integration_tests/testutils"
)

func newService(t *testing.T, env *testutils.TestEnvironment) referralservice.Service {
	t.Helper()
	module, err := referral.NewModule(env.Ctx, env.Config, env.Observability, referral.Deps{
		DB:    env.DB,
		Stats: marketplacedb.NewRepository(env.DB),
	})
	require.NoError(t, err)
	return module.GetService()
}

func TestReferralLifecycle(t *testing.T) {
	env := testutils.GetTestEnv(t)
	env.Reset(t)
	ctx := context.Background()
	gen := testutils.NewTestDataGenerator(env.DB, 42)
	svc := newService(t, env)

	referrer := gen.User(t, ctx)
	referred := gen.User(t, ctx)

	link, err := svc.GetOrCreateLink(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://escrowhub.test/r/"+link.Code, link.URL)

	again, err := svc.GetOrCreateLink(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Code, again.Code)

	require.NoError(t, svc.RecordClick(ctx, link.Code, "203.0.113.7", "integration"))
	require.NoError(t, svc.RecordClick(ctx, link.Code, "203.0.113.8", "integration"))

	ref, err := svc.RecordSignup(ctx, link.Code, referred.ID)
	require.NoError(t, err)
	assert.Equal(t, referraldomain.StatusPending, ref.Status)

	_, err = svc.RecordSignup(ctx, link.Code, referred.ID)
	assert.ErrorIs(t, err, referraldomain.ErrAlreadyReferred)
	_, err = svc.RecordSignup(ctx, link.Code, referrer.ID)
	assert.ErrorIs(t, err, referraldomain.ErrSelfReferral)

	outcome, err := svc.RecordConversion(ctx, referred.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Converted)
	assert.Equal(t, 1, outcome.ActiveReferrals)
	assert.Equal(t, referraldomain.TierBronze, outcome.Tier)

	repeat, err := svc.RecordConversion(ctx, referred.ID)
	require.NoError(t, err)
	assert.False(t, repeat.Converted)

	stats, err := svc.GetStats(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Clicks)
	assert.Equal(t, 1, stats.Signups)
	assert.Equal(t, 1, stats.ActiveReferrals)
	assert.Equal(t, 100.0, stats.ConversionRate)

	summary, err := svc.ClaimAllRewards(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Claimed)
	assert.Equal(t, int64(50), summary.XP)
	assert.True(t, decimal.NewFromInt(5).Equal(summary.Amount), summary.Amount.String())

	user, err := marketplacedb.NewRepository(env.DB).GetUser(ctx, env.DB, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), user.XP)

	rewards, err := svc.ListRewards(ctx, referrer.ID)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.True(t, rewards[0].Claimed)
	_, err = svc.ClaimReward(ctx, referrer.ID, rewards[0].ID)
	assert.ErrorIs(t, err, referraldomain.ErrRewardAlreadyClaimed)
}

func TestReferralMilestoneAndLeaderboard(t *testing.T) {
	env := testutils.GetTestEnv(t)
	env.Reset(t)
	ctx := context.Background()
	gen := testutils.NewTestDataGenerator(env.DB, 7)
	svc := newService(t, env)

	referrer := gen.User(t, ctx)
	other := gen.User(t, ctx)
	link, err := svc.GetOrCreateLink(ctx, referrer.ID)
	require.NoError(t, err)
	otherLink, err := svc.GetOrCreateLink(ctx, other.ID)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		u := gen.User(t, ctx)
		_, err := svc.RecordSignup(ctx, link.Code, u.ID)
		require.NoError(t, err)
		_, err = svc.RecordConversion(ctx, u.ID)
		require.NoError(t, err)
	}
	u := gen.User(t, ctx)
	_, err = svc.RecordSignup(ctx, otherLink.Code, u.ID)
	require.NoError(t, err)
	_, err = svc.RecordConversion(ctx, u.ID)
	require.NoError(t, err)

	rewards, err := svc.ListRewards(ctx, referrer.ID)
	require.NoError(t, err)
	milestones := 0
	for _, r := range rewards {
		if r.Type == referraldomain.RewardMilestone {
			milestones++
			assert.Equal(t, 5, r.Milestone)
			assert.Equal(t, int64(250), r.XP)
		}
	}
	assert.Equal(t, 1, milestones)
	assert.Len(t, rewards, 6)

	top, err := svc.TopReferrers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, referrer.ID, top[0].UserID)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, 5, top[0].ActiveReferrals)
	assert.Equal(t, other.ID, top[1].UserID)

	dashboard, err := svc.GetDashboard(ctx, referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, link.Code, dashboard.Link.Code)
	assert.Len(t, dashboard.RecentReferrals, 5)
	assert.NotEmpty(t, dashboard.RecentReferrals[0].ReferredName)
}

func TestRecordSignupUnknownCode(t *testing.T) {
	env := testutils.GetTestEnv(t)
	env.Reset(t)
	svc := newService(t, env)

	_, err := svc.RecordSignup(context.Background(), "NOPE123", uuid.New())
	assert.ErrorIs(t, err, referraldomain.ErrUnknownCode)
}
