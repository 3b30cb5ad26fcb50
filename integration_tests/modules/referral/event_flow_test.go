package referral_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/escrowhub/api/app"
	"github.com/escrowhub/api/app/modules/achievement"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/app/modules/referral"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	"github.com/escrowhub/api/integration_tests/testutils"
	"github.com/escrowhub/api/pkg/eventbus"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
)

// TestReferralEventFlow drives a signup and a first completed job through
// NATS and waits for the referral and achievement consumers to react.
func TestReferralEventFlow(t *testing.T) {
	env := testutils.GetTestEnv(t)
	env.Reset(t)
	ctx, cancel := context.WithCancel(env.Ctx)
	defer cancel()

	router, err := app.NewEventRouter(env.Observability)
	require.NoError(t, err)

	stats := marketplacedb.NewRepository(env.DB)
	refModule, err := referral.NewModule(ctx, env.Config, env.Observability, referral.Deps{
		DB: env.DB, Bus: env.EventBus, Stats: stats, EventRouter: router,
	})
	require.NoError(t, err)
	_, err = achievement.NewModule(ctx, env.Observability, achievement.Deps{
		DB: env.DB, Bus: env.EventBus, Stats: stats, EventRouter: router,
	})
	require.NoError(t, err)

	go func() { _ = router.Run(ctx) }()
	select {
	case <-router.Running():
	case <-time.After(10 * time.Second):
		t.Fatal("event router did not start")
	}
	defer router.Close()

	gen := testutils.NewTestDataGenerator(env.DB, 99)
	referrer := gen.User(t, ctx)
	referred := gen.User(t, ctx)
	client := gen.User(t, ctx)

	link, err := refModule.GetService().GetOrCreateLink(ctx, referrer.ID)
	require.NoError(t, err)

	require.NoError(t, eventbus.PublishEvent(ctx, env.EventBus, marketplaceevents.UserRegisteredV1, &marketplaceevents.UserRegisteredPayloadV1{
		UserID:       referred.ID,
		Username:     referred.Username,
		ReferralCode: link.Code,
		RegisteredAt: time.Now().UTC(),
	}))

	testutils.Eventually(t, 15*time.Second, func() (bool, error) {
		n, err := env.DB.NewSelect().Table("referrals").Where("referred_user_id = ?", referred.ID).Count(ctx)
		return n == 1, err
	})

	job := gen.CompletedJob(t, ctx, client.ID, referred.ID, decimal.NewFromInt(800))
	require.NoError(t, eventbus.PublishEvent(ctx, env.EventBus, marketplaceevents.JobCompletedV1, &marketplaceevents.JobCompletedPayloadV1{
		JobID:        job.ID,
		ClientID:     client.ID,
		FreelancerID: referred.ID,
		Paid:         job.Budget,
		CompletedAt:  *job.CompletedAt,
	}))

	testutils.Eventually(t, 15*time.Second, func() (bool, error) {
		var status string
		err := env.DB.NewSelect().Table("referrals").Column("status").
			Where("referred_user_id = ?", referred.ID).Scan(ctx, &status)
		return status == string(referraldomain.StatusActive), err
	})

	testutils.Eventually(t, 15*time.Second, func() (bool, error) {
		return env.DB.NewSelect().Table("user_achievements").
			Where("user_id = ? AND achievement_key = ?", referred.ID, "first_job").
			Exists(ctx)
	})
}
