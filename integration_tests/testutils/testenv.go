// Package testutils starts the containers shared by the integration suites
// and seeds marketplace data.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/testcontainers/testcontainers-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/escrowhub/api/app"
	achievementmigrations "github.com/escrowhub/api/app/modules/achievement/infrastructure/repositories/migrations"
	marketplacemigrations "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories/migrations"
	referralmigrations "github.com/escrowhub/api/app/modules/referral/infrastructure/repositories/migrations"
	"github.com/escrowhub/api/config"
	"github.com/escrowhub/api/integration_tests/containers"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
)

// TestEnvironment holds the live infrastructure shared by one test binary.
type TestEnvironment struct {
	Ctx           context.Context
	Config        *config.Config
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Redis         *redis.Client
	Observability observability.Observability

	cancel     context.CancelFunc
	containers []testcontainers.Container
}

var (
	envOnce   sync.Once
	sharedEnv *TestEnvironment
	envErr    error
)

// GetTestEnv starts the containers on first use. Integration tests are
// skipped under -short.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	envOnce.Do(func() {
		sharedEnv, envErr = newTestEnvironment()
	})
	if envErr != nil {
		t.Fatalf("failed to set up test environment: %v", envErr)
	}
	return sharedEnv
}

func newTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{Ctx: ctx, cancel: cancel}

	pg, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		env.Shutdown()
		return nil, err
	}
	env.containers = append(env.containers, pg)

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Shutdown()
		return nil, err
	}
	env.containers = append(env.containers, natsContainer)

	redisContainer, redisAddr, err := containers.SetupRedisContainer(ctx)
	if err != nil {
		env.Shutdown()
		return nil, err
	}
	env.containers = append(env.containers, redisContainer)

	env.Config = &config.Config{
		Postgres:   config.PostgresConfig{DSN: dsn},
		NATS:       config.NATSConfig{URL: natsURL},
		Redis:      config.RedisConfig{Addr: redisAddr, TTL: time.Minute},
		HTTP:       config.HTTPConfig{Addr: ":0", PublicBaseURL: "https://escrowhub.test"},
		JWT:        config.JWTConfig{Secret: "integration-secret-0123456789abcdef", Issuer: "escrowhub"},
		TrustScore: config.TrustScoreConfig{DecaySchedule: "0 3 * * *", InactivityDays: 30},
		Referral:   config.ReferralConfig{TierPolicy: "service"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	if os.Getenv("INTEGRATION_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	env.Observability = observability.NewNoopObservability()
	env.Observability.Logger = logger

	env.DB = app.NewDB(dsn)
	if err := RunMigrations(ctx, env.DB); err != nil {
		env.Shutdown()
		return nil, err
	}

	env.EventBus, err = eventbus.NewNATSEventBus(ctx, natsURL, eventbus.DefaultStreams, logger)
	if err != nil {
		env.Shutdown()
		return nil, err
	}

	env.Redis = redis.NewClient(&redis.Options{Addr: redisAddr})
	return env, nil
}

// RunMigrations applies every module's migrations in dependency order.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	sets := []struct {
		name string
		ms   *migrate.Migrations
	}{
		{"marketplace", marketplacemigrations.Migrations},
		{"achievement", achievementmigrations.Migrations},
		{"referral", referralmigrations.Migrations},
	}
	for _, set := range sets {
		migrator := migrate.NewMigrator(db, set.ms,
			migrate.WithTableName("bun_migrations_"+set.name),
			migrate.WithLocksTableName("bun_migration_locks_"+set.name),
		)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", set.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", set.name, err)
		}
	}
	return nil
}

// Reset empties every application table and the cache between tests.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	_, err := env.DB.ExecContext(env.Ctx, `
		TRUNCATE TABLE
			referral_clicks, referrals, referral_codes,
			user_achievements,
			endorsements, verification_badges, disputes, reviews, earnings,
			milestones, bids, jobs, faqs, user_stats, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	if err := env.Redis.FlushDB(env.Ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

// Shutdown releases connections and terminates the containers.
func (env *TestEnvironment) Shutdown() {
	if env == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.Redis != nil {
		_ = env.Redis.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	for i := len(env.containers) - 1; i >= 0; i-- {
		_ = env.containers[i].Terminate(ctx)
	}
	if env.cancel != nil {
		env.cancel()
	}
}

// ShutdownShared is called from TestMain after the suite ran.
func ShutdownShared() {
	if sharedEnv != nil {
		sharedEnv.Shutdown()
	}
}

// Eventually polls cond until it holds or timeout passes.
func Eventually(t *testing.T, timeout time.Duration, cond func() (bool, error)) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		ok, err := cond()
		if err == nil && ok {
			return
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s (last error: %v)", timeout, lastErr)
}
