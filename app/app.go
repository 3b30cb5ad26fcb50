package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/time/rate"

	"github.com/escrowhub/api/app/modules/achievement"
	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/escrowhub/api/app/modules/auth/infrastructure/jwt"
	"github.com/escrowhub/api/app/modules/marketplace"
	"github.com/escrowhub/api/app/modules/referral"
	"github.com/escrowhub/api/app/modules/trustscore"
	trustscorecache "github.com/escrowhub/api/app/modules/trustscore/infrastructure/cache"
	"github.com/escrowhub/api/config"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/httpapi"
	"github.com/escrowhub/api/pkg/observability"
	"github.com/escrowhub/api/pkg/observability/attr"
)

const shutdownTimeout = 10 * time.Second

// App owns the shared infrastructure and the modules built on it.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	EventRouter   *message.Router
	HTTPRouter    chi.Router
	Redis         *redis.Client

	Marketplace *marketplace.Module
	TrustScore  *trustscore.Module
	Achievement *achievement.Module
	Referral    *referral.Module

	server *http.Server
	wg     sync.WaitGroup
}

// NewDB opens the bun handle used by every repository.
func NewDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// NewEventRouter builds the watermill router shared by all module
// subscriptions. Router metrics are registered once, here.
func NewEventRouter(obs observability.Observability) (*message.Router, error) {
	wmLogger := watermill.NewSlogLogger(obs.Logger)
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create event router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	if obs.Registry != nil {
		metrics.NewPrometheusMetricsBuilder(obs.Registry, "", "").AddPrometheusRouterMetrics(router)
	}
	return router, nil
}

// NewApp wires infrastructure and modules. Nothing is started until Run.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger
	app := &App{Config: cfg, Observability: obs}

	app.DB = NewDB(cfg.Postgres.DSN)
	if err := app.DB.PingContext(ctx); err != nil {
		_ = app.DB.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	bus, err := eventbus.NewNATSEventBus(ctx, cfg.NATS.URL, eventbus.DefaultStreams, logger)
	if err != nil {
		_ = app.DB.Close()
		return nil, err
	}
	app.EventBus = bus

	app.EventRouter, err = NewEventRouter(obs)
	if err != nil {
		app.closeInfra(logger)
		return nil, err
	}

	cache := trustscorecache.NewNoopCache()
	if cfg.Redis.Addr != "" {
		app.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			logger.WarnContext(ctx, "Redis unavailable, trust scores will not be cached",
				attr.String("addr", cfg.Redis.Addr),
				attr.Error(err),
			)
		} else {
			cache = trustscorecache.NewRedisCache(app.Redis, cfg.Redis.TTL)
		}
	}

	provider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
	auth := authhandlers.NewAuthenticator(provider, logger)
	app.HTTPRouter = newHTTPRouter(cfg, obs)

	if err := app.initModules(ctx, cache, auth); err != nil {
		app.closeInfra(logger)
		return nil, err
	}

	app.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           app.HTTPRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app, nil
}

func newHTTPRouter(cfg *config.Config, obs observability.Observability) chi.Router {
	r := chi.NewRouter()
	r.Use(authhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins))
	r.Use(authhandlers.RateLimitMiddleware(authhandlers.NewIPRateLimiter(rate.Limit(20), 40)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if obs.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (app *App) initModules(ctx context.Context, cache trustscorecache.Cache, auth *authhandlers.Authenticator) error {
	var err error

	app.Marketplace, err = marketplace.NewModule(ctx, app.Observability, app.EventBus, app.DB, app.HTTPRouter, auth)
	if err != nil {
		return fmt.Errorf("failed to initialize marketplace module: %w", err)
	}
	stats := app.Marketplace.GetRepository()

	app.TrustScore, err = trustscore.NewModule(ctx, app.Config, app.Observability, trustscore.Deps{
		DB:          app.DB,
		Bus:         app.EventBus,
		Stats:       stats,
		Cache:       cache,
		EventRouter: app.EventRouter,
		HTTPRouter:  app.HTTPRouter,
		Auth:        auth,
		Queue:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize trust score module: %w", err)
	}

	app.Achievement, err = achievement.NewModule(ctx, app.Observability, achievement.Deps{
		DB:          app.DB,
		Bus:         app.EventBus,
		Stats:       stats,
		EventRouter: app.EventRouter,
		HTTPRouter:  app.HTTPRouter,
		Auth:        auth,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize achievement module: %w", err)
	}

	app.Referral, err = referral.NewModule(ctx, app.Config, app.Observability, referral.Deps{
		DB:          app.DB,
		Bus:         app.EventBus,
		Stats:       stats,
		EventRouter: app.EventRouter,
		HTTPRouter:  app.HTTPRouter,
		Auth:        auth,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize referral module: %w", err)
	}
	return nil
}

// Run starts the event router, the decay queue and the HTTP server, and
// blocks until ctx is cancelled or one of them fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger
	errCh := make(chan error, 2)

	go func() {
		if err := app.EventRouter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("event router stopped: %w", err)
		}
	}()

	app.wg.Add(1)
	go app.TrustScore.Run(ctx, &app.wg)

	go func() {
		logger.InfoContext(ctx, "HTTP server listening", attr.String("addr", app.server.Addr))
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errCh:
		logger.Error("Component failed, shutting down", attr.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, app.Close(shutdownCtx))
}

// Close stops every component in reverse start order.
func (app *App) Close(ctx context.Context) error {
	logger := app.Observability.Logger
	var errs []error

	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop http server: %w", err))
		}
	}
	if app.TrustScore != nil {
		if err := app.TrustScore.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop trust score module: %w", err))
		}
	}
	app.wg.Wait()

	if app.EventRouter != nil {
		if err := app.EventRouter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop event router: %w", err))
		}
	}
	app.closeInfra(logger)

	logger.Info("Application shut down")
	return errors.Join(errs...)
}

func (app *App) closeInfra(logger *slog.Logger) {
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Failed to close event bus", attr.Error(err))
		}
	}
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			logger.Error("Failed to close redis", attr.Error(err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Failed to close database", attr.Error(err))
		}
	}
}
