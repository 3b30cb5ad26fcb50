package trustscore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	trustscoreservice "github.com/escrowhub/api/app/modules/trustscore/application"
	trustscorecache "github.com/escrowhub/api/app/modules/trustscore/infrastructure/cache"
	trustscorehandlers "github.com/escrowhub/api/app/modules/trustscore/infrastructure/handlers"
	trustscorequeue "github.com/escrowhub/api/app/modules/trustscore/infrastructure/queue"
	trustscoredb "github.com/escrowhub/api/app/modules/trustscore/infrastructure/repositories"
	trustscorerouter "github.com/escrowhub/api/app/modules/trustscore/infrastructure/router"
	"github.com/escrowhub/api/config"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
	"github.com/escrowhub/api/pkg/observability/attr"
)

// Deps are the collaborators the trust score module borrows from the
// application and the marketplace module.
type Deps struct {
	DB          *bun.DB
	Bus         eventbus.EventBus
	Stats       marketplacedb.StatsRepository
	Cache       trustscorecache.Cache
	EventRouter *message.Router
	HTTPRouter  chi.Router
	Auth        *authhandlers.Authenticator
	// Queue enables the River decay job. It needs Postgres and is off in
	// tooling that only calls the service.
	Queue bool
}

// Module represents the trust score module.
type Module struct {
	service    trustscoreservice.Service
	queue      *trustscorequeue.Service
	logger     *slog.Logger
	cancelFunc context.CancelFunc
}

// NewModule creates the trust score module.
func NewModule(ctx context.Context, cfg *config.Config, obs observability.Observability, deps Deps) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing trust score module")

	var publisher message.Publisher
	if deps.Bus != nil {
		publisher = deps.Bus
	}

	service := trustscoreservice.NewTrustScoreService(
		trustscoredb.NewRepository(deps.DB),
		deps.Stats,
		deps.Cache,
		publisher,
		logger,
		obs.Metrics,
		obs.Tracer,
		deps.DB,
		cfg.TrustScore.InactivityDays,
	)

	handlers := trustscorehandlers.NewTrustScoreHandlers(service, logger)
	if deps.HTTPRouter != nil {
		handlers.Mount(deps.HTTPRouter, deps.Auth)
	}

	if deps.EventRouter != nil && deps.Bus != nil {
		subscriber, err := deps.Bus.Subscriber(trustscorerouter.ConsumerGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to create trust score subscriber: %w", err)
		}
		router := trustscorerouter.NewTrustScoreRouter(logger, deps.EventRouter, subscriber, deps.Bus, obs.Tracer)
		if err := router.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure trust score router: %w", err)
		}
	}

	module := &Module{service: service, logger: logger}

	if deps.Queue {
		queue, err := trustscorequeue.NewService(ctx, logger, cfg.Postgres.DSN, cfg.TrustScore.DecaySchedule, obs.Metrics, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create trust score queue: %w", err)
		}
		module.queue = queue
	}

	return module, nil
}

// GetService returns the trust score service for use by other modules.
func (m *Module) GetService() trustscoreservice.Service {
	return m.service
}

// Run starts the decay queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Trust score queue failed to start", attr.Error(err))
		}
	}

	<-ctx.Done()
	m.logger.Info("Trust score module goroutine stopped")
}

// Close stops the decay queue.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping trust score module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.queue != nil {
		return m.queue.Stop(ctx)
	}
	return nil
}
