package achievement

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	achievementservice "github.com/escrowhub/api/app/modules/achievement/application"
	achievementhandlers "github.com/escrowhub/api/app/modules/achievement/infrastructure/handlers"
	achievementdb "github.com/escrowhub/api/app/modules/achievement/infrastructure/repositories"
	achievementrouter "github.com/escrowhub/api/app/modules/achievement/infrastructure/router"
	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
)

// Deps are the collaborators the achievement module borrows from the
// application and the marketplace module.
type Deps struct {
	DB          *bun.DB
	Bus         eventbus.EventBus
	Stats       marketplacedb.StatsRepository
	EventRouter *message.Router
	HTTPRouter  chi.Router
	Auth        *authhandlers.Authenticator
}

// Module represents the achievement module.
type Module struct {
	service achievementservice.Service
}

// NewModule creates the achievement module.
func NewModule(ctx context.Context, obs observability.Observability, deps Deps) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing achievement module")

	var publisher message.Publisher
	if deps.Bus != nil {
		publisher = deps.Bus
	}

	service := achievementservice.NewAchievementService(
		achievementdb.NewRepository(deps.DB),
		deps.Stats,
		publisher,
		logger,
		obs.Metrics,
		obs.Tracer,
		deps.DB,
	)

	handlers := achievementhandlers.NewAchievementHandlers(service, logger)
	if deps.HTTPRouter != nil {
		handlers.Mount(deps.HTTPRouter, deps.Auth)
	}

	if deps.EventRouter != nil && deps.Bus != nil {
		subscriber, err := deps.Bus.Subscriber(achievementrouter.ConsumerGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to create achievement subscriber: %w", err)
		}
		router := achievementrouter.NewAchievementRouter(logger, deps.EventRouter, subscriber, deps.Bus, obs.Tracer)
		if err := router.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure achievement router: %w", err)
		}
	}

	return &Module{service: service}, nil
}

// GetService returns the achievement service for use by other modules.
func (m *Module) GetService() achievementservice.Service {
	return m.service
}
