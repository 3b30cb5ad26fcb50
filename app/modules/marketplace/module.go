package marketplace

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplaceservice "github.com/escrowhub/api/app/modules/marketplace/application"
	marketplacehandlers "github.com/escrowhub/api/app/modules/marketplace/infrastructure/handlers"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
)

// Module owns the marketplace service and its HTTP routes. It publishes
// events but does not subscribe to any.
type Module struct {
	service marketplaceservice.Service
	repo    marketplacedb.Repository
	logger  *slog.Logger
}

// NewModule creates the marketplace module and mounts its routes on httpRouter
// when one is given.
func NewModule(
	ctx context.Context,
	obs observability.Observability,
	bus eventbus.EventBus,
	db *bun.DB,
	httpRouter chi.Router,
	auth *authhandlers.Authenticator,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing marketplace module")

	repo := marketplacedb.NewRepository(db)
	service := marketplaceservice.NewMarketplaceService(repo, bus, logger, obs.Metrics, obs.Tracer, db)

	if httpRouter != nil {
		marketplacehandlers.NewMarketplaceHandlers(service, logger).Mount(httpRouter, auth)
	}

	return &Module{
		service: service,
		repo:    repo,
		logger:  logger,
	}, nil
}

// GetService returns the marketplace service for use by other modules.
func (m *Module) GetService() marketplaceservice.Service {
	return m.service
}

// GetRepository exposes the query layer to the modules that aggregate over it.
func (m *Module) GetRepository() marketplacedb.Repository {
	return m.repo
}
