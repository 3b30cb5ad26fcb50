package referral

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"

	authhandlers "github.com/escrowhub/api/app/modules/auth/infrastructure/handlers"
	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referralservice "github.com/escrowhub/api/app/modules/referral/application"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	referralhandlers "github.com/escrowhub/api/app/modules/referral/infrastructure/handlers"
	referraldb "github.com/escrowhub/api/app/modules/referral/infrastructure/repositories"
	referralrouter "github.com/escrowhub/api/app/modules/referral/infrastructure/router"
	"github.com/escrowhub/api/config"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
)

// Deps are the collaborators the referral module borrows from the
// application and the marketplace module.
type Deps struct {
	DB          *bun.DB
	Bus         eventbus.EventBus
	Stats       marketplacedb.StatsRepository
	EventRouter *message.Router
	HTTPRouter  chi.Router
	Auth        *authhandlers.Authenticator
}

// Module represents the referral module.
type Module struct {
	service referralservice.Service
}

// NewModule creates the referral module. An unknown tier policy name fails
// startup.
func NewModule(ctx context.Context, cfg *config.Config, obs observability.Observability, deps Deps) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing referral module")

	policy, err := referraldomain.PolicyByName(cfg.Referral.TierPolicy)
	if err != nil {
		return nil, err
	}

	var publisher message.Publisher
	if deps.Bus != nil {
		publisher = deps.Bus
	}

	service := referralservice.NewReferralService(
		referraldb.NewRepository(deps.DB),
		deps.Stats,
		publisher,
		logger,
		obs.Metrics,
		obs.Tracer,
		deps.DB,
		policy,
		cfg.HTTP.PublicBaseURL,
	)

	handlers := referralhandlers.NewReferralHandlers(service, logger, cfg.HTTP.PublicBaseURL)
	if deps.HTTPRouter != nil {
		handlers.Mount(deps.HTTPRouter, deps.Auth)
	}

	if deps.EventRouter != nil && deps.Bus != nil {
		subscriber, err := deps.Bus.Subscriber(referralrouter.ConsumerGroup)
		if err != nil {
			return nil, fmt.Errorf("failed to create referral subscriber: %w", err)
		}
		router := referralrouter.NewReferralRouter(logger, deps.EventRouter, subscriber, deps.Bus, obs.Tracer)
		if err := router.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure referral router: %w", err)
		}
	}

	logger.InfoContext(ctx, "Referral module initialized", "tier_policy", policy.Name)
	return &Module{service: service}, nil
}

// GetService returns the referral service for use by other modules.
func (m *Module) GetService() referralservice.Service {
	return m.service
}
