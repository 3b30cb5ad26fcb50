package trustscorerouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	trustscorehandlers "github.com/escrowhub/api/app/modules/trustscore/infrastructure/handlers"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	trustscoreevents "github.com/escrowhub/api/pkg/events/trustscore"
	"github.com/escrowhub/api/pkg/handlerwrapper"
)

// ConsumerGroup names the durable consumers of the trust score module.
const ConsumerGroup = "trustscore"

// TrustScoreRouter subscribes the trust score handlers to marketplace events.
type TrustScoreRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewTrustScoreRouter creates a new TrustScoreRouter.
func NewTrustScoreRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *TrustScoreRouter {
	return &TrustScoreRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the handlers on the router.
func (r *TrustScoreRouter) Configure(ctx context.Context, handlers *trustscorehandlers.TrustScoreHandlers) error {
	if err := r.registerHandlers(ctx, handlers); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler registers a transformation-pattern handler with a typed payload.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler handlerwrapper.HandlerFunc[T],
) {
	handlerName := ConsumerGroup + "." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.DynamicTopic,
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(handlerName, deps.logger, deps.tracer, handler),
	)
}

func (r *TrustScoreRouter) registerHandlers(ctx context.Context, handlers *trustscorehandlers.TrustScoreHandlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  handlerwrapper.TopicRouter{Publisher: r.publisher},
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, marketplaceevents.ReviewSubmittedV1, handlers.HandleReviewSubmitted)
	registerHandler(deps, marketplaceevents.JobCompletedV1, handlers.HandleJobCompleted)
	registerHandler(deps, marketplaceevents.JobCancelledV1, handlers.HandleJobCancelled)
	registerHandler(deps, marketplaceevents.DisputeResolvedV1, handlers.HandleDisputeResolved)
	registerHandler(deps, marketplaceevents.BadgeVerifiedV1, handlers.HandleBadgeVerified)
	registerHandler(deps, marketplaceevents.EndorsementAddedV1, handlers.HandleEndorsementAdded)
	registerHandler(deps, marketplaceevents.UserLoginV1, handlers.HandleUserLogin)
	registerHandler(deps, trustscoreevents.RecalculationRequestedV1, handlers.HandleRecalculationRequested)

	r.logger.InfoContext(ctx, "Trust score event handlers registered")
	return nil
}
