package referralrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	referralhandlers "github.com/escrowhub/api/app/modules/referral/infrastructure/handlers"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	"github.com/escrowhub/api/pkg/handlerwrapper"
)

// ConsumerGroup names the durable consumers of the referral module.
const ConsumerGroup = "referral"

// ReferralRouter feeds registrations and completed jobs into the referral
// service.
type ReferralRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewReferralRouter creates a new ReferralRouter.
func NewReferralRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *ReferralRouter {
	return &ReferralRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the handlers on the router.
func (r *ReferralRouter) Configure(ctx context.Context, handlers *referralhandlers.ReferralHandlers) error {
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

func (r *ReferralRouter) registerHandlers(ctx context.Context, handlers *referralhandlers.ReferralHandlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  handlerwrapper.TopicRouter{Publisher: r.publisher},
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, marketplaceevents.UserRegisteredV1, handlers.HandleUserRegistered)
	registerHandler(deps, marketplaceevents.JobCompletedV1, handlers.HandleJobCompleted)

	r.logger.InfoContext(ctx, "Referral event handlers registered")
	return nil
}
