package achievementrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"

	achievementhandlers "github.com/escrowhub/api/app/modules/achievement/infrastructure/handlers"
	marketplaceevents "github.com/escrowhub/api/pkg/events/marketplace"
	referralevents "github.com/escrowhub/api/pkg/events/referral"
	trustscoreevents "github.com/escrowhub/api/pkg/events/trustscore"
	"github.com/escrowhub/api/pkg/handlerwrapper"
)

// ConsumerGroup names the durable consumers of the achievement module.
const ConsumerGroup = "achievement"

// AchievementRouter turns marketplace, referral and trust score events into
// achievement evaluations.
type AchievementRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewAchievementRouter creates a new AchievementRouter.
func NewAchievementRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *AchievementRouter {
	return &AchievementRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the handlers on the router.
func (r *AchievementRouter) Configure(ctx context.Context, handlers *achievementhandlers.AchievementHandlers) error {
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

func (r *AchievementRouter) registerHandlers(ctx context.Context, handlers *achievementhandlers.AchievementHandlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  handlerwrapper.TopicRouter{Publisher: r.publisher},
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, marketplaceevents.JobCompletedV1, handlers.HandleJobCompleted)
	registerHandler(deps, marketplaceevents.ReviewSubmittedV1, handlers.HandleReviewSubmitted)
	registerHandler(deps, marketplaceevents.BadgeVerifiedV1, handlers.HandleBadgeVerified)
	registerHandler(deps, marketplaceevents.UserLoginV1, handlers.HandleUserLogin)
	registerHandler(deps, referralevents.ReferralConvertedV1, handlers.HandleReferralConverted)
	registerHandler(deps, trustscoreevents.TrustScoreCalculatedV1, handlers.HandleTrustScoreCalculated)

	r.logger.InfoContext(ctx, "Achievement event handlers registered")
	return nil
}
