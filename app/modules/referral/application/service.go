package referralservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	marketplacedb "github.com/escrowhub/api/app/modules/marketplace/infrastructure/repositories"
	referraldomain "github.com/escrowhub/api/app/modules/referral/domain"
	referraldb "github.com/escrowhub/api/app/modules/referral/infrastructure/repositories"
	"github.com/escrowhub/api/pkg/eventbus"
	"github.com/escrowhub/api/pkg/observability"
	"github.com/escrowhub/api/pkg/observability/attr"
	"github.com/escrowhub/api/pkg/results"
)

const serviceName = "ReferralService"

// ReferralService implements the Service interface.
type ReferralService struct {
	repo      referraldb.Repository
	stats     marketplacedb.StatsRepository
	publisher message.Publisher
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	policy    referraldomain.TierPolicy
	baseURL   string

	now          func() time.Time
	newID        func() uuid.UUID
	generateCode func(username string) (string, error)
}

var _ Service = (*ReferralService)(nil)

// NewReferralService creates a new ReferralService. Links are built as
// baseURL + "/r/" + code.
func NewReferralService(
	repo referraldb.Repository,
	stats marketplacedb.StatsRepository,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	policy referraldomain.TierPolicy,
	baseURL string,
) *ReferralService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferralService{
		repo:         repo,
		stats:        stats,
		publisher:    publisher,
		logger:       logger,
		metrics:      metrics,
		tracer:       tracer,
		db:           db,
		policy:       policy,
		baseURL:      strings.TrimRight(baseURL, "/"),
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.New,
		generateCode: referraldomain.GenerateCode,
	}
}

// Policy returns the tier breakpoints in use.
func (s *ReferralService) Policy() referraldomain.TierPolicy {
	return s.policy
}

func (s *ReferralService) linkFor(c *referraldb.ReferralCode) *referraldomain.Link {
	return &referraldomain.Link{
		Code:      c.Code,
		URL:       s.baseURL + "/r/" + c.Code,
		CreatedAt: c.CreatedAt,
	}
}

func (s *ReferralService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := eventbus.PublishEvent(ctx, s.publisher, topic, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}

// loadRewards decodes the referralRewards key. An unreadable value is logged
// and treated as empty so one bad document cannot block new rewards.
func (s *ReferralService) loadRewards(ctx context.Context, userID uuid.UUID, doc marketplacedb.StatsDocument) referraldomain.Rewards {
	var rewards referraldomain.Rewards
	if _, err := doc.Decode(marketplacedb.StatsKeyReferralRewards, &rewards); err != nil {
		s.logger.WarnContext(ctx, "Ignoring unreadable referral rewards",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(userID),
			attr.Error(err),
		)
		return nil
	}
	return rewards
}

// execute runs fn in a transaction under telemetry and unwraps the result.
func execute[S any](
	s *ReferralService,
	ctx context.Context,
	operationName string,
	identifier string,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error),
) (S, error) {
	var zero S
	result, err := withTelemetry(s, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return runInTx(s, ctx, fn)
	})
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

func success[S any](s S) (results.OperationResult[S, error], error) {
	return results.SuccessResult[S, error](s), nil
}

func failure[S any](err error) (results.OperationResult[S, error], error) {
	return results.FailureResult[S, error](err), nil
}

func infraError[S any](format string, err error) (results.OperationResult[S, error], error) {
	return results.OperationResult[S, error]{}, fmt.Errorf(format+": %w", err)
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ReferralService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *ReferralService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
