package trustscorequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/robfig/cron/v3"

	"github.com/escrowhub/api/pkg/observability"
	"github.com/escrowhub/api/pkg/observability/attr"
)

const serviceName = "river"

// QueueService schedules and runs trust score background jobs.
type QueueService interface {
	// EnqueueDecay asks for an immediate decay sweep as of asOf.
	EnqueueDecay(ctx context.Context, asOf time.Time, requestedBy string) (int64, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs the periodic decay job on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// ParseSchedule reads a standard five-field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid decay schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// PeriodicDecayJob builds the River periodic job for schedule.
func PeriodicDecayJob(schedule cron.Schedule) *river.PeriodicJob {
	return river.NewPeriodicJob(
		schedule,
		func() (river.JobArgs, *river.InsertOpts) {
			return DecayJob{RequestedBy: "schedule"}, &river.InsertOpts{Queue: QueueName}
		},
		nil,
	)
}

// NewService connects a pgx pool for River and registers the decay worker
// with the periodic schedule.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	schedule string,
	metrics observability.OperationMetrics,
	decayer Decayer,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", QueueName),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	cronSchedule, err := ParseSchedule(schedule)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, err
	}

	pool, err := NewPool(ctx, dsn)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewDecayWorker(ctxLogger, decayer))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueName:          {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: []*river.PeriodicJob{PeriodicDecayJob(cronSchedule)},
		Logger:       ctxLogger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	metrics.RecordOperationDuration(ctx, "initialize_service", serviceName, time.Since(start))
	ctxLogger.Info("Trust score queue service initialized", attr.String("schedule", schedule))

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

// NewPool opens and pings a pgx pool. River requires pgx, not database/sql.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Migrate installs or upgrades River's own tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

func (s *Service) EnqueueDecay(ctx context.Context, asOf time.Time, requestedBy string) (int64, error) {
	s.metrics.RecordOperationAttempt(ctx, "enqueue_decay", serviceName)

	res, err := s.client.Insert(ctx, DecayJob{AsOf: asOf, RequestedBy: requestedBy}, &river.InsertOpts{
		Queue: QueueName,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue decay job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_decay", serviceName)
		return 0, fmt.Errorf("failed to enqueue decay job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_decay", serviceName)
	s.logger.InfoContext(ctx, "Decay job enqueued", attr.Int64("job_id", res.Job.ID))
	return res.Job.ID, nil
}

func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting trust score queue service")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", serviceName)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", serviceName)
	return nil
}

// Stop waits for running jobs, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping trust score queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", serviceName)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", serviceName)
	return nil
}
