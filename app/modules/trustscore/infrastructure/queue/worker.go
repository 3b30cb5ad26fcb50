package trustscorequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
	"github.com/escrowhub/api/pkg/observability/attr"
)

// Decayer is the part of the trust score service the worker needs.
type Decayer interface {
	ApplyDecayToInactive(ctx context.Context, now time.Time) (trustscoredomain.DecaySweepSummary, error)
}

// DecayWorker works DecayJob.
type DecayWorker struct {
	river.WorkerDefaults[DecayJob]
	decayer Decayer
	logger  *slog.Logger
	now     func() time.Time
}

func NewDecayWorker(logger *slog.Logger, decayer Decayer) *DecayWorker {
	return &DecayWorker{
		decayer: decayer,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (w *DecayWorker) Work(ctx context.Context, job *river.Job[DecayJob]) error {
	asOf := job.Args.AsOf
	if asOf.IsZero() {
		asOf = w.now()
	}

	w.logger.InfoContext(ctx, "Running trust score decay job",
		attr.Time("as_of", asOf),
		attr.String("requested_by", job.Args.RequestedBy),
	)

	summary, err := w.decayer.ApplyDecayToInactive(ctx, asOf)
	if err != nil {
		return fmt.Errorf("decay sweep failed: %w", err)
	}

	w.logger.InfoContext(ctx, "Trust score decay job finished",
		attr.Int("scanned", summary.Scanned),
		attr.Int("decayed", summary.Decayed),
		attr.Int("failed", summary.Failed),
	)
	return nil
}

// Timeout bounds one sweep.
func (w *DecayWorker) Timeout(*river.Job[DecayJob]) time.Duration {
	return 30 * time.Minute
}
