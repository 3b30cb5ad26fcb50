package trustscorequeue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trustscoredomain "github.com/escrowhub/api/app/modules/trustscore/domain"
)

type fakeDecayer struct {
	calls []time.Time
	err   error
}

func (f *fakeDecayer) ApplyDecayToInactive(_ context.Context, now time.Time) (trustscoredomain.DecaySweepSummary, error) {
	f.calls = append(f.calls, now)
	return trustscoredomain.DecaySweepSummary{Scanned: 2, Decayed: 1}, f.err
}

func TestDecayWorker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	workedAt := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	pinned := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		args     DecayJob
		err      error
		wantAsOf time.Time
		wantErr  bool
	}{
		{name: "periodic run uses work time", args: DecayJob{RequestedBy: "schedule"}, wantAsOf: workedAt},
		{name: "on demand run keeps as of", args: DecayJob{AsOf: pinned, RequestedBy: "ops"}, wantAsOf: pinned},
		{name: "sweep failure is retried", args: DecayJob{}, err: errors.New("db down"), wantAsOf: workedAt, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decayer := &fakeDecayer{err: tt.err}
			w := NewDecayWorker(logger, decayer)
			w.now = func() time.Time { return workedAt }

			err := w.Work(context.Background(), &river.Job[DecayJob]{Args: tt.args})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, []time.Time{tt.wantAsOf}, decayer.calls)
		})
	}
}

func TestParseSchedule(t *testing.T) {
	schedule, err := ParseSchedule("0 3 * * *")
	require.NoError(t, err)

	from := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC), schedule.Next(from))

	_, err = ParseSchedule("every day")
	assert.Error(t, err)
}

func TestDecayJobKind(t *testing.T) {
	assert.Equal(t, "trust_score_decay", DecayJob{}.Kind())
	assert.NotNil(t, PeriodicDecayJob(mustSchedule(t, "*/5 * * * *")))
}

func mustSchedule(t *testing.T, spec string) cron.Schedule {
	t.Helper()
	s, err := ParseSchedule(spec)
	require.NoError(t, err)
	return s
}
