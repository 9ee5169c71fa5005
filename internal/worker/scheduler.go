package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic reconciliation of records still pending sync.
type Scheduler struct {
	cron   *cron.Cron
	worker *SyncWorker
}

// NewScheduler schedules ProcessPending every interval. Overlapping runs are skipped.
func NewScheduler(ctx context.Context, w *SyncWorker, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid sync interval %s", interval)
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		n, err := w.ProcessPending(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Scheduled reconciliation failed", "error", err)
			return
		}
		if n > 0 {
			slog.InfoContext(ctx, "Scheduled reconciliation synced expenses", "count", n)
		}
	}))
	return &Scheduler{cron: c, worker: w}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
