package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/sheets"
)

// SyncWorker mirrors ledger changes into a spreadsheet. Events from the bus
// are the fast path; ProcessPending reconciles anything the bus missed.
type SyncWorker struct {
	source    ledger.SyncSource
	mirror    sheets.ExpenseMirror
	batchSize int
}

func NewSyncWorker(source ledger.SyncSource, mirror sheets.ExpenseMirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		source:    source,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleEvent applies one ledger event to the mirror.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event", "type", ev.Type, "id", ev.ID)

	switch ev.Type {
	case amqp.EventExpenseRecorded:
		return w.syncExpense(ctx, ev.Expense())
	case amqp.EventExpenseDeleted:
		if err := w.mirror.DeleteExpense(ctx, ev.ID); err != nil {
			return fmt.Errorf("delete expense %d from mirror: %w", ev.ID, err)
		}
		slog.InfoContext(ctx, "Successfully deleted mirrored expense", "id", ev.ID)
		return nil
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// ProcessPending pushes one batch of records not yet mirrored and returns how
// many were synced. Individual failures are marked and skipped.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.source.PendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	synced := 0
	for _, e := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		ok, err := w.reconcile(ctx, e)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", e.ID, "error", err)
			continue
		}
		if ok {
			synced++
		}
	}
	return synced, nil
}

// reconcile mirrors one pending record. The batch may be stale: a record
// deleted since PendingSync is skipped, and one deleted while its row was
// being appended has the row removed again, since its delete event may
// already have been applied.
func (w *SyncWorker) reconcile(ctx context.Context, e core.Expense) (bool, error) {
	exists, err := w.exists(ctx, e.ID)
	if err != nil {
		return false, err
	}
	if !exists {
		slog.DebugContext(ctx, "Pending expense was deleted, skipping", "id", e.ID)
		return false, nil
	}

	if err := w.syncExpense(ctx, e); err != nil {
		return false, err
	}

	exists, err = w.exists(ctx, e.ID)
	if err != nil {
		slog.WarnContext(ctx, "Could not recheck synced expense", "id", e.ID, "error", err)
		return true, nil
	}
	if !exists {
		if err := w.mirror.DeleteExpense(ctx, e.ID); err != nil {
			return false, fmt.Errorf("remove row of deleted expense %d: %w", e.ID, err)
		}
		slog.InfoContext(ctx, "Removed row of expense deleted during sync", "id", e.ID)
		return false, nil
	}
	return true, nil
}

func (w *SyncWorker) exists(ctx context.Context, id int64) (bool, error) {
	_, err := w.source.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check expense %d: %w", id, err)
	}
	return true, nil
}

// StartupSyncCheck drains the pending backlog at worker startup, one batch at
// a time, stopping when a batch makes no progress.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	total := 0
	for {
		n, err := w.ProcessPending(ctx)
		total += n
		if err != nil {
			return fmt.Errorf("startup sync: %w", err)
		}
		if n == 0 {
			break
		}
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", total)
	return nil
}

func (w *SyncWorker) syncExpense(ctx context.Context, e core.Expense) error {
	ref, err := w.mirror.AppendExpense(ctx, e)
	if err != nil {
		if markErr := w.source.MarkSyncError(ctx, e.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", e.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	// The row is written; a failed status update only means a redundant retry.
	if err := w.source.MarkSynced(ctx, e.ID); err != nil && !errors.Is(err, core.ErrNotFound) {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", e.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced expense",
		"id", e.ID,
		"sheets_ref", ref,
		"category", e.Category,
		"amount", core.FormatAmount(e.Amount))
	return nil
}
