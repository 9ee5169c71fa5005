package ledger

import (
	"context"
	"time"

	"gastos/internal/core"
)

// Ports consumed by the bot core and the HTTP surface.
type (
	// Store is the persistence abstraction holding expense records. Every
	// method is a single atomic operation.
	Store interface {
		// Insert persists e and returns the store-assigned id.
		Insert(ctx context.Context, e core.Expense) (int64, error)
		// Delete removes the record iff it belongs to owner. Returns
		// core.ErrNotFound when absent or owned by someone else.
		Delete(ctx context.Context, owner string, id int64) (core.Expense, error)
		// DeleteLatest removes the newest record of owner (ties broken by
		// highest id). Returns core.ErrNotFound when owner has none.
		DeleteLatest(ctx context.Context, owner string) (core.Expense, error)
		// QueryRecent returns up to limit records, newest first.
		QueryRecent(ctx context.Context, owner string, limit int) ([]core.Expense, error)
		// QueryRange returns the owner's records recorded within r. Order is unspecified.
		QueryRange(ctx context.Context, owner string, r core.DateRange) ([]core.Expense, error)
	}

	// Reader serves the REST read endpoints.
	Reader interface {
		Get(ctx context.Context, id int64) (core.Expense, error)
	}

	// Pinger reports store readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// SyncSource tracks which records still need to be mirrored downstream.
	// Get lets reconciliation confirm a record still exists.
	SyncSource interface {
		Reader
		PendingSync(ctx context.Context, limit int) ([]core.Expense, error)
		MarkSynced(ctx context.Context, id int64) error
		MarkSyncError(ctx context.Context, id int64) error
	}

	// Clock is injected instead of reading ambient time.
	Clock interface {
		Now() time.Time
		// Today returns midnight of the current day in the clock's location.
		Today() time.Time
	}
)

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

func (c SystemClock) Today() time.Time { return core.Day(c.Now()) }

// FixedClock always reports the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time   { return c.At }
func (c FixedClock) Today() time.Time { return core.Day(c.At) }
