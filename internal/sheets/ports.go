package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror keeps a downstream copy of the ledger. Both operations
	// must be idempotent: events can be redelivered.
	ExpenseMirror interface {
		AppendExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
		DeleteExpense(ctx context.Context, id int64) error
	}
)
