package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/daterange"
	"gastos/internal/intent"
	"gastos/internal/ledger"
	"gastos/internal/log"
)

const (
	recordedLayout = "02/01/2006 15:04"
	listLayout     = "02/01 15:04"
)

// Dispatcher executes a parsed intent against the ledger on behalf of one owner.
type Dispatcher struct {
	store  ledger.Store
	clock  ledger.Clock
	logger *log.Logger
}

func NewDispatcher(store ledger.Store, clock ledger.Clock, logger *log.Logger) *Dispatcher {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Dispatcher{
		store:  store,
		clock:  clock,
		logger: logger.WithComponent(log.ComponentBot),
	}
}

// Dispatch runs the intent and returns the reply for the owner. The reply is
// always usable; the error is non-nil only when the store failed, and then
// wraps core.ErrStoreFailure.
func (d *Dispatcher) Dispatch(ctx context.Context, owner string, in intent.Intent, today time.Time) (string, error) {
	d.logger.DebugContext(ctx, "Dispatching intent",
		log.NewFields().WithOwner(owner).WithIntent(in.Name()).ToSlice()...)

	switch in := in.(type) {
	case intent.RegisterExpense:
		return d.register(ctx, owner, in)
	case intent.DeleteByID:
		return d.deleteByID(ctx, owner, in.ID)
	case intent.DeleteLast:
		return d.deleteLast(ctx, owner)
	case intent.ListRecent:
		return d.listRecent(ctx, owner, in.Limit)
	case intent.Summarize:
		return d.summarize(ctx, owner, in.Phrase, today)
	case intent.Help:
		return HelpText(), nil
	default:
		return UnrecognizedText(), nil
	}
}

func (d *Dispatcher) register(ctx context.Context, owner string, in intent.RegisterExpense) (string, error) {
	if err := core.ValidateCategory(in.Category); err != nil {
		d.logger.InfoContext(ctx, "Rejected expense category",
			log.FieldOwner, owner, log.FieldError, err.Error())
		return fmt.Sprintf(ReplyCategoryTooLong, core.MaxCategoryLen), nil
	}
	amount := core.RoundAmount(in.Amount)
	if err := core.ValidateAmount(amount); err != nil {
		d.logger.InfoContext(ctx, "Rejected expense amount",
			log.FieldOwner, owner, log.FieldAmount, in.Amount.String())
		return fmt.Sprintf(ReplyAmountOutOfRange, core.FormatAmount(amount), core.FormatAmount(core.MaxAmount)), nil
	}

	e := core.Expense{
		Owner:      owner,
		Category:   in.Category,
		Amount:     amount,
		RecordedAt: d.clock.Now(),
		SourceText: in.SourceText,
	}
	id, err := d.store.Insert(ctx, e)
	if err != nil {
		return ReplyRegisterFailed, d.storeFailure(ctx, "insert expense", owner, err)
	}

	log.NewStructuredLogger(d.logger).LogExpenseRecorded(ctx, owner, id, e.Category, core.FormatAmount(amount))
	return fmt.Sprintf("Gasto registrado: %s: %s - %s",
		e.Category, core.FormatAmount(amount), d.local(e.RecordedAt).Format(recordedLayout)), nil
}

func (d *Dispatcher) deleteByID(ctx context.Context, owner string, id int64) (string, error) {
	e, err := d.store.Delete(ctx, owner, id)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Sprintf("No se encontro el gasto con ID %d", id), nil
	}
	if err != nil {
		return ReplyDeleteFailed, d.storeFailure(ctx, "delete expense", owner, err)
	}

	d.logger.InfoContext(ctx, "Expense deleted",
		log.NewFields().WithOwner(owner).WithExpense(e.ID, e.Category, core.FormatAmount(e.Amount)).ToSlice()...)
	return "Gasto eliminado: " + describe(e), nil
}

func (d *Dispatcher) deleteLast(ctx context.Context, owner string) (string, error) {
	e, err := d.store.DeleteLatest(ctx, owner)
	if errors.Is(err, core.ErrNotFound) {
		return ReplyNothingToDelete, nil
	}
	if err != nil {
		return ReplyDeleteFailed, d.storeFailure(ctx, "delete latest expense", owner, err)
	}

	d.logger.InfoContext(ctx, "Latest expense deleted",
		log.NewFields().WithOwner(owner).WithExpense(e.ID, e.Category, core.FormatAmount(e.Amount)).ToSlice()...)
	return "Ultimo gasto eliminado: " + describe(e), nil
}

func (d *Dispatcher) listRecent(ctx context.Context, owner string, limit int) (string, error) {
	if limit <= 0 {
		limit = intent.RecentLimit
	}
	items, err := d.store.QueryRecent(ctx, owner, limit)
	if err != nil {
		return ReplyListFailed, d.storeFailure(ctx, "query recent expenses", owner, err)
	}
	if len(items) == 0 {
		return ReplyNoExpenses, nil
	}

	var b strings.Builder
	b.WriteString("Tus ultimos gastos:\n\n")
	for _, e := range items {
		fmt.Fprintf(&b, "ID %d: %s - %s\n", e.ID, e.Category, core.FormatAmount(e.Amount))
		fmt.Fprintf(&b, "   Fecha: %s\n\n", d.local(e.RecordedAt).Format(listLayout))
	}
	b.WriteString("Para eliminar: 'eliminar 3' o 'eliminar ultimo'")
	return b.String(), nil
}

func (d *Dispatcher) summarize(ctx context.Context, owner, phrase string, today time.Time) (string, error) {
	r, err := daterange.Resolve(phrase, today)
	if err != nil {
		d.logger.DebugContext(ctx, "Invalid summary period", log.FieldPeriod, phrase, log.FieldError, err.Error())
		return ReplyBadSummary, nil
	}

	items, err := d.store.QueryRange(ctx, owner, r)
	if err != nil {
		return ReplySummaryFailed, d.storeFailure(ctx, "query expenses in range", owner, err)
	}
	return FormatSummary(core.Summarize(items), r.Label()), nil
}

func (d *Dispatcher) storeFailure(ctx context.Context, op, owner string, err error) error {
	wrapped := fmt.Errorf("%s: %w: %w", op, core.ErrStoreFailure, err)
	log.NewStructuredLogger(d.logger).LogError(ctx, "Ledger store failed", err, log.ComponentBot, op,
		log.NewFields().WithOwner(owner))
	return wrapped
}

// local renders timestamps in the clock's location; SQL stores return UTC.
func (d *Dispatcher) local(t time.Time) time.Time {
	return t.In(d.clock.Now().Location())
}

func describe(e core.Expense) string {
	return e.Category + ": " + core.FormatAmount(e.Amount)
}
