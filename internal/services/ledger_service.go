package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger"
)

// EventPublisher publishes ledger change events downstream.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService decorates a ledger.Store: every mutation is committed locally
// first and then announced on the message bus. A publish failure is logged and
// never fails the mutation.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
}

var _ ledger.Store = (*LedgerService)(nil)

func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{store: store, publisher: publisher}
}

func (s *LedgerService) Insert(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id
	e.Amount = core.RoundAmount(e.Amount)
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseRecorded, e))
	return id, nil
}

func (s *LedgerService) Delete(ctx context.Context, owner string, id int64) (core.Expense, error) {
	e, err := s.store.Delete(ctx, owner, id)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseDeleted, e))
	return e, nil
}

func (s *LedgerService) DeleteLatest(ctx context.Context, owner string) (core.Expense, error) {
	e, err := s.store.DeleteLatest(ctx, owner)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventExpenseDeleted, e))
	return e, nil
}

func (s *LedgerService) QueryRecent(ctx context.Context, owner string, limit int) ([]core.Expense, error) {
	return s.store.QueryRecent(ctx, owner, limit)
}

func (s *LedgerService) QueryRange(ctx context.Context, owner string, r core.DateRange) ([]core.Expense, error) {
	return s.store.QueryRange(ctx, owner, r)
}

func (s *LedgerService) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping ledger event", "type", ev.Type, "id", ev.ID)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		// The expense is already committed locally.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type, "id", ev.ID, "error", err)
	}
}

// Close releases the underlying store and publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
