package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger/memory"
)

type recordingPublisher struct {
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func TestLedgerServicePublishesMutations(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub)
	at := time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)

	id, err := svc.Insert(ctx, core.Expense{Owner: "A", Category: "Comida", Amount: decimal.RequireFromString("10.005"), RecordedAt: at})
	require.NoError(t, err)
	_, err = svc.Insert(ctx, core.Expense{Owner: "A", Category: "Cine", Amount: decimal.NewFromInt(5), RecordedAt: at.Add(time.Minute)})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "A", id)
	require.NoError(t, err)
	_, err = svc.DeleteLatest(ctx, "A")
	require.NoError(t, err)

	require.Len(t, pub.events, 4)
	assert.Equal(t, amqp.EventExpenseRecorded, pub.events[0].Type)
	assert.Equal(t, id, pub.events[0].ID)
	assert.Equal(t, "10.01", core.FormatAmount(pub.events[0].Amount))
	assert.Equal(t, amqp.EventExpenseDeleted, pub.events[2].Type)
	assert.Equal(t, "Cine", pub.events[3].Category)
}

func TestLedgerServiceIgnoresPublishFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewLedgerService(store, &recordingPublisher{err: errors.New("broker unreachable")})

	_, err := svc.Insert(ctx, core.Expense{Owner: "A", Category: "Comida", Amount: decimal.NewFromInt(1), RecordedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestLedgerServiceDoesNotPublishMisses(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(memory.New(), pub)

	_, err := svc.DeleteLatest(context.Background(), "nobody")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, pub.events)
}

func TestLedgerServiceWithoutPublisher(t *testing.T) {
	svc := NewLedgerService(memory.New(), nil)
	_, err := svc.Insert(context.Background(), core.Expense{Owner: "A", Category: "Cafe", Amount: decimal.NewFromInt(1), RecordedAt: time.Now()})
	require.NoError(t, err)
	assert.NoError(t, svc.Close())
}
