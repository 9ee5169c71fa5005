package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
)

const ownerA = "+5491100000001"

func newTestProcessor(store ledger.Store, authorized ...string) *MessageProcessor {
	clock := ledger.FixedClock{At: testNow}
	return NewMessageProcessor(NewDispatcher(store, clock, log.Discard()), clock, authorized, log.Discard())
}

func TestHandleMessageConversation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := newTestProcessor(store, ownerA)

	reply, err := p.HandleMessage(ctx, ownerA, "Comida 300")
	require.NoError(t, err)
	assert.Contains(t, reply, "Comida")
	assert.Contains(t, reply, "300")
	recent, err := store.QueryRecent(ctx, ownerA, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	reply, err = p.HandleMessage(ctx, ownerA, "resumen hoy")
	require.NoError(t, err)
	assert.Contains(t, reply, "Total gastado: 300.00")
	assert.Contains(t, reply, "Comida: 300")

	reply, err = p.HandleMessage(ctx, ownerA, "eliminar ultimo")
	require.NoError(t, err)
	assert.Equal(t, "Ultimo gasto eliminado: Comida: 300.00", reply)

	reply, err = p.HandleMessage(ctx, ownerA, "mis gastos")
	require.NoError(t, err)
	assert.Equal(t, ReplyNoExpenses, reply)
}

func TestHandleMessageUnauthorized(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := newTestProcessor(store, ownerA)

	reply, err := p.HandleMessage(ctx, "+5491199999999", "Comida 300")
	require.NoError(t, err)
	assert.Equal(t, ReplyUnauthorized, reply)
	assert.Equal(t, 0, store.Len())

	assert.ErrorIs(t, p.Authorize("+5491199999999"), core.ErrUnauthorized)
	assert.NoError(t, p.Authorize("whatsapp:"+ownerA))
}

func TestHandleMessageEmptyAllowListDeniesEveryone(t *testing.T) {
	p := newTestProcessor(memory.New())
	reply, err := p.HandleMessage(context.Background(), ownerA, "mis gastos")
	require.NoError(t, err)
	assert.Equal(t, ReplyUnauthorized, reply)
}

func TestHandleMessageNormalizesOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := newTestProcessor(store, "+54 9 11 0000-0001")

	_, err := p.HandleMessage(ctx, "whatsapp:"+ownerA, "cine 20")
	require.NoError(t, err)

	recent, err := store.QueryRecent(ctx, ownerA, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ownerA, recent[0].Owner)
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"whatsapp:+5491100000001": "+5491100000001",
		" +54 9 11 0000-0001 ":    "+5491100000001",
		"5491100000001":           "5491100000001",
		"54+91":                   "5491",
		"":                        "",
		"whatsapp:":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}
