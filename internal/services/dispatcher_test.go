package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
	"gastos/internal/intent"
	"gastos/internal/ledger"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
)

var testNow = time.Date(2024, 7, 10, 14, 30, 0, 0, time.UTC)

func newTestDispatcher(store ledger.Store) *Dispatcher {
	return NewDispatcher(store, ledger.FixedClock{At: testNow}, log.Discard())
}

// failingStore fails every operation.
type failingStore struct{}

var errDown = errors.New("database is down")

func (failingStore) Insert(context.Context, core.Expense) (int64, error) { return 0, errDown }
func (failingStore) Delete(context.Context, string, int64) (core.Expense, error) {
	return core.Expense{}, errDown
}
func (failingStore) DeleteLatest(context.Context, string) (core.Expense, error) {
	return core.Expense{}, errDown
}
func (failingStore) QueryRecent(context.Context, string, int) ([]core.Expense, error) {
	return nil, errDown
}
func (failingStore) QueryRange(context.Context, string, core.DateRange) ([]core.Expense, error) {
	return nil, errDown
}

func TestDispatchRegister(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newTestDispatcher(store)

	reply, err := d.Dispatch(ctx, "A", intent.Parse("comida 10.005"), testNow)
	require.NoError(t, err)
	assert.Equal(t, "Gasto registrado: Comida: 10.01 - 10/07/2024 14:30", reply)

	recent, err := store.QueryRecent(ctx, "A", 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "comida 10.005", recent[0].SourceText)
	assert.True(t, recent[0].RecordedAt.Equal(testNow))
}

func TestDispatchRegisterOutOfRange(t *testing.T) {
	store := memory.New()
	d := newTestDispatcher(store)

	reply, err := d.Dispatch(context.Background(), "A", intent.Parse("auto 100000000"), testNow)
	require.NoError(t, err)
	assert.Contains(t, reply, "fuera de rango")
	assert.Equal(t, 0, store.Len())
}

func TestDispatchRegisterLongCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newTestDispatcher(store)

	reply, err := d.Dispatch(ctx, "A", intent.Parse(strings.Repeat("a", core.MaxCategoryLen+1)+" 10"), testNow)
	require.NoError(t, err)
	assert.False(t, errors.Is(err, core.ErrStoreFailure))
	assert.Equal(t, "La categoria es demasiado larga. El maximo es 100 caracteres.", reply)
	assert.Equal(t, 0, store.Len())

	// The limit counts characters, not bytes.
	reply, err = d.Dispatch(ctx, "A", intent.Parse(strings.Repeat("ñ", core.MaxCategoryLen)+" 10"), testNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Gasto registrado: Ñ"), reply)
	assert.Equal(t, 1, store.Len())
}

func TestDispatchDeleteByIDForeignOwner(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newTestDispatcher(store)
	id, err := store.Insert(ctx, core.Expense{Owner: "B", Category: "Cine", Amount: decimal.NewFromInt(20), RecordedAt: testNow})
	require.NoError(t, err)

	reply, err := d.Dispatch(ctx, "A", intent.DeleteByID{ID: id}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "No se encontro el gasto con ID 1", reply)
	assert.Equal(t, 1, store.Len())

	reply, err = d.Dispatch(ctx, "B", intent.DeleteByID{ID: id}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Gasto eliminado: Cine: 20.00", reply)
	assert.Equal(t, 0, store.Len())
}

func TestDispatchDeleteLast(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newTestDispatcher(store)

	reply, err := d.Dispatch(ctx, "A", intent.DeleteLast{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, ReplyNothingToDelete, reply)

	_, _ = store.Insert(ctx, core.Expense{Owner: "A", Category: "Viejo", Amount: decimal.NewFromInt(1), RecordedAt: testNow.Add(-time.Hour)})
	_, _ = store.Insert(ctx, core.Expense{Owner: "A", Category: "Nuevo", Amount: decimal.NewFromInt(2), RecordedAt: testNow})

	reply, err = d.Dispatch(ctx, "A", intent.DeleteLast{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Ultimo gasto eliminado: Nuevo: 2.00", reply)
}

func TestDispatchListRecent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newTestDispatcher(store)

	reply, err := d.Dispatch(ctx, "A", intent.ListRecent{Limit: 5}, testNow)
	require.NoError(t, err)
	assert.Equal(t, ReplyNoExpenses, reply)

	for i := 0; i < 7; i++ {
		_, err := store.Insert(ctx, core.Expense{Owner: "A", Category: "Cafe", Amount: decimal.NewFromInt(int64(i + 1)), RecordedAt: testNow.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	reply, err = d.Dispatch(ctx, "A", intent.ListRecent{Limit: 5}, testNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "Tus ultimos gastos:\n\nID 7: Cafe - 7.00\n   Fecha: 10/07 14:36\n"), reply)
	assert.Equal(t, 5, strings.Count(reply, "ID "))
	assert.NotContains(t, reply, "ID 2:")
	assert.True(t, strings.HasSuffix(reply, "Para eliminar: 'eliminar 3' o 'eliminar ultimo'"))
}

func TestDispatchSummarize(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	d := newTestDispatcher(store)

	add := func(owner, cat, amount string, at time.Time) {
		_, err := store.Insert(ctx, core.Expense{Owner: owner, Category: cat, Amount: decimal.RequireFromString(amount), RecordedAt: at})
		require.NoError(t, err)
	}
	add("A", "Comida", "100", testNow)
	add("A", "Transporte", "50.5", testNow.AddDate(0, 0, -1))
	add("A", "Comida", "20", testNow.AddDate(0, 0, -2))
	add("A", "Comida", "999", testNow.AddDate(0, 0, -3)) // previous week
	add("B", "Comida", "7", testNow)

	reply, err := d.Dispatch(ctx, "A", intent.Summarize{Phrase: "semana"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Resumen 08/07 al 10/07:\n\n"+
		"Total gastado: 170.50\n"+
		"Cantidad de gastos: 3\n\n"+
		"Por categoria:\n"+
		"- Comida: 120.00\n"+
		"- Transporte: 50.50\n", reply)

	reply, err = d.Dispatch(ctx, "A", intent.Summarize{Phrase: "29-07 al 01-07"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, ReplyBadSummary, reply)
}

func TestDispatchSummarizeEmptyRangeForFreshOwner(t *testing.T) {
	d := newTestDispatcher(memory.New())
	for _, phrase := range []string{"", "hoy", "semana", "01-01 al 31-12"} {
		reply, err := d.Dispatch(context.Background(), "fresh", intent.Summarize{Phrase: phrase}, testNow)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(reply, "Sin gastos registrados para el periodo "), reply)
	}
}

func TestDispatchHelpAndUnrecognized(t *testing.T) {
	d := newTestDispatcher(memory.New())

	reply, err := d.Dispatch(context.Background(), "A", intent.Help{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, HelpText(), reply)

	reply, err = d.Dispatch(context.Background(), "A", intent.Unrecognized{}, testNow)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, "No entendi tu mensaje."))
	for _, shape := range []string{"Comida 300", "resumen semana", "mis gastos", "eliminar 3", "eliminar ultimo"} {
		assert.Contains(t, reply, shape)
	}
}

func TestDispatchStoreFailure(t *testing.T) {
	d := newTestDispatcher(failingStore{})
	tests := []struct {
		in    intent.Intent
		reply string
	}{
		{intent.RegisterExpense{Category: "Comida", Amount: decimal.NewFromInt(1)}, ReplyRegisterFailed},
		{intent.DeleteByID{ID: 1}, ReplyDeleteFailed},
		{intent.DeleteLast{}, ReplyDeleteFailed},
		{intent.ListRecent{Limit: 5}, ReplyListFailed},
		{intent.Summarize{Phrase: "hoy"}, ReplySummaryFailed},
	}
	for _, tt := range tests {
		t.Run(tt.in.Name(), func(t *testing.T) {
			reply, err := d.Dispatch(context.Background(), "A", tt.in, testNow)
			assert.Equal(t, tt.reply, reply)
			assert.ErrorIs(t, err, core.ErrStoreFailure)
			assert.ErrorIs(t, err, errDown)
		})
	}
}
