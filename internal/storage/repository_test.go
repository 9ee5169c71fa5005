package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func newTestSQLite(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "gastos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func expense(owner, category, amount string, at time.Time) core.Expense {
	return core.Expense{
		Owner:      owner,
		Category:   category,
		Amount:     decimal.RequireFromString(amount),
		RecordedAt: at,
		SourceText: category + " " + amount,
	}
}

func TestSQLiteRepository(t *testing.T) {
	runRepositorySuite(t, newTestSQLite(t))
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.db")
	require.NoError(t, RunMigrations(DialectSQLite, path))
	require.NoError(t, RunMigrations(DialectSQLite, path))

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestSQLiteConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	repo := newTestSQLite(t)
	now := time.Now()

	var wg sync.WaitGroup
	ids := make(chan int64, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Insert(ctx, expense("A", "Cafe", "1", now))
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	all, err := repo.QueryRecent(ctx, "A", -1)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

func TestRebind(t *testing.T) {
	pg := &Repository{dialect: DialectPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))

	lite := &Repository{dialect: DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

// runRepositorySuite exercises the ledger contract against a live repository.
func runRepositorySuite(t *testing.T, repo *Repository) {
	ctx := context.Background()
	loc := time.FixedZone("ART", -3*3600)
	base := time.Date(2024, 7, 10, 12, 0, 0, 0, loc)

	t.Run("insert and get", func(t *testing.T) {
		id, err := repo.Insert(ctx, expense("get-owner", "Comida", "10.005", base))
		require.NoError(t, err)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "get-owner", got.Owner)
		assert.Equal(t, "Comida", got.Category)
		assert.Equal(t, "10.01", core.FormatAmount(got.Amount))
		assert.True(t, got.RecordedAt.Equal(base))
		assert.Equal(t, "Comida 10.005", got.SourceText)

		_, err = repo.Get(ctx, id+1000)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("insert validates", func(t *testing.T) {
		_, err := repo.Insert(ctx, expense("", "Comida", "1", base))
		assert.ErrorIs(t, err, core.ErrEmptyOwner)
	})

	t.Run("delete checks ownership", func(t *testing.T) {
		id, err := repo.Insert(ctx, expense("del-owner", "Cine", "20", base))
		require.NoError(t, err)

		_, err = repo.Delete(ctx, "someone-else", id)
		assert.ErrorIs(t, err, core.ErrNotFound)

		deleted, err := repo.Delete(ctx, "del-owner", id)
		require.NoError(t, err)
		assert.Equal(t, "Cine", deleted.Category)
		assert.Equal(t, "20.00", core.FormatAmount(deleted.Amount))

		_, err = repo.Delete(ctx, "del-owner", id)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("delete latest breaks ties by id", func(t *testing.T) {
		_, err := repo.Insert(ctx, expense("last-owner", "Primero", "1", base))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, expense("last-owner", "Segundo", "2", base))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, expense("last-owner", "Viejo", "3", base.Add(-time.Hour)))
		require.NoError(t, err)

		e, err := repo.DeleteLatest(ctx, "last-owner")
		require.NoError(t, err)
		assert.Equal(t, "Segundo", e.Category)

		_, err = repo.DeleteLatest(ctx, "nobody")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("recent and range", func(t *testing.T) {
		for i := 0; i < 7; i++ {
			_, err := repo.Insert(ctx, expense("range-owner", "Cat", "1", base.AddDate(0, 0, -i)))
			require.NoError(t, err)
		}

		recent, err := repo.QueryRecent(ctx, "range-owner", 5)
		require.NoError(t, err)
		require.Len(t, recent, 5)
		assert.True(t, recent[0].RecordedAt.Equal(base))
		assert.True(t, recent[0].RecordedAt.After(recent[4].RecordedAt))

		r, err := core.NewDateRange(base.AddDate(0, 0, -2), base)
		require.NoError(t, err)
		inRange, err := repo.QueryRange(ctx, "range-owner", r)
		require.NoError(t, err)
		assert.Len(t, inRange, 3)

		// Midnight boundaries are evaluated in the range's location.
		late := time.Date(2024, 7, 10, 23, 59, 0, 0, loc)
		_, err = repo.Insert(ctx, expense("tz-owner", "Cena", "5", late))
		require.NoError(t, err)
		today, err := core.NewDateRange(late, late)
		require.NoError(t, err)
		got, err := repo.QueryRange(ctx, "tz-owner", today)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("pending sync", func(t *testing.T) {
		pending, err := repo.PendingSync(ctx, -1)
		require.NoError(t, err)
		require.NotEmpty(t, pending)
		first := pending[0].ID

		require.NoError(t, repo.MarkSynced(ctx, first))
		require.NoError(t, repo.MarkSyncError(ctx, pending[len(pending)-1].ID))

		after, err := repo.PendingSync(ctx, -1)
		require.NoError(t, err)
		assert.Len(t, after, len(pending)-1)
		for _, e := range after {
			assert.NotEqual(t, first, e.ID)
		}

		limited, err := repo.PendingSync(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}
