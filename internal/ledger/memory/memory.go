package memory

import (
	"context"
	"sort"
	"sync"

	"gastos/internal/core"
	"gastos/internal/ledger"
)

// Store keeps the ledger in process memory. Records are held in insertion
// order, so a higher index always means a higher id.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Expense
	synced map[int64]bool
}

var (
	_ ledger.Store      = (*Store)(nil)
	_ ledger.Reader     = (*Store)(nil)
	_ ledger.Pinger     = (*Store)(nil)
	_ ledger.SyncSource = (*Store)(nil)
)

func New() *Store {
	return &Store{synced: make(map[int64]bool)}
}

// Insert stores the expense and assigns the next sequential id.
func (s *Store) Insert(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	e.Amount = core.RoundAmount(e.Amount)
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *Store) Delete(_ context.Context, owner string, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id && e.Owner == owner {
			s.removeAt(i)
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) DeleteLatest(_ context.Context, owner string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := -1
	for i, e := range s.items {
		if e.Owner != owner {
			continue
		}
		if latest < 0 || !e.RecordedAt.Before(s.items[latest].RecordedAt) {
			latest = i
		}
	}
	if latest < 0 {
		return core.Expense{}, core.ErrNotFound
	}
	e := s.items[latest]
	s.removeAt(latest)
	return e, nil
}

func (s *Store) QueryRecent(_ context.Context, owner string, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filter(func(e core.Expense) bool { return e.Owner == owner })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) QueryRange(_ context.Context, owner string, r core.DateRange) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(e core.Expense) bool {
		return e.Owner == owner && r.Contains(e.RecordedAt)
	}), nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }

// PendingSync returns records not yet mirrored, oldest first.
func (s *Store) PendingSync(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.filter(func(e core.Expense) bool { return !s.synced[e.ID] })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkSynced(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[id] = true
	return nil
}

// MarkSyncError leaves the record pending so the next pass retries it.
func (s *Store) MarkSyncError(context.Context, int64) error { return nil }

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) removeAt(i int) {
	delete(s.synced, s.items[i].ID)
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *Store) filter(keep func(core.Expense) bool) []core.Expense {
	var out []core.Expense
	for _, e := range s.items {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
