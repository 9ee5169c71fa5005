// Package memory is an in-process ExpenseMirror used when no spreadsheet is
// configured and as a test double for the sync worker.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

type Mirror struct {
	mu    sync.Mutex
	rows  map[int64]core.Expense
	order []int64
}

var _ sheets.ExpenseMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[int64]core.Expense)}
}

// AppendExpense stores the expense once per id and returns a synthetic row reference.
func (m *Mirror) AppendExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.rows[e.ID] = e
	return fmt.Sprintf("mem:%d", e.ID), nil
}

// DeleteExpense removes the row for id; a missing row is not an error.
func (m *Mirror) DeleteExpense(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return nil
	}
	delete(m.rows, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// IDs returns the mirrored ids in ascending order.
func (m *Mirror) IDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]int64(nil), m.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
