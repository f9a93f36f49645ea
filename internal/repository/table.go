package repository

import (
	"sort"
	"sync"
)

// table is an auto-incrementing map of rows keyed by id.
type table[T any] struct {
	mu   sync.RWMutex
	seq  int64
	rows map[int64]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T)}
}

// insert allocates the next id and stores build(id).
func (t *table[T]) insert(build func(id int64) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	row := build(t.seq)
	t.rows[t.seq] = row
	return row
}

func (t *table[T]) get(id int64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// update applies fn to the row under the write lock.
func (t *table[T]) update(id int64, fn func(*T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	if err := fn(&row); err != nil {
		var zero T
		return zero, err
	}
	t.rows[id] = row
	return row, nil
}

func (t *table[T]) remove(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// all returns the rows matching keep (every row when keep is nil) in id
// order.
func (t *table[T]) all(keep func(T) bool) []T {
	t.mu.RLock()
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if row := t.rows[id]; keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	t.mu.RUnlock()
	return out
}

// paginate slices rows for a 1-based page.
func paginate[T any](rows []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(rows) {
		return []T{}
	}
	end := start + perPage
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
