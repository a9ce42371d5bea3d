package memory

import (
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// table is a mutex guarded map of records. Records are copied on the way in and out so
// callers never share memory with the store.
type table[T any] struct {
	mu    sync.RWMutex
	name  string
	rows  map[string]*T
	order map[string]int
	seq   int
	clone func(*T) *T
}

func newTable[T any](name string, clone func(*T) *T) *table[T] {
	return &table[T]{
		name:  name,
		rows:  make(map[string]*T),
		order: make(map[string]int),
		clone: clone,
	}
}

func (t *table[T]) get(id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, exists := t.rows[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, t.name+" not found", goerr.V("id", id))
	}
	return t.clone(row), nil
}

// put stores row under id, keeping the insertion position of an existing id
func (t *table[T]) put(id string, row *T) *T {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.order[id]; !exists {
		t.seq++
		t.order[id] = t.seq
	}
	t.rows[id] = t.clone(row)
	return t.clone(row)
}

func (t *table[T]) insert(id string, row *T) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[id]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, t.name+" already exists", goerr.V("id", id))
	}
	t.seq++
	t.order[id] = t.seq
	t.rows[id] = t.clone(row)
	return t.clone(row), nil
}

// update replaces an existing row. mutate receives the stored row and the replacement.
func (t *table[T]) update(id string, row *T, mutate func(existing, updated *T)) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, exists := t.rows[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, t.name+" not found", goerr.V("id", id))
	}

	updated := t.clone(row)
	if mutate != nil {
		mutate(existing, updated)
	}
	t.rows[id] = updated
	return t.clone(updated), nil
}

func (t *table[T]) delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[id]; !exists {
		return goerr.Wrap(ErrNotFound, t.name+" not found", goerr.V("id", id))
	}
	delete(t.rows, id)
	delete(t.order, id)
	return nil
}

// list returns the rows accepted by filter in insertion order
func (t *table[T]) list(filter func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.rows))
	for id, row := range t.rows {
		if filter == nil || filter(row) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return t.order[ids[i]] < t.order[ids[j]]
	})

	rows := make([]*T, len(ids))
	for i, id := range ids {
		rows[i] = t.clone(t.rows[id])
	}
	return rows
}

func (t *table[T]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func cloneValue[T any](v *T) *T {
	c := *v
	return &c
}
