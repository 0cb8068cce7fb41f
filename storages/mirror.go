package storages

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Mirror is the in-memory copy of a Store, loaded once and written through on every insert.
type Mirror struct {
	store   Store
	mu      sync.Mutex
	records Records
}

func NewMirror(ctx context.Context, store Store) (*Mirror, error) {
	records, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = Records{}
	}
	return &Mirror{
		store:   store,
		records: records,
	}, nil
}

func (m *Mirror) Get(key string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[key]
	return record, ok
}

// Put inserts record unless key is present and persists the whole mapping.
// It returns the record stored under key and whether this call inserted it.
func (m *Mirror) Put(ctx context.Context, key string, record Record) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[key]; ok {
		return existing, false, nil
	}
	m.records[key] = record
	if err := m.store.Save(ctx, maps.Clone(m.records)); err != nil {
		delete(m.records, key)
		return Record{}, false, err
	}
	return record, true, nil
}

func (m *Mirror) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.records))
}

func (m *Mirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
