package probecache

import (
	"context"
	"sync"

	"github.com/haivivi/oggextract/pkg/ogg"
)

// Memory is an in-memory Store. Records are encoded as in Badger, so that
// both stores behave the same.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, k Key) (*Record, error) {
	m.mu.RLock()
	b, ok := m.records[string(key(k))]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	return decode(k, b)
}

func (m *Memory) Put(_ context.Context, k Key, rep *ogg.Report) error {
	b, err := encode(k, rep)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[string(key(k))] = b
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, k Key) error {
	m.mu.Lock()
	delete(m.records, string(key(k)))
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *Memory) Close() error { return nil }
