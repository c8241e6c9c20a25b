package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/finanse/internal/common"
)

// MemoryStore is an in-memory Store used in tests and local development.
// It records the number of Set calls per document and can be told to fail,
// globally or per key, to exercise deferred-propagation paths.
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[string]map[string]any
	setCalls map[string]int
	failKeys map[string]struct{}

	// Err, when non-nil, makes every call fail.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]any),
		setCalls: make(map[string]int),
		failKeys: make(map[string]struct{}),
	}
}

func docKey(collection, key string) string {
	return collection + "/" + key
}

// FailKey makes Set/Update/Delete fail for one document.
func (m *MemoryStore) FailKey(collection, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failKeys[docKey(collection, key)] = struct{}{}
}

// HealKey removes a per-key failure.
func (m *MemoryStore) HealKey(collection, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failKeys, docKey(collection, key))
}

func (m *MemoryStore) failure(k string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.failKeys[k]; ok {
		return fmt.Errorf("remote store: forced failure for %s", k)
	}
	return nil
}

func (m *MemoryStore) Set(_ context.Context, collection, key string, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := docKey(collection, key)
	if err := m.failure(k); err != nil {
		return err
	}

	m.setCalls[k]++
	copied := make(map[string]any, len(doc))
	for f, v := range doc {
		copied[f] = v
	}
	m.docs[k] = copied
	return nil
}

func (m *MemoryStore) Update(_ context.Context, collection, key string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := docKey(collection, key)
	if err := m.failure(k); err != nil {
		return err
	}

	doc, ok := m.docs[k]
	if !ok {
		return fmt.Errorf("remote store: update %s: %w", k, common.ErrNotFound)
	}
	for f, v := range fields {
		doc[f] = v
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := docKey(collection, key)
	if err := m.failure(k); err != nil {
		return err
	}

	delete(m.docs, k)
	return nil
}

// Doc returns a stored document, or nil when absent.
func (m *MemoryStore) Doc(collection, key string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[docKey(collection, key)]
}

// SetCalls returns how many times Set succeeded for one document.
func (m *MemoryStore) SetCalls(collection, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls[docKey(collection, key)]
}
