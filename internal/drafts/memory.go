package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/billsplit/internal/calculator"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	state   calculator.State
	expires time.Time
}

// MemoryStore is a process-local Store. Expired drafts are dropped lazily
// on access.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (calculator.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return calculator.State{}, ErrNotFound
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return calculator.State{}, ErrNotFound
	}
	return e.state, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st calculator.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{state: st, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
