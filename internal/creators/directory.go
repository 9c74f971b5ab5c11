package creators

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrNotFound reports an unknown creator id.
var ErrNotFound = errors.New("creator not found")

// Creator is the recipient side of a purchase: who gets paid and at
// what unit price.
type Creator struct {
	ID            string
	DisplayName   string
	PayoutAddress string
	UnitPrice     decimal.Decimal
}

// Directory abstracts recipient lookup.
type Directory interface {
	Get(ctx context.Context, id string) (Creator, error)
}

// MemoryDirectory is mostly for testing and local dev.
type MemoryDirectory struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

func NewMemoryDirectory(creators ...Creator) *MemoryDirectory {
	m := &MemoryDirectory{creators: make(map[string]Creator, len(creators))}
	for _, c := range creators {
		m.creators[c.ID] = c
	}
	return m
}

func (m *MemoryDirectory) Get(_ context.Context, id string) (Creator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.creators[id]
	if !ok {
		return Creator{}, ErrNotFound
	}
	return c, nil
}

func (m *MemoryDirectory) Put(c Creator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creators[c.ID] = c
}
