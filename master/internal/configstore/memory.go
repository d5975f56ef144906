package configstore

import (
	"context"
	"sort"
	"sync"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/pkg/model"
)

// MemoryRepository keeps configs in process memory. Values are copied on the way in and out.
type MemoryRepository[T model.ComputeConfig] struct {
	mu      sync.RWMutex
	configs map[int]T
	nextID  int
}

// NewMemoryRepository returns an empty repository. Ids start at 1.
func NewMemoryRepository[T model.ComputeConfig]() *MemoryRepository[T] {
	return &MemoryRepository[T]{configs: map[int]T{}, nextID: 1}
}

// Get implements Repository.
func (m *MemoryRepository[T]) Get(_ context.Context, id int) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[id]
	if !ok {
		var zero T
		return zero, m.notFound(id)
	}
	return clone(cfg)
}

// Exists implements Repository.
func (m *MemoryRepository[T]) Exists(_ context.Context, id int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.configs[id]
	return ok, nil
}

// List implements Repository.
func (m *MemoryRepository[T]) List(context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.configs))
	for id := range m.configs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		cfg, err := clone(m.configs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

// Insert implements Repository.
func (m *MemoryRepository[T]) Insert(_ context.Context, cfg T) (T, error) {
	stored, err := clone(cfg)
	if err != nil {
		var zero T
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored.SetConfigID(m.nextID)
	m.nextID++
	m.configs[stored.ConfigID()] = stored
	return clone(stored)
}

// Replace implements Repository.
func (m *MemoryRepository[T]) Replace(_ context.Context, cfg T) (T, error) {
	var zero T
	stored, err := clone(cfg)
	if err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[stored.ConfigID()]; !ok {
		return zero, m.notFound(stored.ConfigID())
	}
	m.configs[stored.ConfigID()] = stored
	return clone(stored)
}

// Remove implements Repository.
func (m *MemoryRepository[T]) Remove(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[id]; !ok {
		return m.notFound(id)
	}
	delete(m.configs, id)
	return nil
}

func (m *MemoryRepository[T]) notFound(id int) error {
	return api.AsErrNotFound("%s config %d", newConfig[T]().Kind(), id)
}
