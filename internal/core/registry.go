package core

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/comalice/narrativex/internal/primitives"
)

var (
	ErrNotFound = errors.New("scenario not found")
	ErrExists   = errors.New("scenario already exists")
)

// Catalog looks up scenarios by id.
type Catalog interface {
	// Get returns the scenario with the given id.
	Get(ctx context.Context, id string) (*primitives.ScenarioConfig, error)

	// List returns all scenario ids, sorted.
	List(ctx context.Context) ([]string, error)
}

// MemoryCatalog is a Catalog held in memory. Safe for concurrent use.
type MemoryCatalog struct {
	mu        sync.RWMutex
	scenarios map[string]*primitives.ScenarioConfig
}

// NewMemoryCatalog returns a catalog holding the given scenarios.
func NewMemoryCatalog(scenarios ...*primitives.ScenarioConfig) (*MemoryCatalog, error) {
	c := &MemoryCatalog{scenarios: make(map[string]*primitives.ScenarioConfig)}
	for _, s := range scenarios {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add validates and stores a scenario.
func (c *MemoryCatalog) Add(s *primitives.ScenarioConfig) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.scenarios[s.ID]; ok {
		return ErrExists
	}
	c.scenarios[s.ID] = s
	return nil
}

// Get implements Catalog.
func (c *MemoryCatalog) Get(ctx context.Context, id string) (*primitives.ScenarioConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scenarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List implements Catalog.
func (c *MemoryCatalog) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.scenarios))
	for id := range c.scenarios {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
