package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/s0up4200/reelscout/omdb"
)

// DefaultCacheSize bounds the number of compiled expressions kept around
const DefaultCacheSize = 64

// Manager resolves presets and caches compiled filters
type Manager struct {
	cache   *lruCache
	mu      sync.RWMutex
	presets map[string]string
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithPresets registers named expressions
func WithPresets(presets map[string]string) ManagerOption {
	return func(m *Manager) {
		for name, expression := range presets {
			m.presets[strings.ToLower(name)] = expression
		}
	}
}

// WithCacheSize sets how many compiled filters are kept
func WithCacheSize(size int) ManagerOption {
	return func(m *Manager) {
		m.cache = newLRUCache(size)
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		cache:   newLRUCache(DefaultCacheSize),
		presets: make(map[string]string),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Compile compiles an expression, reusing a cached program when possible
func (m *Manager) Compile(expression string) (*Filter, error) {
	key := strings.TrimSpace(expression)
	if f, ok := m.cache.Get(key); ok {
		return f, nil
	}

	f, err := Compile(key)
	if err != nil {
		return nil, err
	}
	m.cache.Put(key, f)
	return f, nil
}

// Preset returns the expression registered under name
func (m *Manager) Preset(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expression, ok := m.presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &UnknownPresetError{Name: name}
	}
	return expression, nil
}

// Presets returns the registered preset names in sorted order
func (m *Manager) Presets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.presets))
}

// Resolve picks the expression to use.
// Priority: explicit expression > preset > none.
func (m *Manager) Resolve(expression, preset string) (*Filter, error) {
	if strings.TrimSpace(expression) != "" {
		return m.Compile(expression)
	}

	if strings.TrimSpace(preset) != "" {
		presetExpr, err := m.Preset(preset)
		if err != nil {
			return nil, err
		}
		f, err := m.Compile(presetExpr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile preset '%s': %w", preset, err)
		}
		return f, nil
	}

	return nil, nil
}

// Apply narrows items with f; a nil filter returns items unchanged
func Apply(f *Filter, items []omdb.Item) ([]omdb.Item, error) {
	if f == nil {
		return items, nil
	}
	return f.Apply(items)
}
