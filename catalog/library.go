package catalog

import (
	"fmt"
	"sort"
	"sync"
)

// Library resolves unit type IDs to their immutable Config records. Replacing
// an entry swaps the pointer; existing agents keep the Config they spawned
// with until the caller reassigns them.
type Library struct {
	mu      sync.RWMutex
	entries map[string]*Config
}

// NewLibrary builds a Library from normalized configs.
func NewLibrary(configs []Config) (*Library, error) {
	lib := &Library{entries: make(map[string]*Config, len(configs))}
	for _, cfg := range configs {
		normalized := Normalize(cfg)
		if err := Validate(normalized); err != nil {
			return nil, err
		}
		if _, exists := lib.entries[normalized.ID]; exists {
			return nil, fmt.Errorf("catalog: duplicate entry %q", normalized.ID)
		}
		entry := normalized
		lib.entries[normalized.ID] = &entry
	}
	return lib, nil
}

// Config returns the record for the given unit type, or nil when unknown.
func (l *Library) Config(id string) *Config {
	if l == nil || id == "" {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries[id]
}

// IDs returns the known unit type IDs in sorted order.
func (l *Library) IDs() []string {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Replace installs a new record for cfg.ID, returning the previous record if
// one existed. Used by live reload and by upgrade application.
func (l *Library) Replace(cfg Config) (*Config, error) {
	if l == nil {
		return nil, fmt.Errorf("catalog: nil library")
	}
	normalized := Normalize(cfg)
	if err := Validate(normalized); err != nil {
		return nil, err
	}
	entry := normalized
	l.mu.Lock()
	defer l.mu.Unlock()
	previous := l.entries[normalized.ID]
	l.entries[normalized.ID] = &entry
	return previous, nil
}
