package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"complib/internal/model"
)

// Keys under which the three collections are persisted.
const (
	KeyComponents = "components"
	KeyConfig     = "config"
	KeyHistory    = "history"
)

var (
	// ErrMissingID is returned when saving a component without an identifier.
	ErrMissingID = errors.New("component id is required")

	// ErrInvalidImportFormat is returned when an import payload cannot be
	// decoded into the export document shape.
	ErrInvalidImportFormat = errors.New("invalid import data format")

	// ErrInvalidComponent is returned by AddComponent when required fields are missing.
	ErrInvalidComponent = errors.New("invalid component")
)

// Library is the component repository. It owns the component collection,
// the project config singleton and the bounded history log, all persisted
// through a Store.
type Library struct {
	mu     sync.Mutex
	store  Store
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// New creates a Library backed by store.
func New(store Store, logger Logger, clock Clock, idgen IDGenerator) *Library {
	return &Library{
		store:  store,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// SaveComponent inserts c, or replaces the stored component with the same ID
// in place. The stored value is a copy of c.
func (l *Library) SaveComponent(c *model.GeneratedComponent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.stageComponent(c)
	if err != nil {
		return err
	}
	if err := l.putAll(entries); err != nil {
		return err
	}
	l.logger.Info("component saved", "id", c.Metadata.ID, "name", c.Metadata.Name)
	return nil
}

// GetComponent returns a copy of the component with the given ID,
// or nil, nil if there is none.
func (l *Library) GetComponent(id string) (*model.GeneratedComponent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	components, err := l.loadComponents()
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		if c.Metadata.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

// ListComponents returns copies of all components in insertion order.
func (l *Library) ListComponents() ([]*model.GeneratedComponent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadComponents()
}

// DeleteComponent removes the component with the given ID. Unknown IDs are
// ignored.
func (l *Library) DeleteComponent(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, removed, err := l.stageDelete(id)
	if err != nil || !removed {
		return err
	}
	if err := l.putAll(entries); err != nil {
		return err
	}
	l.logger.Info("component deleted", "id", id)
	return nil
}

// SaveAndRecord saves c and appends a history entry for it. When the store
// supports batched writes both land together; otherwise they are written one
// after the other.
func (l *Library) SaveAndRecord(c *model.GeneratedComponent, action string, details any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.stageComponent(c)
	if err != nil {
		return err
	}
	history, err := l.stageHistory(action, c.Metadata.ID, details)
	if err != nil {
		return err
	}
	entries[KeyHistory] = history
	if err := l.putAll(entries); err != nil {
		return err
	}
	l.logger.Info("component saved", "id", c.Metadata.ID, "name", c.Metadata.Name, "action", action)
	return nil
}

// DeleteAndRecord deletes the component with the given ID and appends a
// history entry. Nothing is recorded when the ID is unknown.
func (l *Library) DeleteAndRecord(id string, action string, details any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, removed, err := l.stageDelete(id)
	if err != nil || !removed {
		return err
	}
	history, err := l.stageHistory(action, id, details)
	if err != nil {
		return err
	}
	entries[KeyHistory] = history
	if err := l.putAll(entries); err != nil {
		return err
	}
	l.logger.Info("component deleted", "id", id, "action", action)
	return nil
}

// SaveConfig overwrites the project config.
func (l *Library) SaveConfig(cfg *model.ProjectConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := l.store.Put(KeyConfig, data); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GetConfig returns the project config, or nil, nil if none was saved.
func (l *Library) GetConfig() (*model.ProjectConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadConfig()
}

func (l *Library) stageComponent(c *model.GeneratedComponent) (map[string][]byte, error) {
	if c == nil || c.Metadata.ID == "" {
		return nil, ErrMissingID
	}
	components, err := l.loadComponents()
	if err != nil {
		return nil, err
	}

	replaced := false
	for i, existing := range components {
		if existing.Metadata.ID == c.Metadata.ID {
			components[i] = c.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		components = append(components, c.Clone())
	}

	data, err := json.Marshal(components)
	if err != nil {
		return nil, fmt.Errorf("encoding components: %w", err)
	}
	return map[string][]byte{KeyComponents: data}, nil
}

func (l *Library) stageDelete(id string) (map[string][]byte, bool, error) {
	components, err := l.loadComponents()
	if err != nil {
		return nil, false, err
	}

	kept := components[:0]
	for _, c := range components {
		if c.Metadata.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(components) {
		return nil, false, nil
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return nil, false, fmt.Errorf("encoding components: %w", err)
	}
	return map[string][]byte{KeyComponents: data}, true, nil
}

// putAll writes every entry, in a single batch when the store supports it.
func (l *Library) putAll(entries map[string][]byte) error {
	if bs, ok := l.store.(BatchStore); ok && len(entries) > 1 {
		if err := bs.PutMany(entries); err != nil {
			return fmt.Errorf("writing batch: %w", err)
		}
		return nil
	}
	// History is always written last.
	for _, key := range []string{KeyComponents, KeyConfig, KeyHistory} {
		data, ok := entries[key]
		if !ok {
			continue
		}
		if err := l.store.Put(key, data); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
	}
	return nil
}

func (l *Library) loadComponents() ([]*model.GeneratedComponent, error) {
	data, err := l.store.Get(KeyComponents)
	if err != nil {
		return nil, fmt.Errorf("reading components: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var components []*model.GeneratedComponent
	if err := json.Unmarshal(data, &components); err != nil {
		return nil, fmt.Errorf("decoding components: %w", err)
	}
	return components, nil
}

func (l *Library) loadConfig() (*model.ProjectConfig, error) {
	data, err := l.store.Get(KeyConfig)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var cfg *model.ProjectConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
