package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"complib/internal/model"
)

// Snapshot is the whole-store export document.
type Snapshot struct {
	Components []*model.GeneratedComponent `json:"components"`
	Config     *model.ProjectConfig        `json:"config"`
	History    []model.HistoryEntry        `json:"history"`
	ExportedAt time.Time                   `json:"exportedAt"`
}

// importDocument mirrors Snapshot but keeps each section raw so that absent
// and null sections can be told apart from empty ones.
type importDocument struct {
	Components json.RawMessage `json:"components"`
	Config     json.RawMessage `json:"config"`
	History    json.RawMessage `json:"history"`
}

// ExportAll serializes the components, config and history into a single
// JSON document indented with two spaces.
func (l *Library) ExportAll() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	components, err := l.loadComponents()
	if err != nil {
		return nil, err
	}
	cfg, err := l.loadConfig()
	if err != nil {
		return nil, err
	}
	history, err := l.loadHistory()
	if err != nil {
		return nil, err
	}

	snap := Snapshot{
		Components: components,
		Config:     cfg,
		History:    history,
		ExportedAt: l.clock.Now(),
	}
	if snap.Components == nil {
		snap.Components = []*model.GeneratedComponent{}
	}
	if snap.History == nil {
		snap.History = []model.HistoryEntry{}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	l.logger.Info("library exported", "components", len(snap.Components), "history", len(snap.History))
	return data, nil
}

// ImportAll replaces each collection present in data. Sections that are
// absent or null leave the stored collection untouched. The whole payload is
// decoded before anything is written, so a malformed payload returns
// ErrInvalidImportFormat and changes nothing.
func (l *Library) ImportAll(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: payload is null", ErrInvalidImportFormat)
	}

	var doc importDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportFormat, err)
	}

	entries := make(map[string][]byte)

	if present(doc.Components) {
		var components []*model.GeneratedComponent
		if err := json.Unmarshal(doc.Components, &components); err != nil {
			return fmt.Errorf("%w: components: %v", ErrInvalidImportFormat, err)
		}
		seen := make(map[string]int, len(components))
		for i, c := range components {
			if c == nil || c.Metadata.ID == "" {
				return fmt.Errorf("%w: components[%d] has no id", ErrInvalidImportFormat, i)
			}
			if j, dup := seen[c.Metadata.ID]; dup {
				return fmt.Errorf("%w: components[%d] repeats id %q of components[%d]", ErrInvalidImportFormat, i, c.Metadata.ID, j)
			}
			seen[c.Metadata.ID] = i
		}
		encoded, err := json.Marshal(components)
		if err != nil {
			return fmt.Errorf("encoding components: %w", err)
		}
		entries[KeyComponents] = encoded
	}

	if present(doc.Config) {
		var cfg model.ProjectConfig
		if err := json.Unmarshal(doc.Config, &cfg); err != nil {
			return fmt.Errorf("%w: config: %v", ErrInvalidImportFormat, err)
		}
		encoded, err := json.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}
		entries[KeyConfig] = encoded
	}

	if present(doc.History) {
		var history []model.HistoryEntry
		if err := json.Unmarshal(doc.History, &history); err != nil {
			return fmt.Errorf("%w: history: %v", ErrInvalidImportFormat, err)
		}
		if len(history) > MaxHistoryEntries {
			history = history[:MaxHistoryEntries]
		}
		encoded, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("encoding history: %w", err)
		}
		entries[KeyHistory] = encoded
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.putAll(entries); err != nil {
		return err
	}
	l.logger.Info("library imported", "sections", len(entries))
	return nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
