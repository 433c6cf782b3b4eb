package library

import (
	"encoding/json"
	"fmt"
	"strconv"

	"complib/internal/model"
)

// MaxHistoryEntries is the number of most recent history entries kept.
const MaxHistoryEntries = 100

// History action labels.
const (
	ActionCreated    = "created"
	ActionDeleted    = "Deleted component"
	ActionDownloaded = "Downloaded component"
	ActionPublished  = "Published component"
)

// RecordHistory prepends a history entry and drops entries beyond
// MaxHistoryEntries. details may be nil or any JSON-encodable value.
func (l *Library) RecordHistory(action, componentID string, details any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.stageHistory(action, componentID, details)
	if err != nil {
		return err
	}
	if err := l.store.Put(KeyHistory, data); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	l.logger.Debug("history recorded", "action", action, "component", componentID)
	return nil
}

// History returns the history log, newest first.
func (l *Library) History() ([]model.HistoryEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadHistory()
}

func (l *Library) stageHistory(action, componentID string, details any) ([]byte, error) {
	history, err := l.loadHistory()
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if details != nil {
		raw, err = json.Marshal(details)
		if err != nil {
			return nil, fmt.Errorf("encoding history details: %w", err)
		}
	}

	now := l.clock.Now()
	id := now.UnixMilli()
	// IDs are strictly increasing even when the clock stands still.
	if len(history) > 0 {
		if prev, ok := history[0].ID.Int(); ok && id <= prev {
			id = prev + 1
		}
	}

	entry := model.HistoryEntry{
		ID:          model.HistoryID(strconv.FormatInt(id, 10)),
		Action:      action,
		ComponentID: componentID,
		Timestamp:   now,
		Details:     raw,
	}
	history = append([]model.HistoryEntry{entry}, history...)
	if len(history) > MaxHistoryEntries {
		history = history[:MaxHistoryEntries]
	}

	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	return data, nil
}

func (l *Library) loadHistory() ([]model.HistoryEntry, error) {
	data, err := l.store.Get(KeyHistory)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var history []model.HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}
	return history, nil
}
