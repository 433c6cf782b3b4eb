// Package testutil builds in-memory libraries and components for tests.
package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"complib/internal/library"
	"complib/internal/model"
	"complib/internal/store"
)

// Epoch is where FixedClock starts and the timestamp NewComponent stamps.
var Epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// ManualClock only moves when Advance is called.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// FixedClock returns a ManualClock set to Epoch.
func FixedClock() *ManualClock {
	return &ManualClock{now: Epoch}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// SequentialIDs hands out "id1", "id2", ...
type SequentialIDs struct {
	n atomic.Int64
}

func (g *SequentialIDs) New() string {
	return fmt.Sprintf("id%d", g.n.Add(1))
}

// NewTestStore returns an empty in-memory store.
func NewTestStore() *store.MemoryStore {
	return store.NewMemoryStore()
}

// NewTestLibrary returns a Library over a fresh in-memory store, driven by a
// FixedClock and SequentialIDs. The store and clock are returned so tests can
// inspect raw values and move time.
func NewTestLibrary() (*library.Library, *store.MemoryStore, *ManualClock) {
	s := NewTestStore()
	clock := FixedClock()
	return library.New(s, library.NewNopLogger(), clock, &SequentialIDs{}), s, clock
}

// NewComponent returns a draft component whose source exports name with a
// children prop, so it previews with the rule matching name.
func NewComponent(id, name string) *model.GeneratedComponent {
	return &model.GeneratedComponent{
		Metadata: model.ComponentMetadata{
			ID:        id,
			Name:      name,
			CreatedAt: Epoch,
			UpdatedAt: Epoch,
			Version:   "1.0.0",
			Author:    "tester",
			Tags:      []string{"test"},
			Framework: model.FrameworkReact,
			Status:    model.StatusDraft,
		},
		Code:         fmt.Sprintf("interface %sProps {\n  children: React.ReactNode;\n}\n\nexport function %s({ children }: %sProps) {\n  return <div>{children}</div>;\n}\n", name, name, name),
		Assets:       []model.AssetFile{},
		Dependencies: []string{"react"},
	}
}
