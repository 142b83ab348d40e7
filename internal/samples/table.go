// Package samples owns decoded sample payloads and hands out handles to them.
//
// Nodes never hold a sample slice directly: they hold a Handle into the
// Table's arena and resolve it through View. This decouples a node's lifetime
// from the lifetime of whoever loaded the audio.
package samples

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrFrozen is returned by Add after Freeze has been called.
	ErrFrozen = errors.New("sample table is frozen")
	// ErrDuplicate is returned when a name is added twice.
	ErrDuplicate = errors.New("sample already exists")
)

// Handle is an index into a Table's arena. The zero Handle is invalid.
type Handle int

// Valid reports whether h refers to an entry.
func (h Handle) Valid() bool { return h > 0 }

// Sample is a read-only view of one entry. Data is interleaved, Frames =
// len(Data) / Channels.
type Sample struct {
	Name     string
	Data     []float32
	Channels int
	Frames   int
}

// Table maps sample names to arena entries. A Table is populated before any
// compile pass starts and is read-only afterwards.
type Table struct {
	arena  []Sample // arena[0] is the invalid slot
	index  map[string]Handle
	frozen bool
}

// NewTable creates an empty, unfrozen table.
func NewTable() *Table {
	return &Table{
		arena: make([]Sample, 1),
		index: make(map[string]Handle),
	}
}

// Add takes ownership of data and registers it under name.
// The caller must not modify data afterwards.
func (t *Table) Add(name string, data []float32, channels int) (Handle, error) {
	if t.frozen {
		return 0, fmt.Errorf("add %q: %w", name, ErrFrozen)
	}
	if channels <= 0 {
		return 0, fmt.Errorf("add %q: channel count must be positive, got %d", name, channels)
	}
	if len(data)%channels != 0 {
		return 0, fmt.Errorf("add %q: %d samples do not divide into %d channels", name, len(data), channels)
	}
	if _, exists := t.index[name]; exists {
		return 0, fmt.Errorf("add %q: %w", name, ErrDuplicate)
	}

	h := Handle(len(t.arena))
	t.arena = append(t.arena, Sample{
		Name:     name,
		Data:     data,
		Channels: channels,
		Frames:   len(data) / channels,
	})
	t.index[name] = h
	return h, nil
}

// Freeze forbids further additions. Safe to call more than once.
func (t *Table) Freeze() { t.frozen = true }

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool { return t.frozen }

// Lookup returns the handle for name. A nil table contains nothing.
func (t *Table) Lookup(name string) (Handle, bool) {
	if t == nil {
		return 0, false
	}
	h, ok := t.index[name]
	return h, ok
}

// View resolves h. The returned Data slice aliases the arena and must be
// treated as read-only.
func (t *Table) View(h Handle) (Sample, bool) {
	if t == nil || !h.Valid() || int(h) >= len(t.arena) {
		return Sample{}, false
	}
	return t.arena[h], true
}

// Len returns the number of samples in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}

// Names returns all sample names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.index))
	for name := range t.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
