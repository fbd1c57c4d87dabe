package timetable

import "time"

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 50

// HistoryEntry is one immutable grid snapshot, optionally tagged with the
// action that produced it.
type HistoryEntry struct {
	Grid   Grid
	Action string
	Meta   map[string]any
	At     time.Time
}

// History is a bounded, cursor-indexed undo/redo stack of grid snapshots.
// Every stored snapshot is a structurally independent deep copy; mutating a
// grid returned from Undo or Redo never affects stored state.
type History struct {
	entries []HistoryEntry
	cursor  int
	limit   int
}

// NewHistory builds an empty history; a non-positive limit falls back to
// DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{cursor: -1, limit: limit}
}

// Record truncates any redone entries past the cursor, appends a deep copy of
// the grid, trims the stack to its limit (oldest first) and advances the
// cursor to the new tail.
func (h *History) Record(g Grid, action string, meta map[string]any) {
	if h.cursor < len(h.entries)-1 {
		h.entries = h.entries[:h.cursor+1]
	}
	entry := HistoryEntry{
		Grid:   g.Clone(),
		Action: action,
		At:     time.Now().UTC(),
	}
	if len(meta) > 0 {
		entry.Meta = make(map[string]any, len(meta))
		for k, v := range meta {
			entry.Meta[k] = v
		}
	}
	h.entries = append(h.entries, entry)
	if overflow := len(h.entries) - h.limit; overflow > 0 {
		h.entries = h.entries[overflow:]
	}
	h.cursor = len(h.entries) - 1
}

// Undo steps the cursor back and returns that snapshot. At the stack boundary
// it reports false and changes nothing; exhaustion is a no-op, not an error.
func (h *History) Undo() (Grid, bool) {
	if h.cursor <= 0 {
		return Grid{}, false
	}
	h.cursor--
	return h.entries[h.cursor].Grid.Clone(), true
}

// Redo steps the cursor forward symmetrically.
func (h *History) Redo() (Grid, bool) {
	if h.cursor >= len(h.entries)-1 {
		return Grid{}, false
	}
	h.cursor++
	return h.entries[h.cursor].Grid.Clone(), true
}

// CanUndo reports whether a snapshot precedes the cursor.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a snapshot follows the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.entries)
}

// Current returns the entry at the cursor, if any.
func (h *History) Current() (HistoryEntry, bool) {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return HistoryEntry{}, false
	}
	entry := h.entries[h.cursor]
	entry.Grid = entry.Grid.Clone()
	return entry, true
}
