package timetable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryUndoRedoRoundTrip(t *testing.T) {
	cal := DefaultCalendar()
	h := NewHistory(10)
	room := testRoom("A101", 60)

	grid := NewGrid(cal)
	h.Record(grid, ActionLoad, nil)

	grids := []Grid{grid}
	slots := cal.Slots()
	for i := 0; i < 3; i++ {
		grid = grid.Place("Monday", slots[i], testCourse(fmt.Sprintf("CS10%d", i), "1"), room)
		h.Record(grid, ActionPlace, nil)
		grids = append(grids, grid)
	}

	// Undo three times lands back on the initial grid.
	for i := 2; i >= 0; i-- {
		restored, ok := h.Undo()
		require.True(t, ok)
		assert.True(t, grids[i].Equal(restored), "undo to state %d", i)
	}
	_, ok := h.Undo()
	assert.False(t, ok, "undo at the boundary is a no-op")

	// Redo three times returns deep-equal to the final state.
	var restored Grid
	for i := 1; i <= 3; i++ {
		restored, ok = h.Redo()
		require.True(t, ok)
		assert.True(t, grids[i].Equal(restored))
	}
	_, ok = h.Redo()
	assert.False(t, ok, "redo at the boundary is a no-op")
}

func TestHistoryRecordTruncatesRedoneTail(t *testing.T) {
	cal := DefaultCalendar()
	h := NewHistory(10)
	room := testRoom("A101", 60)

	g0 := NewGrid(cal)
	g1 := g0.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), room)
	g2 := g1.Place("Monday", "8:00-8:55", testCourse("CS102", "1"), room)
	h.Record(g0, ActionLoad, nil)
	h.Record(g1, ActionPlace, nil)
	h.Record(g2, ActionPlace, nil)

	_, ok := h.Undo()
	require.True(t, ok)

	// A new commit discards the forward entry.
	g1b := g1.Place("Friday", "9:00-9:55", testCourse("CS999", "2"), room)
	h.Record(g1b, ActionPlace, nil)
	assert.False(t, h.CanRedo())
	assert.Equal(t, 3, h.Len())

	restored, ok := h.Undo()
	require.True(t, ok)
	assert.True(t, g1.Equal(restored))
}

func TestHistoryTrimsToLimit(t *testing.T) {
	cal := DefaultCalendar()
	h := NewHistory(3)
	room := testRoom("A101", 60)
	grid := NewGrid(cal)

	slots := cal.Slots()
	for i := 0; i < 6; i++ {
		grid = grid.Place("Monday", slots[i], testCourse(fmt.Sprintf("C%d", i), "1"), room)
		h.Record(grid, ActionPlace, nil)
		assert.LessOrEqual(t, h.Len(), 3, "stack never exceeds its maximum")
	}
	assert.Equal(t, 3, h.Len())

	// Only the two most recent predecessors remain undoable.
	count := 0
	for {
		if _, ok := h.Undo(); !ok {
			break
		}
		count++
	}
	assert.Equal(t, 2, count)
}

func TestHistorySnapshotsAreIndependent(t *testing.T) {
	cal := DefaultCalendar()
	h := NewHistory(10)
	grid := NewGrid(cal).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	h.Record(grid, ActionPlace, map[string]any{"code": "CS101"})
	h.Record(grid.Remove("Monday", "7:00-7:55"), ActionRemove, nil)

	restored, ok := h.Undo()
	require.True(t, ok)

	// Mutating the returned grid must not leak into the stored snapshot.
	_ = restored.Remove("Monday", "7:00-7:55")
	again, ok := h.Redo()
	require.True(t, ok)
	assert.Nil(t, again.At("Monday", "7:00-7:55"))

	back, ok := h.Undo()
	require.True(t, ok)
	assert.NotNil(t, back.At("Monday", "7:00-7:55"))
}

func TestHistoryCurrent(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Current()
	assert.False(t, ok)

	grid := NewGrid(DefaultCalendar())
	h.Record(grid, ActionLoad, map[string]any{"key": "2026-CSE-A-theory"})
	entry, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, ActionLoad, entry.Action)
	assert.Equal(t, "2026-CSE-A-theory", entry.Meta["key"])
	assert.False(t, entry.At.IsZero())
}
