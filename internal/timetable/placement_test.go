package timetable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := NewDirectory(
		[]Room{testRoom("A101", 60), testRoom("B201", 80), testRoom("C301", 30)},
		[]Faculty{
			{ID: "1", Name: "Prof. 1", Department: "CSE"},
			{ID: "2", Name: "Prof. 2", Department: "CSE"},
		},
	)
	return NewEngine(NewGrid(DefaultCalendar()), dir, EngineConfig{})
}

func TestEngineDragLifecycle(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, PhaseIdle, e.Phase())

	require.NoError(t, e.StartDrag(testCourse("CS101", "1"), testRoom("A101", 60)))
	assert.Equal(t, PhaseDragging, e.Phase())
	assert.Error(t, e.StartDrag(testCourse("CS102", "1"), testRoom("A101", 60)), "one in-flight operation at a time")

	eval, err := e.DragOver("Monday", "7:00-7:55")
	require.NoError(t, err)
	assert.Equal(t, PhaseDragOver, e.Phase())
	assert.True(t, eval.CanCommit())
	assert.Nil(t, e.Grid().At("Monday", "7:00-7:55"), "drag-over never mutates")

	result := e.Drop("Monday", "7:00-7:55")
	assert.True(t, result.Committed)
	assert.Equal(t, PhaseIdle, e.Phase())
	require.NotNil(t, e.Grid().At("Monday", "7:00-7:55"))
}

func TestEngineCancelLeavesGridUntouched(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.StartDrag(testCourse("CS101", "1"), testRoom("A101", 60)))
	_, err := e.DragOver("Monday", "7:00-7:55")
	require.NoError(t, err)

	e.Cancel()
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Empty(t, e.Grid().Assignments())
	assert.Empty(t, e.Index().Validate(e.Grid()))
}

func TestEngineDropBlockedByCriticalConflict(t *testing.T) {
	e := newTestEngine(t)
	e.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	require.NoError(t, e.StartDrag(testCourse("CS202", "2"), testRoom("A101", 60)))
	result := e.Drop("Monday", "7:00-7:55")
	assert.False(t, result.Committed)
	assert.False(t, result.Evaluation.Placement.CanPlace)
	assert.Equal(t, PhaseIdle, e.Phase())

	occupant := e.Grid().At("Monday", "7:00-7:55")
	require.NotNil(t, occupant)
	assert.Equal(t, "CS101", occupant.Code, "blocked drop never mutates")
}

func TestEngineMoveFromExistingCell(t *testing.T) {
	e := newTestEngine(t)
	e.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	require.NoError(t, e.StartDragFrom("Monday", "7:00-7:55"))
	result := e.Drop("Wednesday", "9:00-9:55")
	require.True(t, result.Committed)

	assert.Nil(t, e.Grid().At("Monday", "7:00-7:55"))
	moved := e.Grid().At("Wednesday", "9:00-9:55")
	require.NotNil(t, moved)
	assert.Equal(t, "CS101", moved.Code)
	assert.Empty(t, e.Index().Validate(e.Grid()), "index follows the move incrementally")
	assert.Empty(t, e.Conflicts())
}

func TestEngineMoveSelfAdjacentSlotIsClean(t *testing.T) {
	e := newTestEngine(t)
	long := testCourse("CS101", "1")
	long.Duration = 2
	e.Place("Monday", "7:00-7:55", long, testRoom("A101", 60))

	// Moving the course one slot over must not collide with its own old
	// position.
	result, err := e.MoveAssignment("Monday", "7:00-7:55", "Monday", "8:00-8:55")
	require.NoError(t, err)
	assert.True(t, result.Committed)
}

func TestEngineRunningConflictListIsScoped(t *testing.T) {
	e := newTestEngine(t)
	e.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	e.Place("Monday", "8:00-8:55", testCourse("CS102", "2"), testRoom("B201", 80))

	// Adjacent occupancy produces break-time advisories for both cells.
	conflicts := e.Conflicts()
	require.NotEmpty(t, conflicts)
	for _, c := range conflicts {
		assert.Equal(t, ConflictBreakTime, c.Type)
		assert.False(t, c.IsCritical())
	}

	// Removing one cell clears its advisories and rescans only that cell.
	require.True(t, e.RemoveAssignment("Monday", "8:00-8:55"))
	for _, c := range e.Conflicts() {
		assert.NotEqual(t, "8:00-8:55", c.Slot)
	}
}

func TestEngineRemoveClearsCrossCellOverlap(t *testing.T) {
	e := newTestEngine(t)
	long := testCourse("CS101", "1")
	long.Duration = 2
	require.True(t, e.Place("Monday", "7:00-7:55", long, testRoom("A101", 60)).Committed)
	require.True(t, e.Place("Tuesday", "7:00-7:55", testCourse("CS202", "2"), testRoom("A101", 60)).Committed)

	// Suggestions commit without re-validation, so CS202 lands under CS101's
	// second period and both cells report the overlap.
	require.NoError(t, e.ApplySuggestion(Suggestion{
		Kind:       SuggestReschedule,
		Day:        "Tuesday",
		Slot:       "7:00-7:55",
		TargetDay:  "Monday",
		TargetSlot: "8:00-8:55",
	}))
	var overlaps int
	for _, c := range e.Conflicts() {
		if c.Type == ConflictRoomOverlap {
			overlaps++
		}
	}
	require.NotZero(t, overlaps)

	// Removing the blocking course must also clear the neighbor cell's entry
	// that named it, not just the removed cell's own conflicts.
	require.True(t, e.RemoveAssignment("Monday", "7:00-7:55"))
	for _, c := range e.Conflicts() {
		assert.NotEqual(t, ConflictRoomOverlap, c.Type)
		if c.Course != nil {
			assert.NotEqual(t, "CS101", c.Course.Code, "stale entry names the removed course")
		}
	}
}

func TestEngineRemoveAssignment(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.RemoveAssignment("Monday", "7:00-7:55"), "empty cell is a no-op")

	e.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	assert.True(t, e.RemoveAssignment("Monday", "7:00-7:55"))
	assert.Nil(t, e.Grid().At("Monday", "7:00-7:55"))
	assert.Empty(t, e.Index().Validate(e.Grid()))
}

func TestEngineUndoRedoSequence(t *testing.T) {
	e := newTestEngine(t)
	var states []Grid
	states = append(states, e.Grid())

	for i := 0; i < 3; i++ {
		slot := DefaultSlots[i]
		result := e.Place("Monday", slot, testCourse(fmt.Sprintf("CS10%d", i), "1"), testRoom("A101", 60))
		require.True(t, result.Committed)
		states = append(states, e.Grid())
	}

	for i := 2; i >= 0; i-- {
		require.True(t, e.Undo())
		assert.True(t, states[i].Equal(e.Grid()))
		assert.Empty(t, e.Index().Validate(e.Grid()), "index rebuilt after undo")
	}
	assert.False(t, e.Undo())

	for i := 1; i <= 3; i++ {
		require.True(t, e.Redo())
		assert.True(t, states[i].Equal(e.Grid()))
	}
	assert.False(t, e.Redo())
}

func TestEngineValidateIndexRecovers(t *testing.T) {
	e := newTestEngine(t)
	e.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	assert.Empty(t, e.ValidateIndex())

	// Force divergence behind the engine's back, then recover.
	e.Index().Update("Friday", "9:00-9:55", nil, &CourseAssignment{Code: "GHOST", RoomID: "Z", FacultyID: "9", Day: "Friday", Slot: "9:00-9:55"})
	assert.NotEmpty(t, e.ValidateIndex())
	assert.Empty(t, e.ValidateIndex(), "rebuild restores consistency")
}

func TestEngineAutoArrange(t *testing.T) {
	e := newTestEngine(t)
	courses := []Course{
		testCourse("CS101", "1"),
		testCourse("CS102", "2"),
		testCourse("CS103", "1"),
	}

	result := e.AutoArrange(courses, []string{"Wednesday", "Monday"})
	assert.Empty(t, result.Unplaced)
	require.Len(t, result.Placed, 3)
	for _, a := range result.Placed {
		assert.Equal(t, "Wednesday", a.Day, "preference day order is honored while it has room")
	}
	assert.Empty(t, e.Index().Validate(e.Grid()))
}

func TestEngineAutoArrangeCollectsUnplaceable(t *testing.T) {
	dir := NewDirectory([]Room{testRoom("C301", 30)}, []Faculty{{ID: "1", Name: "Prof. 1"}})
	e := NewEngine(NewGrid(DefaultCalendar()), dir, EngineConfig{})

	oversized := testCourse("CS500", "1")
	oversized.BatchSize = 200 // no room can hold it
	result := e.AutoArrange([]Course{oversized}, nil)
	assert.Empty(t, result.Placed)
	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "CS500", result.Unplaced[0].Code)
}

func TestEngineWorkloadCeilingConfig(t *testing.T) {
	dir := NewDirectory([]Room{testRoom("A101", 60)}, nil)
	e := NewEngine(NewGrid(DefaultCalendar()), dir, EngineConfig{WorkloadCeiling: 1})

	first := e.Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	require.True(t, first.Committed)

	// Exceeding the ceiling warns but does not block.
	second := e.Place("Wednesday", "7:00-7:55", testCourse("CS102", "1"), testRoom("A101", 60))
	assert.True(t, second.Committed)
	require.NotEmpty(t, second.Evaluation.Resources.Warnings)
	assert.Equal(t, ConflictWorkload, second.Evaluation.Resources.Warnings[0].Type)
}
