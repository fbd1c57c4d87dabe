package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBuildAndLookups(t *testing.T) {
	grid := NewGrid(DefaultCalendar()).
		Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60)).
		Place("Monday", "8:00-8:55", testCourse("MA201", "2"), testRoom("B201", 80))

	ix := NewIndex()
	ix.Build(grid)

	assert.False(t, ix.RoomFree("A101", "Monday", "7:00-7:55"))
	assert.True(t, ix.RoomFree("A101", "Monday", "8:00-8:55"))
	assert.False(t, ix.FacultyFree("1", "Monday", "7:00-7:55"))
	assert.True(t, ix.FacultyFree("1", "Tuesday", "7:00-7:55"))

	occupant, ok := ix.OccupantAt("Monday", "8:00-8:55")
	require.True(t, ok)
	assert.Equal(t, "MA201", occupant.Code)
}

func TestIndexCheckFast(t *testing.T) {
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	ix := NewIndex()
	ix.Build(grid)

	conflicts := ix.CheckFast("Monday", "7:00-7:55", testCourse("CS202", "2"), testRoom("A101", 60))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRoom, conflicts[0].Type)
	assert.Equal(t, SeverityCritical, conflicts[0].Severity)
	require.NotNil(t, conflicts[0].Course)
	assert.Equal(t, "CS101", conflicts[0].Course.Code)

	faculty := testCourse("CS303", "1")
	conflicts = ix.CheckFast("Monday", "7:00-7:55", faculty, testRoom("B201", 80))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictFaculty, conflicts[0].Type)

	// Re-checking the occupant itself is clean.
	assert.Empty(t, ix.CheckFast("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60)))
	assert.Empty(t, ix.CheckFast("Monday", "8:00-8:55", testCourse("CS202", "2"), testRoom("A101", 60)))
}

func TestIndexStaysConsistentThroughUpdates(t *testing.T) {
	cal := DefaultCalendar()
	grid := NewGrid(cal)
	ix := NewIndex()
	ix.Build(grid)

	apply := func(next Grid, day, slot string, old, now *CourseAssignment) Grid {
		ix.Update(day, slot, old, now)
		return next
	}

	course := testCourse("CS101", "1")
	room := testRoom("A101", 60)

	next := grid.Place("Monday", "7:00-7:55", course, room)
	grid = apply(next, "Monday", "7:00-7:55", nil, next.At("Monday", "7:00-7:55"))
	assert.Empty(t, ix.Validate(grid))

	next = grid.Move("Monday", "7:00-7:55", "Tuesday", "9:00-9:55", course, room)
	ix.Update("Monday", "7:00-7:55", grid.At("Monday", "7:00-7:55"), nil)
	ix.Update("Tuesday", "9:00-9:55", nil, next.At("Tuesday", "9:00-9:55"))
	grid = next
	assert.Empty(t, ix.Validate(grid))

	next = grid.Remove("Tuesday", "9:00-9:55")
	grid = apply(next, "Tuesday", "9:00-9:55", grid.At("Tuesday", "9:00-9:55"), nil)
	assert.Empty(t, ix.Validate(grid))
	assert.True(t, ix.RoomFree("A101", "Tuesday", "9:00-9:55"))
	assert.True(t, ix.FacultyFree("1", "Tuesday", "9:00-9:55"))
}

func TestIndexValidateReportsDivergence(t *testing.T) {
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	// A stale empty index against an occupied grid.
	ix := NewIndex()
	discrepancies := ix.Validate(grid)
	require.NotEmpty(t, discrepancies)
	kinds := make(map[string]bool)
	for _, d := range discrepancies {
		kinds[d.Kind] = true
	}
	assert.True(t, kinds["count_mismatch"])
	assert.True(t, kinds["missing_entry"])

	// Recovery is a full rebuild.
	ix.Build(grid)
	assert.Empty(t, ix.Validate(grid))

	// An index holding an entry the grid no longer has is orphaned.
	ix.Update("Friday", "8:00-8:55", nil, &CourseAssignment{Code: "GHOST", RoomID: "Z1", FacultyID: "9", Day: "Friday", Slot: "8:00-8:55"})
	discrepancies = ix.Validate(grid)
	require.NotEmpty(t, discrepancies)
	found := false
	for _, d := range discrepancies {
		if d.Kind == "orphaned_entry" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestIndexFacultySlotKeys(t *testing.T) {
	grid := NewGrid(DefaultCalendar()).
		Place("Monday", "8:00-8:55", testCourse("CS101", "1"), testRoom("A101", 60)).
		Place("Monday", "7:00-7:55", testCourse("CS303", "1"), testRoom("B201", 80))
	ix := NewIndex()
	ix.Build(grid)

	keys := ix.FacultySlotKeys("1")
	require.Len(t, keys, 2)
	assert.Equal(t, []string{"Monday|7:00-7:55", "Monday|8:00-8:55"}, keys)
	assert.Empty(t, ix.FacultySlotKeys("unknown"))
}
