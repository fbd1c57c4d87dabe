package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario A: CS101 (faculty 1) occupies A101 Monday 7:00-7:55; placing CS202
// (faculty 2) into the same room and slot is one critical room conflict
// naming CS101.
func TestCheckConflictsRoomScenario(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	conflicts := d.CheckConflicts(grid, "Monday", "7:00-7:55", testCourse("CS202", "2"), testRoom("A101", 60))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRoom, conflicts[0].Type)
	assert.Equal(t, SeverityCritical, conflicts[0].Severity)
	require.NotNil(t, conflicts[0].Course)
	assert.Equal(t, "CS101", conflicts[0].Course.Code)
}

// Scenario B: with CS101 still placed, CS303 under the same faculty id in a
// different room is one critical faculty conflict naming CS101.
func TestCheckConflictsFacultyScenario(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	conflicts := d.CheckConflicts(grid, "Monday", "7:00-7:55", testCourse("CS303", "1"), testRoom("B201", 80))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictFaculty, conflicts[0].Type)
	assert.Equal(t, SeverityCritical, conflicts[0].Severity)
	require.NotNil(t, conflicts[0].Course)
	assert.Equal(t, "CS101", conflicts[0].Course.Code)
}

// Scenario C: once CS101 is deleted, both prior placements come back clean.
func TestCheckConflictsClearAfterDelete(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	grid := NewGrid(DefaultCalendar()).
		Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60)).
		Remove("Monday", "7:00-7:55")

	assert.Empty(t, d.CheckConflicts(grid, "Monday", "7:00-7:55", testCourse("CS202", "2"), testRoom("A101", 60)))
	assert.Empty(t, d.CheckConflicts(grid, "Monday", "7:00-7:55", testCourse("CS303", "1"), testRoom("B201", 80)))
}

// Detection is symmetric: whichever of the pair is probed reports the other.
func TestCheckConflictsSymmetry(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	c1 := testCourse("CS101", "1")
	c2 := testCourse("CS202", "2")
	room := testRoom("A101", 60)

	gridWithC1 := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", c1, room)
	gridWithC2 := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", c2, room)

	fromC2 := d.CheckConflicts(gridWithC1, "Monday", "7:00-7:55", c2, room)
	require.Len(t, fromC2, 1)
	assert.Equal(t, "CS101", fromC2[0].Course.Code)

	fromC1 := d.CheckConflicts(gridWithC2, "Monday", "7:00-7:55", c1, room)
	require.Len(t, fromC1, 1)
	assert.Equal(t, "CS202", fromC1[0].Course.Code)
}

// A two-period course at slot i collides with a course at slot i+1 in the
// same room.
func TestCheckConflictsDurationOverlap(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	room := testRoom("A101", 60)

	long := testCourse("CS101", "1")
	long.Duration = 2
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", long, room)

	conflicts := d.CheckConflicts(grid, "Monday", "8:00-8:55", testCourse("CS202", "2"), room)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRoomOverlap, conflicts[0].Type)
	assert.Equal(t, SeverityCritical, conflicts[0].Severity)
	assert.Equal(t, "CS101", conflicts[0].Course.Code)

	// Same faculty, different room: faculty overlap instead.
	conflicts = d.CheckConflicts(grid, "Monday", "8:00-8:55", testCourse("CS303", "1"), testRoom("B201", 80))
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictFacultyOverlap, conflicts[0].Type)

	// One slot further there is no overlap.
	assert.Empty(t, d.CheckConflicts(grid, "Monday", "9:00-9:55", testCourse("CS202", "2"), room))
}

// Overlap applies in the other direction too: dropping a long course under an
// existing later assignment.
func TestCheckConflictsOverlapBothDirections(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	room := testRoom("A101", 60)
	grid := NewGrid(DefaultCalendar()).Place("Monday", "8:00-8:55", testCourse("CS202", "2"), room)

	long := testCourse("CS101", "1")
	long.Duration = 2
	conflicts := d.CheckConflicts(grid, "Monday", "7:00-7:55", long, room)
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictRoomOverlap, conflicts[0].Type)
}

func TestCheckConflictsDeduplicates(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	room := testRoom("A101", 60)
	// Same faculty AND same room at the exact slot: two distinct conflict
	// types but no duplicated tuples.
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), room)

	conflicts := d.CheckConflicts(grid, "Monday", "7:00-7:55", testCourse("CS303", "1"), room)
	require.Len(t, conflicts, 2)
	seen := make(map[ConflictType]int)
	for _, c := range conflicts {
		seen[c.Type]++
	}
	assert.Equal(t, 1, seen[ConflictRoom])
	assert.Equal(t, 1, seen[ConflictFaculty])
}

func TestCheckConflictsUnknownCell(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	grid := NewGrid(DefaultCalendar())

	conflicts := d.CheckConflicts(grid, "Sunday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))
	require.Len(t, conflicts, 1)
	assert.Equal(t, SeverityCritical, conflicts[0].Severity)
}

func TestValidatePlacementSplitsSeverities(t *testing.T) {
	d := NewDetector(DefaultCalendar())
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	blocked := d.ValidatePlacement(grid, "Monday", "7:00-7:55", testCourse("CS202", "2"), testRoom("A101", 60))
	assert.False(t, blocked.IsValid)
	assert.False(t, blocked.CanPlace)
	assert.Len(t, blocked.CriticalConflicts, 1)
	assert.Empty(t, blocked.Warnings)

	clean := d.ValidatePlacement(grid, "Tuesday", "7:00-7:55", testCourse("CS202", "2"), testRoom("A101", 60))
	assert.True(t, clean.IsValid)
	assert.True(t, clean.CanPlace)
	assert.Empty(t, clean.CriticalConflicts)
}

func TestLegacyFacultyID(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
	}{
		{"normalized", map[string]any{"facultyId": "f-1"}, "f-1"},
		{"teacherId alias", map[string]any{"teacherId": "t-2"}, "t-2"},
		{"nested faculty", map[string]any{"faculty": map[string]any{"id": "f-3"}}, "f-3"},
		{"nested teacher", map[string]any{"teacher": map[string]any{"id": "t-4"}}, "t-4"},
		{"nested instructor", map[string]any{"instructor": map[string]any{"id": "i-5"}}, "i-5"},
		{"facultyId wins over aliases", map[string]any{"facultyId": "f-1", "teacherId": "t-2"}, "f-1"},
		{"empty record", map[string]any{}, ""},
		{"non-string id", map[string]any{"teacherId": 7}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LegacyFacultyID(tc.record))
		})
	}
}
