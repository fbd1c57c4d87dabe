package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *ResourceValidator {
	return NewResourceValidator(DefaultCalendar(), 0)
}

// Scenario D: batch of 65 against a room of capacity 60 is critical.
func TestCheckCapacityCritical(t *testing.T) {
	v := newValidator()
	course := testCourse("CS101", "1")
	course.BatchSize = 65

	result := v.CheckCapacity(course, testRoom("A101", 60))
	assert.False(t, result.IsValid)
	assert.Equal(t, SeverityCritical, result.Severity)
	assert.NotEmpty(t, result.SuggestedActions)
}

func TestCheckCapacityThresholds(t *testing.T) {
	v := newValidator()
	tests := []struct {
		name      string
		batchSize int
		capacity  int
		valid     bool
		severity  Severity
	}{
		{"well under", 40, 60, true, ""},
		{"over 80 percent", 50, 60, false, SeverityWarning},
		{"at 90 percent floor", 54, 60, false, SeverityWarning},
		{"above 90 percent floor", 55, 60, false, SeverityCritical},
		{"unknown capacity imposes nothing", 100, 0, true, ""},
		{"unknown batch imposes nothing", 0, 10, true, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			course := testCourse("CS101", "1")
			course.BatchSize = tc.batchSize
			result := v.CheckCapacity(course, testRoom("A101", tc.capacity))
			assert.Equal(t, tc.valid, result.IsValid)
			if !tc.valid {
				assert.Equal(t, tc.severity, result.Severity)
			}
		})
	}
}

func TestCheckFacilities(t *testing.T) {
	v := newValidator()
	course := testCourse("CS101", "1")
	course.RequiredFacilities = []string{"Projector", "Lab PCs"}

	room := testRoom("A101", 60)
	room.Facilities = []string{"projector"}

	result := v.CheckFacilities(course, room)
	assert.False(t, result.IsValid)
	assert.Equal(t, SeverityWarning, result.Severity, "missing facilities warn, never block")
	assert.True(t, strings.Contains(result.Message, "Lab PCs"))

	room.Facilities = []string{"Projector", "lab pcs", "AC"}
	assert.True(t, v.CheckFacilities(course, room).IsValid)

	// A room with no facility list passes vacuously when nothing is required.
	plain := testCourse("MA201", "2")
	assert.True(t, v.CheckFacilities(plain, testRoom("B201", 80)).IsValid)
}

func TestCheckBatchDoubleBooking(t *testing.T) {
	v := newValidator()
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	other := testCourse("MA201", "2") // same batch-1 per fixture
	result := v.CheckBatch(grid, "Monday", "7:00-7:55", other)
	assert.False(t, result.IsValid)
	assert.Equal(t, SeverityCritical, result.Severity)

	// Different batch is fine, as is the same course or a missing batch id.
	foreign := testCourse("EE101", "3")
	foreign.BatchID = "batch-2"
	assert.True(t, v.CheckBatch(grid, "Monday", "7:00-7:55", foreign).IsValid)
	assert.True(t, v.CheckBatch(grid, "Monday", "7:00-7:55", testCourse("CS101", "1")).IsValid)

	anon := testCourse("CH101", "4")
	anon.BatchID = ""
	assert.True(t, v.CheckBatch(grid, "Monday", "7:00-7:55", anon).IsValid)
}

func TestCheckBreakTimeAdvisory(t *testing.T) {
	v := newValidator()
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	result := v.CheckBreakTime(grid, "Monday", "8:00-8:55")
	assert.True(t, result.IsValid, "break time never blocks")
	assert.Equal(t, SeverityInfo, result.Severity)
	assert.NotEmpty(t, result.SuggestedActions)

	assert.Empty(t, v.CheckBreakTime(grid, "Monday", "10:00-10:55").Message)
	assert.Empty(t, v.CheckBreakTime(grid, "Tuesday", "8:00-8:55").Message)
}

func TestCheckWorkloadCeiling(t *testing.T) {
	v := NewResourceValidator(DefaultCalendar(), 4)
	grid := NewGrid(DefaultCalendar())
	room := testRoom("A101", 60)
	long := testCourse("CS101", "1")
	long.Duration = 2
	grid = grid.
		Place("Monday", "7:00-7:55", long, room).
		Place("Tuesday", "7:00-7:55", testCourse("CS102", "1"), room).
		Place("Wednesday", "7:00-7:55", testCourse("CS103", "1"), room)

	// 2+1+1 existing plus 1 proposed = 5 > 4.
	result := v.CheckWorkload(grid, Faculty{}, "1", 1)
	assert.False(t, result.IsValid)
	assert.Equal(t, SeverityWarning, result.Severity)
	assert.Contains(t, result.Message, "5 weekly hours")
	assert.Contains(t, result.Message, "Monday 7:00-7:55")

	assert.True(t, v.CheckWorkload(grid, Faculty{}, "2", 1).IsValid)
	assert.True(t, v.CheckWorkload(grid, Faculty{}, "", 1).IsValid)
}

func TestCheckWorkloadPerFacultyCeiling(t *testing.T) {
	v := NewResourceValidator(DefaultCalendar(), 20)
	room := testRoom("A101", 60)
	grid := NewGrid(DefaultCalendar()).
		Place("Monday", "7:00-7:55", testCourse("CS101", "1"), room).
		Place("Tuesday", "7:00-7:55", testCourse("CS102", "1"), room)

	// MaxWeekly overrides the session ceiling: 2 taught + 1 proposed = 3 > 2.
	fac := Faculty{ID: "1", Name: "Prof. 1", MaxWeekly: 2}
	result := v.CheckWorkload(grid, fac, "1", 1)
	assert.False(t, result.IsValid)
	assert.Equal(t, SeverityWarning, result.Severity)
	assert.Contains(t, result.Message, "ceiling of 2")

	// And the warning surfaces through the aggregate report.
	report := v.ValidateAll(grid, "Wednesday", "9:00-9:55", testCourse("CS103", "1"), room, fac)
	var sawWorkload bool
	for _, w := range report.Warnings {
		if w.Type == ConflictWorkload {
			sawWorkload = true
		}
	}
	assert.True(t, sawWorkload)

	// A zero MaxWeekly leaves the session ceiling in force.
	assert.True(t, v.CheckWorkload(grid, Faculty{ID: "1"}, "1", 1).IsValid)
}

func TestCheckAvailability(t *testing.T) {
	v := newValidator()
	fac := Faculty{
		ID:   "1",
		Name: "Prof. 1",
		Availability: []CellRef{
			{Day: "Monday", Slot: "7:00-7:55"},
			{Day: "Tuesday", Slot: "8:00-8:55"},
		},
	}

	assert.True(t, v.CheckAvailability(fac, "Monday", "7:00-7:55").IsValid)

	result := v.CheckAvailability(fac, "Friday", "7:00-7:55")
	assert.False(t, result.IsValid)
	assert.Equal(t, SeverityCritical, result.Severity)

	// No availability list means unconstrained, including the zero value a
	// directory miss produces.
	assert.True(t, v.CheckAvailability(Faculty{ID: "2"}, "Friday", "7:00-7:55").IsValid)
	assert.True(t, v.CheckAvailability(Faculty{}, "Friday", "7:00-7:55").IsValid)
}

func TestValidateAllAggregates(t *testing.T) {
	v := NewResourceValidator(DefaultCalendar(), 20)
	grid := NewGrid(DefaultCalendar()).Place("Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60))

	course := testCourse("MA201", "2") // same batch as the occupant
	course.BatchSize = 58
	room := testRoom("A101", 60)
	fac := Faculty{ID: "2", Availability: []CellRef{{Day: "Tuesday", Slot: "7:00-7:55"}}}

	report := v.ValidateAll(grid, "Monday", "7:00-7:55", course, room, fac)
	assert.False(t, report.IsValid)

	critical := make(map[ConflictType]bool)
	for _, c := range report.Conflicts {
		require.Equal(t, SeverityCritical, c.Severity)
		critical[c.Type] = true
	}
	assert.True(t, critical[ConflictCapacity])
	assert.True(t, critical[ConflictBatch])
	assert.True(t, critical[ConflictAvailability])

	// And a fully clean placement.
	clean := v.ValidateAll(NewGrid(DefaultCalendar()), "Monday", "7:00-7:55", testCourse("CS101", "1"), testRoom("A101", 60), Faculty{})
	assert.True(t, clean.IsValid)
	assert.Empty(t, clean.Conflicts)
	assert.Empty(t, clean.Warnings)
}
