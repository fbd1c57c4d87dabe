package timetable

// ConflictType classifies why a placement collides with existing state.
type ConflictType string

const (
	ConflictRoom           ConflictType = "room"
	ConflictFaculty        ConflictType = "faculty"
	ConflictRoomOverlap    ConflictType = "room_overlap"
	ConflictFacultyOverlap ConflictType = "faculty_overlap"
	ConflictBatch          ConflictType = "batch_conflict"
	ConflictBreakTime      ConflictType = "break_time"
	ConflictCapacity       ConflictType = "capacity"
	ConflictFacilities     ConflictType = "facilities"
	ConflictWorkload       ConflictType = "workload"
	ConflictAvailability   ConflictType = "availability"
)

// Severity grades a conflict. Only critical conflicts block placement.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Course is a catalog entry offered for placement. Directory collaborators
// supply it; the core never mutates it.
type Course struct {
	Code               string   `json:"code"`
	Title              string   `json:"title"`
	WeeklyHours        string   `json:"weekly_hours"`
	Duration           int      `json:"duration"`
	FacultyID          string   `json:"faculty_id"`
	FacultyName        string   `json:"faculty_name"`
	BatchID            string   `json:"batch_id"`
	BatchSize          int      `json:"batch_size"`
	RequiredFacilities []string `json:"required_facilities,omitempty"`
}

// Room describes a physical room, read-only to the core.
type Room struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Capacity   int      `json:"capacity"`
	Type       string   `json:"type"`
	Facilities []string `json:"facilities,omitempty"`
}

// CellRef identifies one (day, slot) cell.
type CellRef struct {
	Day  string `json:"day"`
	Slot string `json:"slot"`
}

// Faculty describes an instructor, read-only to the core. An empty
// Availability list means unconstrained; a positive MaxWeekly caps the
// instructor's weekly teaching hours ahead of the session-wide ceiling.
type Faculty struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Availability []CellRef `json:"availability,omitempty"`
	MaxWeekly    int       `json:"max_weekly_hours,omitempty"`
}

// CourseAssignment is a course placed into one grid cell, with room and
// faculty denormalized onto it for display. Day and Slot mirror the owning
// cell; moving an assignment is always remove-then-place, never an in-place
// rewrite of these fields.
type CourseAssignment struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	WeeklyHours string `json:"weekly_hours"`
	Duration    int    `json:"duration"`
	RoomID      string `json:"room_id"`
	RoomName    string `json:"room_name"`
	FacultyID   string `json:"faculty_id"`
	FacultyName string `json:"faculty_name"`
	BatchID     string `json:"batch_id"`
	BatchSize   int    `json:"batch_size"`
	Day         string `json:"day"`
	Slot        string `json:"slot"`
}

// Conflict is derived validation output, never stored with the grid.
type Conflict struct {
	Type        ConflictType      `json:"type"`
	Severity    Severity          `json:"severity"`
	Day         string            `json:"day"`
	Slot        string            `json:"slot"`
	Message     string            `json:"message"`
	Course      *CourseAssignment `json:"course,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// IsCritical reports whether the conflict must block placement.
func (c Conflict) IsCritical() bool {
	return c.Severity == SeverityCritical
}

// LegacyFacultyID resolves the faculty identifier from an external record
// that may use any of the historical field aliases. It exists only as an
// ingestion shim; inside the core the normalized FacultyID field is the one
// notion of "the" faculty id.
func LegacyFacultyID(record map[string]any) string {
	for _, key := range []string{"facultyId", "teacherId"} {
		if id, ok := stringField(record, key); ok {
			return id
		}
	}
	for _, key := range []string{"faculty", "teacher", "instructor"} {
		nested, ok := record[key].(map[string]any)
		if !ok {
			continue
		}
		if id, ok := stringField(nested, "id"); ok {
			return id
		}
	}
	return ""
}

func stringField(record map[string]any, key string) (string, bool) {
	value, ok := record[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
