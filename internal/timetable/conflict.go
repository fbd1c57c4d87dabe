package timetable

import "fmt"

// Detector performs full conflict detection for a proposed placement. It is
// the single validation gate in front of the grid primitives, which by design
// accept anything within the calendar.
type Detector struct {
	cal *Calendar
}

// NewDetector builds a detector over the given calendar.
func NewDetector(cal *Calendar) *Detector {
	return &Detector{cal: cal}
}

// PlacementCheck is the aggregate verdict for one proposed placement.
// IsValid and CanPlace are true iff no critical conflict was found; warnings
// never block.
type PlacementCheck struct {
	IsValid           bool       `json:"is_valid"`
	CanPlace          bool       `json:"can_place"`
	CriticalConflicts []Conflict `json:"critical_conflicts"`
	Warnings          []Conflict `json:"warnings"`
}

// CheckConflicts reports every room, faculty and time-overlap conflict that
// placing course into room at (day, slot) would create. Conflicts are
// deduplicated on (type, day, slot, conflicting course) so pairwise checks
// cannot double-report.
func (d *Detector) CheckConflicts(g Grid, day, slot string, course Course, room Room) []Conflict {
	if !d.cal.HasCell(day, slot) {
		return []Conflict{{
			Type:     ConflictRoom,
			Severity: SeverityCritical,
			Day:      day,
			Slot:     slot,
			Message:  fmt.Sprintf("%s %s is not a valid timetable cell", day, slot),
		}}
	}

	var conflicts []Conflict

	if occupant := g.At(day, slot); occupant != nil && occupant.Code != course.Code {
		if occupant.RoomID != "" && occupant.RoomID == room.ID {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictRoom,
				Severity: SeverityCritical,
				Day:      day,
				Slot:     slot,
				Message:  fmt.Sprintf("room %s is already occupied by %s at %s %s", room.ID, occupant.Code, day, slot),
				Course:   occupant,
				Suggestions: []string{
					"choose a different room",
					"move one of the courses to another slot",
				},
			})
		}
		if course.FacultyID != "" && occupant.FacultyID == course.FacultyID {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictFaculty,
				Severity: SeverityCritical,
				Day:      day,
				Slot:     slot,
				Message:  fmt.Sprintf("faculty %s already teaches %s at %s %s", course.FacultyID, occupant.Code, day, slot),
				Course:   occupant,
				Suggestions: []string{
					"assign a different faculty member",
					"reschedule one of the courses",
				},
			})
		}
	}

	conflicts = append(conflicts, d.overlapConflicts(g, day, slot, course, room)...)
	return dedupeConflicts(conflicts)
}

// overlapConflicts expands durations into minute ranges and scans the whole
// day, so a two-period course placed at slot i collides with anything in the
// same room or under the same faculty at slot i+1.
func (d *Detector) overlapConflicts(g Grid, day, slot string, course Course, room Room) []Conflict {
	newStart, newEnd, ok := d.cal.OccupiedMinutes(slot, course.Duration)
	if !ok {
		return nil
	}

	var conflicts []Conflict
	for _, other := range d.cal.slots {
		if other == slot {
			continue
		}
		occupant := g.At(day, other)
		if occupant == nil || occupant.Code == course.Code {
			continue
		}
		occStart, occEnd, ok := d.cal.OccupiedMinutes(other, occupant.Duration)
		if !ok {
			continue
		}
		if newStart >= occEnd || occStart >= newEnd {
			continue
		}
		if occupant.RoomID != "" && occupant.RoomID == room.ID {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictRoomOverlap,
				Severity: SeverityCritical,
				Day:      day,
				Slot:     slot,
				Message:  fmt.Sprintf("room %s is blocked by %s (%s, %d periods) overlapping %s", room.ID, occupant.Code, other, occupant.Duration, slot),
				Course:   occupant,
			})
		}
		if course.FacultyID != "" && occupant.FacultyID == course.FacultyID {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictFacultyOverlap,
				Severity: SeverityCritical,
				Day:      day,
				Slot:     slot,
				Message:  fmt.Sprintf("faculty %s is teaching %s (%s, %d periods) overlapping %s", course.FacultyID, occupant.Code, other, occupant.Duration, slot),
				Course:   occupant,
			})
		}
	}
	return conflicts
}

// ValidatePlacement wraps CheckConflicts into the blocking/advisory split
// consumed by the placement engine.
func (d *Detector) ValidatePlacement(g Grid, day, slot string, course Course, room Room) PlacementCheck {
	check := PlacementCheck{
		CriticalConflicts: []Conflict{},
		Warnings:          []Conflict{},
	}
	for _, conflict := range d.CheckConflicts(g, day, slot, course, room) {
		if conflict.IsCritical() {
			check.CriticalConflicts = append(check.CriticalConflicts, conflict)
		} else {
			check.Warnings = append(check.Warnings, conflict)
		}
	}
	check.IsValid = len(check.CriticalConflicts) == 0
	check.CanPlace = check.IsValid
	return check
}

func dedupeConflicts(conflicts []Conflict) []Conflict {
	if len(conflicts) < 2 {
		return conflicts
	}
	seen := make(map[string]struct{}, len(conflicts))
	out := conflicts[:0]
	for _, c := range conflicts {
		code := ""
		if c.Course != nil {
			code = c.Course.Code
		}
		key := string(c.Type) + "|" + c.Day + "|" + c.Slot + "|" + code
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
