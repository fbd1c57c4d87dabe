package timetable

import (
	"fmt"
	"sort"
)

// SuggestionKind classifies a resolution action.
type SuggestionKind string

const (
	SuggestChangeRoom    SuggestionKind = "change_room"
	SuggestChangeFaculty SuggestionKind = "change_faculty"
	SuggestReschedule    SuggestionKind = "reschedule"
)

// Suggestion is one concrete way to resolve a reported conflict. Day/Slot
// identify the assignment being fixed; the remaining fields carry the
// replacement resource or target cell.
type Suggestion struct {
	Kind       SuggestionKind `json:"kind"`
	Day        string         `json:"day"`
	Slot       string         `json:"slot"`
	TargetDay  string         `json:"target_day,omitempty"`
	TargetSlot string         `json:"target_slot,omitempty"`
	Room       *Room          `json:"room,omitempty"`
	Faculty    *Faculty       `json:"faculty,omitempty"`
	Message    string         `json:"message"`
}

// Resolver proposes alternative rooms, faculty or cells for a reported
// conflict by querying the session index, and can apply a chosen suggestion
// as a grid mutation.
type Resolver struct {
	cal *Calendar
}

// NewResolver builds a resolver over the given calendar.
func NewResolver(cal *Calendar) *Resolver {
	return &Resolver{cal: cal}
}

// Suggest returns a ranked suggestion list for conflict: free rooms at the
// slot for room conflicts, free faculty for faculty conflicts, and free cells
// elsewhere for either kind with same-day targets first.
func (r *Resolver) Suggest(g Grid, ix *Index, conflict Conflict, rooms []Room, faculty []Faculty) []Suggestion {
	var suggestions []Suggestion

	switch conflict.Type {
	case ConflictRoom, ConflictRoomOverlap, ConflictCapacity, ConflictFacilities:
		suggestions = append(suggestions, r.roomAlternatives(ix, conflict, rooms)...)
	case ConflictFaculty, ConflictFacultyOverlap, ConflictWorkload, ConflictAvailability:
		suggestions = append(suggestions, r.facultyAlternatives(ix, conflict, faculty)...)
	}

	suggestions = append(suggestions, r.rescheduleTargets(g, conflict)...)
	return suggestions
}

func (r *Resolver) roomAlternatives(ix *Index, conflict Conflict, rooms []Room) []Suggestion {
	sorted := append([]Room(nil), rooms...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var out []Suggestion
	for _, room := range sorted {
		if conflict.Course != nil && room.ID == conflict.Course.RoomID {
			continue
		}
		if !ix.RoomFree(room.ID, conflict.Day, conflict.Slot) {
			continue
		}
		candidate := room
		out = append(out, Suggestion{
			Kind:    SuggestChangeRoom,
			Day:     conflict.Day,
			Slot:    conflict.Slot,
			Room:    &candidate,
			Message: fmt.Sprintf("move to room %s, free at %s %s", room.ID, conflict.Day, conflict.Slot),
		})
	}
	return out
}

func (r *Resolver) facultyAlternatives(ix *Index, conflict Conflict, faculty []Faculty) []Suggestion {
	sorted := append([]Faculty(nil), faculty...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var out []Suggestion
	for _, fac := range sorted {
		if conflict.Course != nil && fac.ID == conflict.Course.FacultyID {
			continue
		}
		if !ix.FacultyFree(fac.ID, conflict.Day, conflict.Slot) {
			continue
		}
		candidate := fac
		out = append(out, Suggestion{
			Kind:    SuggestChangeFaculty,
			Day:     conflict.Day,
			Slot:    conflict.Slot,
			Faculty: &candidate,
			Message: fmt.Sprintf("reassign to %s, free at %s %s", fac.Name, conflict.Day, conflict.Slot),
		})
	}
	return out
}

// rescheduleTargets enumerates free cells the conflicted assignment could
// actually move into, prioritizing the conflict's own day before the rest of
// the week. Cells where the move would recreate a room or faculty collision
// are filtered out through the detector.
func (r *Resolver) rescheduleTargets(g Grid, conflict Conflict) []Suggestion {
	free := g.FreeCells()
	sort.SliceStable(free, func(i, j int) bool {
		if (free[i].Day == conflict.Day) != (free[j].Day == conflict.Day) {
			return free[i].Day == conflict.Day
		}
		return false
	})

	var (
		detector *Detector
		course   Course
		room     Room
		rest     Grid
	)
	if occupant := g.At(conflict.Day, conflict.Slot); occupant != nil {
		detector = NewDetector(r.cal)
		course = courseFromAssignment(*occupant)
		room = Room{ID: occupant.RoomID, Name: occupant.RoomName}
		rest = g.Remove(conflict.Day, conflict.Slot)
	}

	var out []Suggestion
	for _, cell := range free {
		if cell.Day == conflict.Day && cell.Slot == conflict.Slot {
			continue
		}
		if detector != nil && !detector.ValidatePlacement(rest, cell.Day, cell.Slot, course, room).CanPlace {
			continue
		}
		out = append(out, Suggestion{
			Kind:       SuggestReschedule,
			Day:        conflict.Day,
			Slot:       conflict.Slot,
			TargetDay:  cell.Day,
			TargetSlot: cell.Slot,
			Message:    fmt.Sprintf("reschedule to %s %s", cell.Day, cell.Slot),
		})
	}
	return out
}

// Apply performs the grid mutation a suggestion describes and returns the new
// grid. It does not re-validate; callers must re-run the conflict detector
// against the result.
func (r *Resolver) Apply(g Grid, s Suggestion) (Grid, error) {
	occupant := g.At(s.Day, s.Slot)
	if occupant == nil {
		return g, fmt.Errorf("no assignment at %s %s", s.Day, s.Slot)
	}
	course := courseFromAssignment(*occupant)

	switch s.Kind {
	case SuggestChangeRoom:
		if s.Room == nil {
			return g, fmt.Errorf("change_room suggestion carries no room")
		}
		return g.Move(s.Day, s.Slot, s.Day, s.Slot, course, *s.Room), nil
	case SuggestChangeFaculty:
		if s.Faculty == nil {
			return g, fmt.Errorf("change_faculty suggestion carries no faculty")
		}
		course.FacultyID = s.Faculty.ID
		course.FacultyName = s.Faculty.Name
		room := Room{ID: occupant.RoomID, Name: occupant.RoomName}
		return g.Move(s.Day, s.Slot, s.Day, s.Slot, course, room), nil
	case SuggestReschedule:
		if !r.cal.HasCell(s.TargetDay, s.TargetSlot) {
			return g, fmt.Errorf("invalid reschedule target %s %s", s.TargetDay, s.TargetSlot)
		}
		room := Room{ID: occupant.RoomID, Name: occupant.RoomName}
		return g.Move(s.Day, s.Slot, s.TargetDay, s.TargetSlot, course, room), nil
	default:
		return g, fmt.Errorf("unknown suggestion kind %q", s.Kind)
	}
}
