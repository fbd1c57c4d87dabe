package timetable

import (
	"fmt"
	"sort"
)

// Index holds derived lookup maps over a grid: room → occupied slot keys,
// faculty → occupied slot keys, slot key → assignment. It is always a pure
// function of the grid it tracks; each editing session owns its own instance
// so independent timetables can never interfere through shared state.
type Index struct {
	rooms   map[string]map[string]struct{}
	faculty map[string]map[string]struct{}
	cells   map[string]CourseAssignment
}

// IndexDiscrepancy describes one divergence found by Validate.
type IndexDiscrepancy struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

const (
	discrepancyCountMismatch = "count_mismatch"
	discrepancyOrphaned      = "orphaned_entry"
	discrepancyMissing       = "missing_entry"
)

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		rooms:   make(map[string]map[string]struct{}),
		faculty: make(map[string]map[string]struct{}),
		cells:   make(map[string]CourseAssignment),
	}
}

// SlotKey composes the day+slot key used across all index maps.
func SlotKey(day, slot string) string {
	return day + "|" + slot
}

// Build clears and repopulates all three maps in one pass over the grid.
// Used on load, after undo/redo restores, and as divergence recovery.
func (ix *Index) Build(g Grid) {
	ix.rooms = make(map[string]map[string]struct{})
	ix.faculty = make(map[string]map[string]struct{})
	ix.cells = make(map[string]CourseAssignment)
	for _, a := range g.Assignments() {
		ix.add(a)
	}
}

// Update applies one committed cell mutation incrementally: the old occupant's
// entries are removed and the new occupant's entries added. Callers must
// invoke it on every commit so the hot path never needs a rebuild.
func (ix *Index) Update(day, slot string, old, next *CourseAssignment) {
	key := SlotKey(day, slot)
	if old != nil {
		removeMember(ix.rooms, old.RoomID, key)
		removeMember(ix.faculty, old.FacultyID, key)
		delete(ix.cells, key)
	}
	if next != nil {
		dup := *next
		dup.Day = day
		dup.Slot = slot
		ix.add(dup)
	}
}

func (ix *Index) add(a CourseAssignment) {
	key := SlotKey(a.Day, a.Slot)
	addMember(ix.rooms, a.RoomID, key)
	addMember(ix.faculty, a.FacultyID, key)
	ix.cells[key] = a
}

// OccupantAt returns the indexed assignment at (day, slot), if any.
func (ix *Index) OccupantAt(day, slot string) (CourseAssignment, bool) {
	a, ok := ix.cells[SlotKey(day, slot)]
	return a, ok
}

// RoomFree reports whether room has no indexed occupancy at (day, slot).
func (ix *Index) RoomFree(roomID, day, slot string) bool {
	_, taken := ix.rooms[roomID][SlotKey(day, slot)]
	return !taken
}

// FacultyFree reports whether faculty has no indexed occupancy at (day, slot).
func (ix *Index) FacultyFree(facultyID, day, slot string) bool {
	_, taken := ix.faculty[facultyID][SlotKey(day, slot)]
	return !taken
}

// FacultySlotKeys returns the occupied slot keys for a faculty id, sorted.
func (ix *Index) FacultySlotKeys(facultyID string) []string {
	keys := make([]string, 0, len(ix.faculty[facultyID]))
	for key := range ix.faculty[facultyID] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CheckFast performs the O(1) membership variant of conflict detection: if
// the target slot key already appears in the room's or faculty's occupancy
// set under a different course code, a critical conflict referencing the
// occupant is emitted.
func (ix *Index) CheckFast(day, slot string, course Course, room Room) []Conflict {
	key := SlotKey(day, slot)
	var conflicts []Conflict

	if _, taken := ix.rooms[room.ID][key]; taken {
		if occupant, ok := ix.cells[key]; ok && occupant.Code != course.Code && occupant.RoomID == room.ID {
			ref := occupant
			conflicts = append(conflicts, Conflict{
				Type:     ConflictRoom,
				Severity: SeverityCritical,
				Day:      day,
				Slot:     slot,
				Message:  fmt.Sprintf("room %s is already occupied by %s at %s %s", room.ID, occupant.Code, day, slot),
				Course:   &ref,
			})
		}
	}
	if course.FacultyID != "" {
		if _, taken := ix.faculty[course.FacultyID][key]; taken {
			if occupant, ok := ix.cells[key]; ok && occupant.Code != course.Code && occupant.FacultyID == course.FacultyID {
				ref := occupant
				conflicts = append(conflicts, Conflict{
					Type:     ConflictFaculty,
					Severity: SeverityCritical,
					Day:      day,
					Slot:     slot,
					Message:  fmt.Sprintf("faculty %s already teaches %s at %s %s", course.FacultyID, occupant.Code, day, slot),
					Course:   &ref,
				})
			}
		}
	}
	return conflicts
}

// Validate recomputes a fresh index from the grid and diffs it against the
// live maps. It is a diagnostic, never part of the hot path; a non-empty
// result means a missed Update call somewhere, and the recommended recovery
// is a full Build from the authoritative grid.
func (ix *Index) Validate(g Grid) []IndexDiscrepancy {
	fresh := NewIndex()
	fresh.Build(g)

	var out []IndexDiscrepancy
	if len(fresh.cells) != len(ix.cells) {
		out = append(out, IndexDiscrepancy{
			Kind:   discrepancyCountMismatch,
			Detail: fmt.Sprintf("index tracks %d cells, grid holds %d", len(ix.cells), len(fresh.cells)),
		})
	}
	for key, a := range ix.cells {
		expected, ok := fresh.cells[key]
		if !ok {
			out = append(out, IndexDiscrepancy{
				Kind:   discrepancyOrphaned,
				Detail: fmt.Sprintf("index holds %s at %s but the grid cell is empty", a.Code, key),
			})
			continue
		}
		if expected != a {
			out = append(out, IndexDiscrepancy{
				Kind:   discrepancyOrphaned,
				Detail: fmt.Sprintf("index holds %s at %s but the grid holds %s", a.Code, key, expected.Code),
			})
		}
	}
	for key, a := range fresh.cells {
		if _, ok := ix.cells[key]; !ok {
			out = append(out, IndexDiscrepancy{
				Kind:   discrepancyMissing,
				Detail: fmt.Sprintf("grid holds %s at %s but the index has no entry", a.Code, key),
			})
		}
	}
	out = append(out, diffOccupancy("room", fresh.rooms, ix.rooms)...)
	out = append(out, diffOccupancy("faculty", fresh.faculty, ix.faculty)...)
	return out
}

func diffOccupancy(label string, fresh, live map[string]map[string]struct{}) []IndexDiscrepancy {
	var out []IndexDiscrepancy
	for id, keys := range live {
		for key := range keys {
			if _, ok := fresh[id][key]; !ok {
				out = append(out, IndexDiscrepancy{
					Kind:   discrepancyOrphaned,
					Detail: fmt.Sprintf("%s %s indexed at %s without a matching grid cell", label, id, key),
				})
			}
		}
	}
	for id, keys := range fresh {
		for key := range keys {
			if _, ok := live[id][key]; !ok {
				out = append(out, IndexDiscrepancy{
					Kind:   discrepancyMissing,
					Detail: fmt.Sprintf("%s %s occupies %s but is not indexed", label, id, key),
				})
			}
		}
	}
	return out
}

func addMember(set map[string]map[string]struct{}, id, key string) {
	if id == "" {
		return
	}
	if set[id] == nil {
		set[id] = make(map[string]struct{})
	}
	set[id][key] = struct{}{}
}

func removeMember(set map[string]map[string]struct{}, id, key string) {
	if members, ok := set[id]; ok {
		delete(members, key)
		if len(members) == 0 {
			delete(set, id)
		}
	}
}
