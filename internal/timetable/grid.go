package timetable

import "encoding/json"

// Grid is the full timetable: day × slot → optional CourseAssignment. Every
// (day, slot) cell from the calendar always exists; its value is either an
// assignment or nil. All mutating operations are pure and return a new Grid,
// which is what keeps undo snapshots and incremental index updates honest.
type Grid struct {
	cal   *Calendar
	cells map[string]map[string]*CourseAssignment
}

// NewGrid returns a grid with every cell empty.
func NewGrid(cal *Calendar) Grid {
	cells := make(map[string]map[string]*CourseAssignment, len(cal.days))
	for _, day := range cal.days {
		row := make(map[string]*CourseAssignment, len(cal.slots))
		for _, slot := range cal.slots {
			row[slot] = nil
		}
		cells[day] = row
	}
	return Grid{cal: cal, cells: cells}
}

// Calendar returns the calendar the grid was built from.
func (g Grid) Calendar() *Calendar {
	return g.cal
}

// At returns the assignment occupying (day, slot), or nil.
func (g Grid) At(day, slot string) *CourseAssignment {
	row, ok := g.cells[day]
	if !ok {
		return nil
	}
	if a := row[slot]; a != nil {
		clone := *a
		return &clone
	}
	return nil
}

// Place returns a new grid with (day, slot) set to a denormalized assignment
// built from course and room. Unknown cells are a silent no-op; the conflict
// detector is the validation gate, not this primitive.
func (g Grid) Place(day, slot string, course Course, room Room) Grid {
	if !g.cal.HasCell(day, slot) {
		return g
	}
	duration := course.Duration
	if duration < 1 {
		duration = 1
	}
	next := g.Clone()
	next.cells[day][slot] = &CourseAssignment{
		Code:        course.Code,
		Title:       course.Title,
		WeeklyHours: course.WeeklyHours,
		Duration:    duration,
		RoomID:      room.ID,
		RoomName:    room.Name,
		FacultyID:   course.FacultyID,
		FacultyName: course.FacultyName,
		BatchID:     course.BatchID,
		BatchSize:   course.BatchSize,
		Day:         day,
		Slot:        slot,
	}
	return next
}

// Remove returns a new grid with (day, slot) emptied. No-op when the cell is
// unknown or already empty.
func (g Grid) Remove(day, slot string) Grid {
	if !g.cal.HasCell(day, slot) {
		return g
	}
	if g.cells[day][slot] == nil {
		return g
	}
	next := g.Clone()
	next.cells[day][slot] = nil
	return next
}

// Move relocates a placement as one logical remove-then-place unit; the
// intermediate empty state is never observable by callers.
func (g Grid) Move(fromDay, fromSlot, toDay, toSlot string, course Course, room Room) Grid {
	return g.Remove(fromDay, fromSlot).Place(toDay, toSlot, course, room)
}

// Clone is a total structural deep copy; mutating the result never affects
// the receiver or any snapshot taken from it.
func (g Grid) Clone() Grid {
	cells := make(map[string]map[string]*CourseAssignment, len(g.cells))
	for day, row := range g.cells {
		copied := make(map[string]*CourseAssignment, len(row))
		for slot, a := range row {
			if a == nil {
				copied[slot] = nil
				continue
			}
			dup := *a
			copied[slot] = &dup
		}
		cells[day] = copied
	}
	return Grid{cal: g.cal, cells: cells}
}

// Equal reports whether two grids hold identical assignments cell by cell.
func (g Grid) Equal(other Grid) bool {
	for day, row := range g.cells {
		otherRow, ok := other.cells[day]
		if !ok || len(row) != len(otherRow) {
			return false
		}
		for slot, a := range row {
			b, ok := otherRow[slot]
			if !ok {
				return false
			}
			switch {
			case a == nil && b == nil:
			case a == nil || b == nil:
				return false
			case *a != *b:
				return false
			}
		}
	}
	return len(g.cells) == len(other.cells)
}

// Assignments returns every non-empty cell in calendar order.
func (g Grid) Assignments() []CourseAssignment {
	var out []CourseAssignment
	for _, day := range g.cal.days {
		for _, slot := range g.cal.slots {
			if a := g.cells[day][slot]; a != nil {
				out = append(out, *a)
			}
		}
	}
	return out
}

// FreeCells returns every empty cell in calendar order.
func (g Grid) FreeCells() []CellRef {
	var out []CellRef
	for _, day := range g.cal.days {
		for _, slot := range g.cal.slots {
			if g.cells[day][slot] == nil {
				out = append(out, CellRef{Day: day, Slot: slot})
			}
		}
	}
	return out
}

// MarshalJSON renders the persistence wire shape {day: {slot: assignment|null}}.
func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.cells)
}

// DecodeGrid rebuilds a grid from its wire shape. Cells absent from the
// payload come back empty; cells outside the calendar are dropped.
func DecodeGrid(cal *Calendar, data []byte) (Grid, error) {
	var wire map[string]map[string]*CourseAssignment
	if err := json.Unmarshal(data, &wire); err != nil {
		return Grid{}, err
	}
	grid := NewGrid(cal)
	for day, row := range wire {
		for slot, a := range row {
			if a == nil || !cal.HasCell(day, slot) {
				continue
			}
			dup := *a
			dup.Day = day
			dup.Slot = slot
			if dup.Duration < 1 {
				dup.Duration = 1
			}
			grid.cells[day][slot] = &dup
		}
	}
	return grid, nil
}
