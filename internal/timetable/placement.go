package timetable

import (
	"fmt"
	"sort"
)

// Phase is the placement engine's drag lifecycle state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseDragging Phase = "dragging"
	PhaseDragOver Phase = "drag_over"
)

// Action tags recorded in history entries.
const (
	ActionLoad        = "load"
	ActionPlace       = "place"
	ActionMove        = "move"
	ActionRemove      = "remove"
	ActionAutoArrange = "auto_arrange"
	ActionSuggestion  = "apply_suggestion"
)

// Directory is the read-only room and faculty lookup the engine validates
// against. Entries absent from it degrade to unconstrained records.
type Directory struct {
	Rooms   map[string]Room
	Faculty map[string]Faculty
}

// NewDirectory indexes flat room and faculty lists by id.
func NewDirectory(rooms []Room, faculty []Faculty) Directory {
	dir := Directory{
		Rooms:   make(map[string]Room, len(rooms)),
		Faculty: make(map[string]Faculty, len(faculty)),
	}
	for _, r := range rooms {
		dir.Rooms[r.ID] = r
	}
	for _, f := range faculty {
		dir.Faculty[f.ID] = f
	}
	return dir
}

// Room resolves a room id, falling back to a bare record for ids the
// directory does not know.
func (d Directory) Room(id string) Room {
	if r, ok := d.Rooms[id]; ok {
		return r
	}
	return Room{ID: id, Name: id}
}

// FacultyByID resolves a faculty id; the zero value means unconstrained.
func (d Directory) FacultyByID(id string) Faculty {
	return d.Faculty[id]
}

// EngineConfig tunes one editing session.
type EngineConfig struct {
	WorkloadCeiling int
	HistoryLimit    int
}

// Engine orchestrates drag/drop placement over a single grid: it validates
// through the detector and resource validator, commits to the grid, keeps the
// index incrementally consistent, snapshots history and maintains the running
// conflict list scoped to the cells each commit touched. One engine per
// editing session; it is not safe for concurrent use.
type Engine struct {
	cal       *Calendar
	grid      Grid
	index     *Index
	detector  *Detector
	resources *ResourceValidator
	history   *History
	dir       Directory
	conflicts []Conflict
	drag      *dragState
}

type dragState struct {
	course Course
	room   Room
	from   *CellRef
	hover  *CellRef
}

// Evaluation pairs the conflict-detector verdict with the resource report for
// one candidate cell.
type Evaluation struct {
	Placement PlacementCheck   `json:"placement"`
	Resources ValidationReport `json:"resources"`
}

// CanCommit reports whether nothing critical blocks the candidate.
func (e Evaluation) CanCommit() bool {
	return e.Placement.CanPlace && e.Resources.IsValid
}

// DropResult reports the outcome of a drop or direct commit.
type DropResult struct {
	Committed  bool       `json:"committed"`
	Day        string     `json:"day"`
	Slot       string     `json:"slot"`
	Evaluation Evaluation `json:"evaluation"`
}

// AutoArrangeResult lists what the greedy pass placed and what it could not.
type AutoArrangeResult struct {
	Placed   []CourseAssignment `json:"placed"`
	Unplaced []Course           `json:"unplaced"`
}

// NewEngine starts an editing session over grid. The initial state is
// snapshotted so the first undo returns to it, and the running conflict list
// is computed for every occupied cell.
func NewEngine(grid Grid, dir Directory, cfg EngineConfig) *Engine {
	cal := grid.Calendar()
	e := &Engine{
		cal:       cal,
		grid:      grid,
		index:     NewIndex(),
		detector:  NewDetector(cal),
		resources: NewResourceValidator(cal, cfg.WorkloadCeiling),
		history:   NewHistory(cfg.HistoryLimit),
		dir:       dir,
	}
	e.index.Build(grid)
	e.history.Record(grid, ActionLoad, nil)
	e.refreshAllConflicts()
	return e
}

// Phase returns the drag lifecycle state.
func (e *Engine) Phase() Phase {
	switch {
	case e.drag == nil:
		return PhaseIdle
	case e.drag.hover != nil:
		return PhaseDragOver
	default:
		return PhaseDragging
	}
}

// Grid returns the current grid. Grids are immutable by convention; callers
// receive new values from every committed mutation.
func (e *Engine) Grid() Grid {
	return e.grid
}

// Index exposes the session index for resolver queries and diagnostics.
func (e *Engine) Index() *Index {
	return e.index
}

// Conflicts returns the running conflict list.
func (e *Engine) Conflicts() []Conflict {
	out := make([]Conflict, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}

// StartDrag begins an operation with a course picked from the catalog.
func (e *Engine) StartDrag(course Course, room Room) error {
	if e.drag != nil {
		return fmt.Errorf("drag already in progress")
	}
	e.drag = &dragState{course: course, room: room}
	return nil
}

// StartDragFrom begins an operation by lifting an existing assignment, so the
// eventual drop commits a move instead of a duplicate place.
func (e *Engine) StartDragFrom(day, slot string) error {
	if e.drag != nil {
		return fmt.Errorf("drag already in progress")
	}
	occupant := e.grid.At(day, slot)
	if occupant == nil {
		return fmt.Errorf("no assignment at %s %s", day, slot)
	}
	e.drag = &dragState{
		course: courseFromAssignment(*occupant),
		room:   e.dir.Room(occupant.RoomID),
		from:   &CellRef{Day: day, Slot: slot},
	}
	return nil
}

// DragOver evaluates the in-flight course against a candidate cell without
// mutating anything, so live UI feedback can be rendered.
func (e *Engine) DragOver(day, slot string) (Evaluation, error) {
	if e.drag == nil {
		return Evaluation{}, fmt.Errorf("no drag in progress")
	}
	e.drag.hover = &CellRef{Day: day, Slot: slot}
	return e.evaluate(day, slot, e.drag.course, e.drag.room, e.drag.from), nil
}

// Drop commits the in-flight operation at (day, slot). A critical conflict
// leaves the grid untouched and ends the drag; warnings never block.
func (e *Engine) Drop(day, slot string) DropResult {
	if e.drag == nil {
		return DropResult{Day: day, Slot: slot}
	}
	drag := *e.drag
	e.drag = nil

	eval := e.evaluate(day, slot, drag.course, drag.room, drag.from)
	result := DropResult{Day: day, Slot: slot, Evaluation: eval}
	if !eval.CanCommit() {
		return result
	}

	if drag.from != nil {
		e.commitMove(drag.from.Day, drag.from.Slot, day, slot, drag.course, drag.room)
	} else {
		e.commitPlace(day, slot, drag.course, drag.room, ActionPlace)
	}
	result.Committed = true
	return result
}

// Cancel abandons the in-flight drag with no grid mutation.
func (e *Engine) Cancel() {
	e.drag = nil
}

// Place validates and commits a direct placement, bypassing the drag
// choreography. Used by the HTTP surface.
func (e *Engine) Place(day, slot string, course Course, room Room) DropResult {
	eval := e.evaluate(day, slot, course, room, nil)
	result := DropResult{Day: day, Slot: slot, Evaluation: eval}
	if !eval.CanCommit() {
		return result
	}
	e.commitPlace(day, slot, course, room, ActionPlace)
	result.Committed = true
	return result
}

// MoveAssignment validates and commits moving the occupant of one cell into
// another as a single logical unit.
func (e *Engine) MoveAssignment(fromDay, fromSlot, toDay, toSlot string) (DropResult, error) {
	occupant := e.grid.At(fromDay, fromSlot)
	if occupant == nil {
		return DropResult{}, fmt.Errorf("no assignment at %s %s", fromDay, fromSlot)
	}
	course := courseFromAssignment(*occupant)
	room := e.dir.Room(occupant.RoomID)
	from := &CellRef{Day: fromDay, Slot: fromSlot}

	eval := e.evaluate(toDay, toSlot, course, room, from)
	result := DropResult{Day: toDay, Slot: toSlot, Evaluation: eval}
	if !eval.CanCommit() {
		return result, nil
	}
	e.commitMove(fromDay, fromSlot, toDay, toSlot, course, room)
	result.Committed = true
	return result, nil
}

// RemoveAssignment empties a cell, updates the index and drops the cell's
// conflicts from the running list.
func (e *Engine) RemoveAssignment(day, slot string) bool {
	occupant := e.grid.At(day, slot)
	if occupant == nil {
		return false
	}
	e.grid = e.grid.Remove(day, slot)
	e.index.Update(day, slot, occupant, nil)
	e.history.Record(e.grid, ActionRemove, map[string]any{"day": day, "slot": slot, "code": occupant.Code})
	e.rescanCells([]string{occupant.Code}, CellRef{Day: day, Slot: slot})
	return true
}

// Undo restores the previous snapshot, rebuilds the index from it and
// recomputes the conflict list. Returns false at the stack boundary.
func (e *Engine) Undo() bool {
	grid, ok := e.history.Undo()
	if !ok {
		return false
	}
	e.restore(grid)
	return true
}

// Redo restores the next snapshot symmetrically.
func (e *Engine) Redo() bool {
	grid, ok := e.history.Redo()
	if !ok {
		return false
	}
	e.restore(grid)
	return true
}

// History exposes the session history for inspection.
func (e *Engine) History() *History {
	return e.history
}

// Suggest proposes resolutions for a reported conflict using the session
// index and the supplied resource catalogs.
func (e *Engine) Suggest(conflict Conflict, rooms []Room, faculty []Faculty) []Suggestion {
	return NewResolver(e.cal).Suggest(e.grid, e.index, conflict, rooms, faculty)
}

// ApplySuggestion commits a resolver suggestion as a tracked mutation. The
// index is rebuilt because a suggestion can rewrite resources in place
// without moving through the incremental update path.
func (e *Engine) ApplySuggestion(s Suggestion) error {
	var codes []string
	if occupant := e.grid.At(s.Day, s.Slot); occupant != nil {
		codes = append(codes, occupant.Code)
	}
	next, err := NewResolver(e.cal).Apply(e.grid, s)
	if err != nil {
		return err
	}
	e.grid = next
	e.drag = nil
	e.index.Build(next)
	e.history.Record(next, ActionSuggestion, map[string]any{"kind": string(s.Kind), "day": s.Day, "slot": s.Slot})
	cells := []CellRef{{Day: s.Day, Slot: s.Slot}}
	if s.TargetDay != "" {
		cells = append(cells, CellRef{Day: s.TargetDay, Slot: s.TargetSlot})
	}
	e.rescanCells(codes, cells...)
	return nil
}

// ValidateIndex runs the index consistency diagnostic and rebuilds on
// divergence, returning whatever discrepancies were found.
func (e *Engine) ValidateIndex() []IndexDiscrepancy {
	discrepancies := e.index.Validate(e.grid)
	if len(discrepancies) > 0 {
		e.index.Build(e.grid)
	}
	return discrepancies
}

// AutoArrange greedily places courses into free cells, scanning days in the
// given preference order and slots in calendar order, validating every
// candidate before committing it. Anything that cannot be placed without a
// critical conflict lands in Unplaced. Best effort only; this is not a
// feasibility solver.
func (e *Engine) AutoArrange(courses []Course, dayOrder []string) AutoArrangeResult {
	days := e.arrangeDayOrder(dayOrder)
	result := AutoArrangeResult{
		Placed:   []CourseAssignment{},
		Unplaced: []Course{},
	}
	for _, course := range courses {
		room := e.dir.Room(preferredRoomFor(course, e.dir))
		placed := false
		for _, day := range days {
			for _, slot := range e.cal.slots {
				if e.grid.At(day, slot) != nil {
					continue
				}
				eval := e.evaluate(day, slot, course, room, nil)
				if !eval.CanCommit() {
					continue
				}
				e.commitPlace(day, slot, course, room, ActionAutoArrange)
				if a := e.grid.At(day, slot); a != nil {
					result.Placed = append(result.Placed, *a)
				}
				placed = true
				break
			}
			if placed {
				break
			}
		}
		if !placed {
			result.Unplaced = append(result.Unplaced, course)
		}
	}
	return result
}

func (e *Engine) arrangeDayOrder(preferred []string) []string {
	seen := make(map[string]struct{}, len(e.cal.days))
	var days []string
	for _, day := range preferred {
		if !e.cal.HasDay(day) {
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	for _, day := range e.cal.days {
		if _, dup := seen[day]; dup {
			continue
		}
		days = append(days, day)
	}
	return days
}

// preferredRoomFor picks the first directory room (by id order) satisfying
// the course's required facilities and batch size, falling back to the first
// room overall.
func preferredRoomFor(course Course, dir Directory) string {
	ids := make([]string, 0, len(dir.Rooms))
	for id := range dir.Rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	validator := ResourceValidator{}
	for _, id := range ids {
		room := dir.Rooms[id]
		if !validator.CheckFacilities(course, room).IsValid {
			continue
		}
		if !validator.CheckCapacity(course, room).IsValid {
			continue
		}
		return id
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func (e *Engine) evaluate(day, slot string, course Course, room Room, from *CellRef) Evaluation {
	base := e.grid
	if from != nil {
		base = base.Remove(from.Day, from.Slot)
	}
	return Evaluation{
		Placement: e.detector.ValidatePlacement(base, day, slot, course, room),
		Resources: e.resources.ValidateAll(base, day, slot, course, room, e.dir.FacultyByID(course.FacultyID)),
	}
}

func (e *Engine) commitPlace(day, slot string, course Course, room Room, action string) {
	old := e.grid.At(day, slot)
	codes := []string{course.Code}
	if old != nil {
		codes = append(codes, old.Code)
	}
	e.grid = e.grid.Place(day, slot, course, room)
	e.index.Update(day, slot, old, e.grid.At(day, slot))
	e.history.Record(e.grid, action, map[string]any{"day": day, "slot": slot, "code": course.Code})
	e.rescanCells(codes, CellRef{Day: day, Slot: slot})
}

func (e *Engine) commitMove(fromDay, fromSlot, toDay, toSlot string, course Course, room Room) {
	source := e.grid.At(fromDay, fromSlot)
	oldTarget := e.grid.At(toDay, toSlot)
	codes := []string{course.Code}
	if oldTarget != nil {
		codes = append(codes, oldTarget.Code)
	}
	e.grid = e.grid.Move(fromDay, fromSlot, toDay, toSlot, course, room)
	e.index.Update(fromDay, fromSlot, source, nil)
	e.index.Update(toDay, toSlot, oldTarget, e.grid.At(toDay, toSlot))
	e.history.Record(e.grid, ActionMove, map[string]any{
		"from": fromDay + " " + fromSlot,
		"to":   toDay + " " + toSlot,
		"code": course.Code,
	})
	e.rescanCells(codes, CellRef{Day: fromDay, Slot: fromSlot}, CellRef{Day: toDay, Slot: toSlot})
}

func (e *Engine) restore(grid Grid) {
	e.grid = grid
	e.drag = nil
	e.index.Build(grid)
	e.refreshAllConflicts()
}

// rescanCells recomputes conflicts for the affected cells and splices them
// into the running list instead of rescanning the whole grid. An overlap
// conflict is recorded under every implicated cell, so cells whose entries
// name one of the mutated course codes are rescanned as well.
func (e *Engine) rescanCells(codes []string, cells ...CellRef) {
	affected := make(map[CellRef]struct{}, len(cells))
	for _, cell := range cells {
		affected[cell] = struct{}{}
	}
	mutated := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if code != "" {
			mutated[code] = struct{}{}
		}
	}
	for _, c := range e.conflicts {
		if c.Course == nil {
			continue
		}
		if _, hit := mutated[c.Course.Code]; hit {
			affected[CellRef{Day: c.Day, Slot: c.Slot}] = struct{}{}
		}
	}
	kept := e.conflicts[:0]
	for _, c := range e.conflicts {
		if _, hit := affected[CellRef{Day: c.Day, Slot: c.Slot}]; !hit {
			kept = append(kept, c)
		}
	}
	e.conflicts = kept
	for cell := range affected {
		e.conflicts = append(e.conflicts, e.conflictsAt(cell.Day, cell.Slot)...)
	}
}

func (e *Engine) refreshAllConflicts() {
	e.conflicts = nil
	for _, a := range e.grid.Assignments() {
		e.conflicts = append(e.conflicts, e.conflictsAt(a.Day, a.Slot)...)
	}
}

// conflictsAt evaluates the occupant of one cell against the rest of the
// grid, as if it were being placed there now.
func (e *Engine) conflictsAt(day, slot string) []Conflict {
	occupant := e.grid.At(day, slot)
	if occupant == nil {
		return nil
	}
	course := courseFromAssignment(*occupant)
	room := e.dir.Room(occupant.RoomID)
	rest := e.grid.Remove(day, slot)

	var out []Conflict
	out = append(out, e.detector.CheckConflicts(rest, day, slot, course, room)...)
	report := e.resources.ValidateAll(rest, day, slot, course, room, e.dir.FacultyByID(course.FacultyID))
	out = append(out, report.Conflicts...)
	out = append(out, report.Warnings...)
	return out
}

func courseFromAssignment(a CourseAssignment) Course {
	return Course{
		Code:        a.Code,
		Title:       a.Title,
		WeeklyHours: a.WeeklyHours,
		Duration:    a.Duration,
		FacultyID:   a.FacultyID,
		FacultyName: a.FacultyName,
		BatchID:     a.BatchID,
		BatchSize:   a.BatchSize,
	}
}
