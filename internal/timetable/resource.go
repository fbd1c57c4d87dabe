package timetable

import (
	"fmt"
	"math"
	"strings"
)

// DefaultWorkloadCeiling is the weekly teaching-hours ceiling applied when no
// explicit limit is configured for a faculty member.
const DefaultWorkloadCeiling = 20

// ResourceValidator runs the independent capacity, facility, batch, break
// and workload checks. Every check degrades to "no constraint" when the
// external record lacks the fields it needs; malformed directory data must
// never fail a whole validation pass.
type ResourceValidator struct {
	cal             *Calendar
	workloadCeiling int
}

// NewResourceValidator constructs a validator; a non-positive ceiling falls
// back to DefaultWorkloadCeiling.
func NewResourceValidator(cal *Calendar, workloadCeiling int) *ResourceValidator {
	if workloadCeiling <= 0 {
		workloadCeiling = DefaultWorkloadCeiling
	}
	return &ResourceValidator{cal: cal, workloadCeiling: workloadCeiling}
}

// CheckResult is the outcome of one resource check.
type CheckResult struct {
	IsValid          bool     `json:"is_valid"`
	Severity         Severity `json:"severity,omitempty"`
	Message          string   `json:"message,omitempty"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}

func pass() CheckResult {
	return CheckResult{IsValid: true}
}

// ValidationReport aggregates every resource check for one proposed
// placement. IsValid is false only when a critical check failed; warnings and
// informational results never block.
type ValidationReport struct {
	IsValid   bool       `json:"is_valid"`
	Conflicts []Conflict `json:"conflicts"`
	Warnings  []Conflict `json:"warnings"`
}

// CheckCapacity compares the batch size against the room capacity: above 90%
// (floored) is critical, above 80% is a warning. Rooms with unknown capacity
// impose no constraint.
func (v *ResourceValidator) CheckCapacity(course Course, room Room) CheckResult {
	if room.Capacity <= 0 || course.BatchSize <= 0 {
		return pass()
	}
	hardLimit := int(math.Floor(float64(room.Capacity) * 0.9))
	if course.BatchSize > hardLimit {
		return CheckResult{
			IsValid:  false,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("batch of %d exceeds safe capacity %d of room %s (capacity %d)", course.BatchSize, hardLimit, room.ID, room.Capacity),
			SuggestedActions: []string{
				"choose a larger room",
				"split the batch across sections",
			},
		}
	}
	if float64(course.BatchSize) > 0.8*float64(room.Capacity) {
		return CheckResult{
			IsValid:  false,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("batch of %d fills over 80%% of room %s (capacity %d)", course.BatchSize, room.ID, room.Capacity),
			SuggestedActions: []string{
				"consider a larger room for comfort",
			},
		}
	}
	return pass()
}

// CheckFacilities warns when the room lacks facilities the course requires.
// A missing facility never hard-blocks a placement.
func (v *ResourceValidator) CheckFacilities(course Course, room Room) CheckResult {
	if len(course.RequiredFacilities) == 0 {
		return pass()
	}
	available := make(map[string]struct{}, len(room.Facilities))
	for _, f := range room.Facilities {
		available[strings.ToLower(strings.TrimSpace(f))] = struct{}{}
	}
	var missing []string
	for _, f := range course.RequiredFacilities {
		if _, ok := available[strings.ToLower(strings.TrimSpace(f))]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return pass()
	}
	return CheckResult{
		IsValid:  false,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("room %s is missing required facilities: %s", room.ID, strings.Join(missing, ", ")),
		SuggestedActions: []string{
			"pick a room with the required facilities",
			"arrange portable equipment for this session",
		},
	}
}

// CheckBatch rejects placing a course into a cell already held by a different
// course of the same batch.
func (v *ResourceValidator) CheckBatch(g Grid, day, slot string, course Course) CheckResult {
	if course.BatchID == "" {
		return pass()
	}
	occupant := g.At(day, slot)
	if occupant == nil || occupant.Code == course.Code || occupant.BatchID != course.BatchID {
		return pass()
	}
	return CheckResult{
		IsValid:  false,
		Severity: SeverityCritical,
		Message:  fmt.Sprintf("batch %s already attends %s at %s %s", course.BatchID, occupant.Code, day, slot),
		SuggestedActions: []string{
			"move one of the courses to a free slot",
		},
	}
}

// CheckBreakTime emits an advisory when the immediately adjacent slot on the
// same day is occupied. It never blocks a placement.
func (v *ResourceValidator) CheckBreakTime(g Grid, day, slot string) CheckResult {
	var adjacent []string
	if prev, ok := v.cal.PrevSlot(slot); ok && g.At(day, prev) != nil {
		adjacent = append(adjacent, prev)
	}
	if next, ok := v.cal.NextSlot(slot); ok && g.At(day, next) != nil {
		adjacent = append(adjacent, next)
	}
	if len(adjacent) == 0 {
		return pass()
	}
	return CheckResult{
		IsValid:  true,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("back-to-back classes on %s (%s); students get no break", day, strings.Join(adjacent, ", ")),
		SuggestedActions: []string{
			"insert a buffer slot between consecutive classes",
		},
	}
}

// CheckWorkload sums durations of all grid assignments taught by facultyID
// and warns when the weekly ceiling is exceeded, reporting the computed total
// and the matching slots. A positive per-faculty MaxWeekly overrides the
// session-wide ceiling.
func (v *ResourceValidator) CheckWorkload(g Grid, fac Faculty, facultyID string, proposed int) CheckResult {
	if facultyID == "" {
		return pass()
	}
	ceiling := v.workloadCeiling
	if fac.MaxWeekly > 0 {
		ceiling = fac.MaxWeekly
	}
	total := proposed
	if total < 1 {
		total = 1
	}
	var taught []string
	for _, a := range g.Assignments() {
		if a.FacultyID != facultyID {
			continue
		}
		total += a.Duration
		taught = append(taught, fmt.Sprintf("%s %s", a.Day, a.Slot))
	}
	if total <= ceiling {
		return pass()
	}
	return CheckResult{
		IsValid:  false,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("faculty %s would carry %d weekly hours, above the ceiling of %d (teaching %s)", facultyID, total, ceiling, strings.Join(taught, "; ")),
		SuggestedActions: []string{
			"reassign some courses to another faculty member",
		},
	}
}

// CheckAvailability rejects a placement outside the faculty's explicit
// availability window. A faculty with no availability list is unconstrained.
func (v *ResourceValidator) CheckAvailability(fac Faculty, day, slot string) CheckResult {
	if len(fac.Availability) == 0 {
		return pass()
	}
	for _, cell := range fac.Availability {
		if cell.Day == day && cell.Slot == slot {
			return pass()
		}
	}
	return CheckResult{
		IsValid:  false,
		Severity: SeverityCritical,
		Message:  fmt.Sprintf("faculty %s is not available at %s %s", fac.ID, day, slot),
		SuggestedActions: []string{
			"pick a slot inside the faculty's availability window",
			"assign a different faculty member",
		},
	}
}

// ValidateAll runs every resource check for one proposed placement and folds
// the results into a single report.
func (v *ResourceValidator) ValidateAll(g Grid, day, slot string, course Course, room Room, fac Faculty) ValidationReport {
	report := ValidationReport{
		Conflicts: []Conflict{},
		Warnings:  []Conflict{},
	}
	results := []struct {
		kind   ConflictType
		result CheckResult
	}{
		{ConflictCapacity, v.CheckCapacity(course, room)},
		{ConflictFacilities, v.CheckFacilities(course, room)},
		{ConflictBatch, v.CheckBatch(g, day, slot, course)},
		{ConflictBreakTime, v.CheckBreakTime(g, day, slot)},
		{ConflictWorkload, v.CheckWorkload(g, fac, course.FacultyID, course.Duration)},
		{ConflictAvailability, v.CheckAvailability(fac, day, slot)},
	}
	for _, item := range results {
		if item.result.Message == "" {
			continue
		}
		conflict := Conflict{
			Type:        item.kind,
			Severity:    item.result.Severity,
			Day:         day,
			Slot:        slot,
			Message:     item.result.Message,
			Suggestions: item.result.SuggestedActions,
		}
		if conflict.IsCritical() {
			report.Conflicts = append(report.Conflicts, conflict)
		} else {
			report.Warnings = append(report.Warnings, conflict)
		}
	}
	report.IsValid = len(report.Conflicts) == 0
	return report
}
