package dto

import (
	"encoding/json"

	"github.com/acadgrid/timetable-api/internal/timetable"
)

// CoursePayload carries the course fields needed to place it on a grid.
type CoursePayload struct {
	Code               string   `json:"code" validate:"required"`
	Title              string   `json:"title"`
	WeeklyHours        string   `json:"weekly_hours"`
	Duration           int      `json:"duration"`
	FacultyID          string   `json:"faculty_id"`
	FacultyName        string   `json:"faculty_name"`
	BatchID            string   `json:"batch_id"`
	BatchSize          int      `json:"batch_size"`
	RequiredFacilities []string `json:"required_facilities"`
}

// PlaceRequest commits a course into a cell.
type PlaceRequest struct {
	Course CoursePayload `json:"course" validate:"required"`
	Day    string        `json:"day" validate:"required"`
	Slot   string        `json:"slot" validate:"required"`
	RoomID string        `json:"room_id" validate:"required"`
}

// EvaluateRequest previews a candidate cell without committing. When
// FromDay/FromSlot are set the evaluation treats it as a pending move.
type EvaluateRequest struct {
	Course   *CoursePayload `json:"course"`
	Day      string         `json:"day" validate:"required"`
	Slot     string         `json:"slot" validate:"required"`
	RoomID   string         `json:"room_id"`
	FromDay  string         `json:"from_day"`
	FromSlot string         `json:"from_slot"`
}

// MoveRequest relocates an existing assignment.
type MoveRequest struct {
	FromDay  string `json:"from_day" validate:"required"`
	FromSlot string `json:"from_slot" validate:"required"`
	ToDay    string `json:"to_day" validate:"required"`
	ToSlot   string `json:"to_slot" validate:"required"`
}

// RemoveRequest clears a cell.
type RemoveRequest struct {
	Day  string `json:"day" validate:"required"`
	Slot string `json:"slot" validate:"required"`
}

// SuggestRequest asks for resolutions of a running conflict identified
// by its cell and optionally its type.
type SuggestRequest struct {
	Day  string `json:"day" validate:"required"`
	Slot string `json:"slot" validate:"required"`
	Type string `json:"type"`
}

// ApplySuggestionRequest commits one resolver suggestion.
type ApplySuggestionRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=change_room change_faculty reschedule"`
	Day        string `json:"day" validate:"required"`
	Slot       string `json:"slot" validate:"required"`
	TargetDay  string `json:"target_day"`
	TargetSlot string `json:"target_slot"`
	RoomID     string `json:"room_id"`
	FacultyID  string `json:"faculty_id"`
}

// AutoArrangeRequest fills free cells with a batch's pending courses.
type AutoArrangeRequest struct {
	BatchID  string   `json:"batch_id" validate:"required"`
	DayOrder []string `json:"day_order"`
}

// SessionView is the full editing state returned to the client.
type SessionView struct {
	Key       string               `json:"key"`
	Grid      json.RawMessage      `json:"grid"`
	Conflicts []timetable.Conflict `json:"conflicts"`
	CanUndo   bool                 `json:"can_undo"`
	CanRedo   bool                 `json:"can_redo"`
	Phase     timetable.Phase      `json:"phase"`
	SavedAt   string               `json:"saved_at,omitempty"`
}

// MutationResponse pairs a drop outcome with the refreshed session view.
type MutationResponse struct {
	Result  timetable.DropResult `json:"result"`
	Session SessionView          `json:"session"`
}

// AutoArrangeResponse reports what the greedy pass did.
type AutoArrangeResponse struct {
	Placed   []timetable.CourseAssignment `json:"placed"`
	Unplaced []timetable.Course           `json:"unplaced"`
	Session  SessionView                  `json:"session"`
}

// IndexDiagnostics reports index consistency findings.
type IndexDiagnostics struct {
	Healthy       bool                         `json:"healthy"`
	Discrepancies []timetable.IndexDiscrepancy `json:"discrepancies"`
}
