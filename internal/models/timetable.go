package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimetableType distinguishes the variants stored per batch.
type TimetableType string

const (
	TimetableTheory TimetableType = "theory"
	TimetableLab    TimetableType = "lab"
)

// TimetableKey identifies one stored timetable.
type TimetableKey struct {
	Semester string        `json:"semester"`
	Branch   string        `json:"branch"`
	Batch    string        `json:"batch"`
	Type     TimetableType `json:"type"`
}

// String renders the storage key, e.g. "fall-2026-cse-a1-theory".
func (k TimetableKey) String() string {
	return fmt.Sprintf("%s-%s-%s-%s", k.Semester, k.Branch, k.Batch, k.Type)
}

// Validate reports whether all key components are present and free of
// the separator character.
func (k TimetableKey) Validate() error {
	parts := map[string]string{
		"semester": k.Semester,
		"branch":   k.Branch,
		"batch":    k.Batch,
		"type":     string(k.Type),
	}
	for name, v := range parts {
		if v == "" {
			return fmt.Errorf("timetable key: missing %s", name)
		}
	}
	if k.Type != TimetableTheory && k.Type != TimetableLab {
		return fmt.Errorf("timetable key: unknown type %q", k.Type)
	}
	return nil
}

// ParseTimetableType normalizes a type string from a request path.
func ParseTimetableType(s string) (TimetableType, error) {
	switch TimetableType(strings.ToLower(s)) {
	case TimetableTheory:
		return TimetableTheory, nil
	case TimetableLab:
		return TimetableLab, nil
	default:
		return "", fmt.Errorf("unknown timetable type %q", s)
	}
}

// TimetableSnapshot is the persisted form of one timetable grid.
type TimetableSnapshot struct {
	Key       TimetableKey    `json:"key"`
	Grid      json.RawMessage `json:"grid"`
	SavedBy   string          `json:"saved_by,omitempty"`
	Origin    string          `json:"origin,omitempty"`
	SavedAt   time.Time       `json:"saved_at"`
	Conflicts int             `json:"conflicts"`
}
