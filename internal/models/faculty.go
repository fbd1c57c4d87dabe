package models

import (
	"encoding/json"
	"time"
)

// Faculty represents a teaching staff member.
type Faculty struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Department   string          `db:"department" json:"department"`
	Email        string          `db:"email" json:"email"`
	MaxWeekly    int             `db:"max_weekly" json:"max_weekly"`
	Availability json.RawMessage `db:"availability" json:"availability,omitempty"`
	Active       bool            `db:"active" json:"active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AvailabilitySlot is a single cell in a faculty availability window.
type AvailabilitySlot struct {
	Day  string `json:"day"`
	Slot string `json:"slot"`
}

// AvailabilitySlots decodes the stored availability JSON. An empty or
// null column means the faculty member is unconstrained.
func (f *Faculty) AvailabilitySlots() ([]AvailabilitySlot, error) {
	if len(f.Availability) == 0 {
		return nil, nil
	}
	var slots []AvailabilitySlot
	if err := json.Unmarshal(f.Availability, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// FacultyFilter defines filter criteria for listing faculty.
type FacultyFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
