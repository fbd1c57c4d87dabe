package models

import "time"

// Batch represents a cohort of students following one timetable.
type Batch struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Semester  string    `db:"semester" json:"semester"`
	Branch    string    `db:"branch" json:"branch"`
	Size      int       `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BatchFilter defines filter criteria for listing batches.
type BatchFilter struct {
	Semester  string
	Branch    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
