package models

import (
	"time"

	"github.com/lib/pq"
)

// Course represents a course offered to a batch.
type Course struct {
	ID                 string         `db:"id" json:"id"`
	Code               string         `db:"code" json:"code"`
	Title              string         `db:"title" json:"title"`
	WeeklyHours        int            `db:"weekly_hours" json:"weekly_hours"`
	Duration           int            `db:"duration" json:"duration"`
	FacultyID          *string        `db:"faculty_id" json:"faculty_id,omitempty"`
	BatchID            *string        `db:"batch_id" json:"batch_id,omitempty"`
	RequiredFacilities pq.StringArray `db:"required_facilities" json:"required_facilities"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// CourseDetail extends Course with joined faculty and batch information.
type CourseDetail struct {
	Course
	FacultyName *string `db:"faculty_name" json:"faculty_name,omitempty"`
	BatchName   *string `db:"batch_name" json:"batch_name,omitempty"`
	BatchSize   *int    `db:"batch_size" json:"batch_size,omitempty"`
}

// CourseFilter defines filter criteria for listing courses.
type CourseFilter struct {
	FacultyID string
	BatchID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
