package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionUserCreate      = "USER_CREATE"
	AuditActionTimetablePlace  = "TIMETABLE_PLACE"
	AuditActionTimetableMove   = "TIMETABLE_MOVE"
	AuditActionTimetableRemove = "TIMETABLE_REMOVE"
	AuditActionTimetableUndo   = "TIMETABLE_UNDO"
	AuditActionTimetableRedo   = "TIMETABLE_REDO"
	AuditActionAutoArrange     = "TIMETABLE_AUTO_ARRANGE"
	AuditActionApplyFix        = "TIMETABLE_APPLY_FIX"
	AuditActionTimetableSave   = "TIMETABLE_SAVE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     []byte    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter defines filter criteria for listing audit records.
type AuditFilter struct {
	UserID    string
	Action    string
	Resource  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortOrder string
}
