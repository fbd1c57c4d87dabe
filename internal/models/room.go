package models

import (
	"time"

	"github.com/lib/pq"
)

// Room represents a teaching room available for placement.
type Room struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Capacity   int            `db:"capacity" json:"capacity"`
	Type       string         `db:"type" json:"type"`
	Facilities pq.StringArray `db:"facilities" json:"facilities"`
	Active     bool           `db:"active" json:"active"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// RoomFilter defines filter criteria for listing rooms.
type RoomFilter struct {
	Type        string
	MinCapacity int
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
