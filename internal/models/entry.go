// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Entry represents one journaled reflection for a calendar day. A user may
// hold any number of entries for the same date; the id is the only handle
// used for updates and deletes.
type Entry struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"-"`
	// Date is an opaque YYYY-MM-DD string. The store never parses or
	// reformats it; format checks happen at the transport layer.
	Date      string    `gorm:"not null;index" json:"date"`
	Gratitude string    `gorm:"type:text;not null;default:''" json:"gratitude"`
	Feeling   string    `gorm:"type:text;not null;default:''" json:"feeling"`
	OnMind    string    `gorm:"column:on_mind;type:text;not null;default:''" json:"on_mind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Entry.
func (Entry) TableName() string {
	return "entries"
}

// DateSummary is one row of the timeline: a date that has at least one entry
// plus how many entries were written that day.
type DateSummary struct {
	Date       string `json:"date"`
	EntryCount int    `json:"entry_count"`
}
