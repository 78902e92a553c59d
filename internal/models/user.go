package models

import (
	"time"
)

// User represents a registered journal owner. The credential side of the
// record (password hash) never leaves the server.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	Entries      []Entry   `gorm:"foreignKey:UserID" json:"-"`
}

// TableName returns the database table name for User.
func (User) TableName() string {
	return "users"
}
