package models

import "time"

// User owns projects and, through them, every task and session.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	TimeZone string `gorm:"size:64" json:"time_zone"`
}

// Location resolves the user's time zone, falling back to UTC when it is
// unset or unknown.
func (u User) Location() *time.Location {
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
