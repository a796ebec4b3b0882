package models

import "time"

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#C3C3C3"

// Project groups tasks for a single user
type Project struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastEdited time.Time `gorm:"autoUpdateTime" json:"last_edited"`

	UserID uint   `gorm:"not null;index" json:"user_id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	Color  string `gorm:"size:7;not null" json:"color"`
	Active bool   `gorm:"not null;index" json:"active"`

	// Relationships
	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
