package models

import (
	"time"

	"gorm.io/gorm"
)

// Task represents a unit of work inside a project
type Task struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastEdited time.Time `gorm:"autoUpdateTime" json:"last_edited"`

	ProjectID uint       `gorm:"not null;index" json:"project_id"`
	Name      string     `gorm:"size:280;not null" json:"name"`
	IsDone    bool       `gorm:"not null" json:"is_done"`
	DoneAt    *time.Time `gorm:"index" json:"done_at"`

	// Relationships
	Project Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"project"`
}

// SetDone flips the completion flag and keeps DoneAt in step with it: a task
// becoming done is stamped with at unless already stamped, and a task
// becoming pending loses its stamp.
func (t *Task) SetDone(done bool, at time.Time) {
	t.IsDone = done
	t.syncDoneAt(at)
}

func (t *Task) syncDoneAt(at time.Time) {
	if t.IsDone && t.DoneAt == nil {
		stamp := at
		t.DoneAt = &stamp
	}
	if !t.IsDone {
		t.DoneAt = nil
	}
}

// BeforeSave enforces the DoneAt invariant on every write.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.syncDoneAt(tx.NowFunc())
	return nil
}
