package models

import "time"

// Task status values. There is no enforced transition graph; any authorized
// actor may move a task between the three states directly.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// ValidTaskStatus reports whether the given status is part of the enum.
func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is a unit of work created by a user and optionally assigned to one.
// CreatedByID is always the actor that created the task and never changes.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Status       string     `gorm:"size:32;not null;default:pending" json:"status"`
	DueDate      *time.Time `json:"due_date"`
	CreatedByID  uint       `gorm:"not null" json:"created_by_id"`
	CreatedBy    *User      `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	AssignedToID *uint      `json:"assigned_to_id"`
	AssignedTo   *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Overdue reports whether the task's due date lies strictly before the start
// of the given day and the task is not done. Overdue is derived, never stored.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusDone {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return t.DueDate.Before(today)
}
