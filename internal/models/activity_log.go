package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity log action codes emitted by the services.
const (
	ActionCreateTask  = "create_task"
	ActionUpdateTask  = "update_task"
	ActionDeleteTask  = "delete_task"
	ActionCreateUser  = "create_user"
	ActionUpdateUser  = "update_user"
	ActionDeleteUser  = "delete_user"
	ActionTaskOverdue = "task_overdue"
)

// ActivityLog is an append-only record of a state-changing action. Entries
// are written once and never updated or deleted.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null" json:"user_id"`
	User        *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action      string            `gorm:"size:64;not null" json:"action"`
	Description string            `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	LoggedAt    time.Time         `gorm:"autoCreateTime" json:"logged_at"`
}
