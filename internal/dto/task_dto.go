package dto

import (
	"time"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

// TaskListRequest defines filters for listing tasks.
type TaskListRequest struct {
	Page     int
	PageSize int
	Status   string
}

// TaskResponse serializes a task with creator/assignee summaries attached.
type TaskResponse struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       string       `json:"status"`
	DueDate      *string      `json:"due_date"`
	CreatedByID  uint         `json:"created_by_id"`
	CreatedBy    *UserSummary `json:"created_by,omitempty"`
	AssignedToID *uint        `json:"assigned_to_id"`
	AssignedTo   *UserSummary `json:"assigned_to,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTaskResponse converts a task model into a DTO. Due dates are rendered
// date-only, matching the create/update payload format.
func NewTaskResponse(task models.Task) TaskResponse {
	response := TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		CreatedByID:  task.CreatedByID,
		AssignedToID: task.AssignedToID,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	if task.DueDate != nil {
		due := task.DueDate.Format(time.DateOnly)
		response.DueDate = &due
	}
	if task.CreatedBy != nil {
		summary := NewUserSummary(*task.CreatedBy)
		response.CreatedBy = &summary
	}
	if task.AssignedTo != nil {
		summary := NewUserSummary(*task.AssignedTo)
		response.AssignedTo = &summary
	}

	return response
}

// TaskListResponse wraps a paginated task listing.
type TaskListResponse struct {
	Items      []TaskResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// TaskCreateRequest captures the payload for creating a task. DueDate is a
// date-only string (2006-01-02) and must not precede the current day.
type TaskCreateRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description"`
	AssignedToID *uint   `json:"assigned_to_id"`
	Status       *string `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	DueDate      *string `json:"due_date"`
}

// TaskUpdateRequest captures partial update payloads for tasks. Unset fields
// are left unchanged.
type TaskUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description"`
	AssignedToID *uint   `json:"assigned_to_id"`
	Status       *string `json:"status" validate:"omitempty,oneof=pending in_progress done"`
	DueDate      *string `json:"due_date"`
}
