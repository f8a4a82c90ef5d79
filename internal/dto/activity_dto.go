package dto

import (
	"time"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

// ActivityLogListRequest defines filters for listing activity log entries.
type ActivityLogListRequest struct {
	Page     int
	PageSize int
	UserID   uint
	Action   string
}

// ActivityLogResponse serializes a single audit entry.
type ActivityLogResponse struct {
	ID          uint                   `json:"id"`
	UserID      uint                   `json:"user_id"`
	User        *UserSummary           `json:"user,omitempty"`
	Action      string                 `json:"action"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	LoggedAt    time.Time              `json:"logged_at"`
}

// NewActivityLogResponse converts an activity log model into a DTO.
func NewActivityLogResponse(entry models.ActivityLog) ActivityLogResponse {
	response := ActivityLogResponse{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		Metadata:    entry.Metadata,
		LoggedAt:    entry.LoggedAt,
	}

	if entry.User != nil {
		summary := NewUserSummary(*entry.User)
		response.User = &summary
	}

	return response
}

// ActivityLogListResponse wraps a paginated audit trail listing.
type ActivityLogListResponse struct {
	Items      []ActivityLogResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}
