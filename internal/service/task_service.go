package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/policy"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

// TaskService exposes the task lifecycle use cases: role-scoped listing,
// single-task access, and the create/update/delete transitions with their
// assignment constraints.
type TaskService interface {
	List(ctx context.Context, actor models.User, req dto.TaskListRequest) (dto.TaskListResponse, error)
	Get(ctx context.Context, actor models.User, id uint) (dto.TaskResponse, error)
	Create(ctx context.Context, actor models.User, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, actor models.User, id uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error)
	Delete(ctx context.Context, actor models.User, id uint) error
}

type taskService struct {
	tasks     repository.TaskRepository
	users     repository.UserRepository
	activity  ActivityRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewTaskService builds the task lifecycle service.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:     tasks,
		users:     users,
		activity:  activity,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "task_service").Logger(),
		tracer:    otel.Tracer("github.com/taskdesk/taskdesk-api/internal/service/task"),
		now:       time.Now,
	}
}

func (s *taskService) List(ctx context.Context, actor models.User, req dto.TaskListRequest) (dto.TaskListResponse, error) {
	if !policy.CanViewAnyTasks(actor) {
		return dto.TaskListResponse{}, ErrAccessDenied
	}

	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		return dto.TaskListResponse{}, &FieldError{Field: "status", Message: "must be one of pending, in_progress, done"}
	}

	tasks, total, err := s.tasks.ListVisible(ctx, actor, repository.TaskFilter{
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.TaskListResponse{}, err
	}

	responses := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, dto.NewTaskResponse(task))
	}

	return dto.TaskListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *taskService) Get(ctx context.Context, actor models.User, id uint) (dto.TaskResponse, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	if !policy.CanViewTask(actor, task) {
		return dto.TaskResponse{}, ErrAccessDenied
	}

	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Create(ctx context.Context, actor models.User, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.create", trace.WithAttributes(
		attribute.Int64("actor.id", int64(actor.ID)),
		attribute.String("actor.role", actor.Role),
	))
	defer span.End()

	if !policy.CanCreateTask(actor) {
		return dto.TaskResponse{}, ErrAccessDenied
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(payload.Title))
	if title == "" {
		return dto.TaskResponse{}, &FieldError{Field: "title", Message: "must not be empty"}
	}

	dueDate, err := s.parseDueDate(payload.DueDate)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	assignedToID, err := s.resolveAssignment(ctx, actor, payload.AssignedToID, nil)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	status := models.TaskStatusPending
	if payload.Status != nil {
		status = *payload.Status
	}

	task := models.Task{
		Title:        title,
		Description:  strings.TrimSpace(s.sanitizer.Sanitize(payload.Description)),
		Status:       status,
		DueDate:      dueDate,
		CreatedByID:  actor.ID,
		AssignedToID: assignedToID,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	created, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", created.ID).Uint("actor_id", actor.ID).Msg("task created")
	s.recordActivity(ctx, actor.ID, models.ActionCreateTask,
		fmt.Sprintf("Task created: %s (ID: %d)", created.Title, created.ID),
		taskMetadata(created))

	return dto.NewTaskResponse(created), nil
}

func (s *taskService) Update(ctx context.Context, actor models.User, id uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.update", trace.WithAttributes(
		attribute.Int64("task.id", int64(id)),
		attribute.Int64("actor.id", int64(actor.ID)),
	))
	defer span.End()

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	// Authorization precedes field validation.
	if !policy.CanUpdateTask(actor, task) {
		return dto.TaskResponse{}, ErrAccessDenied
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	if payload.Title != nil {
		title := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
		if title == "" {
			return dto.TaskResponse{}, &FieldError{Field: "title", Message: "must not be empty"}
		}
		task.Title = title
	}

	if payload.Description != nil {
		task.Description = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Description))
	}

	if payload.Status != nil {
		task.Status = *payload.Status
	}

	if payload.DueDate != nil {
		dueDate, err := s.parseDueDate(payload.DueDate)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		task.DueDate = dueDate
	}

	if payload.AssignedToID != nil {
		assignedToID, err := s.resolveAssignment(ctx, actor, payload.AssignedToID, task.AssignedToID)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		task.AssignedToID = assignedToID
	}

	// The creator never changes, whatever the payload carried.
	task.CreatedBy = nil
	task.AssignedTo = nil

	if err := s.tasks.Update(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	updated, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", updated.ID).Uint("actor_id", actor.ID).Msg("task updated")
	s.recordActivity(ctx, actor.ID, models.ActionUpdateTask,
		fmt.Sprintf("Task updated: %s (ID: %d)", updated.Title, updated.ID),
		taskMetadata(updated))

	return dto.NewTaskResponse(updated), nil
}

func (s *taskService) Delete(ctx context.Context, actor models.User, id uint) error {
	ctx, span := s.tracer.Start(ctx, "tasks.delete", trace.WithAttributes(
		attribute.Int64("task.id", int64(id)),
		attribute.Int64("actor.id", int64(actor.ID)),
	))
	defer span.End()

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if !policy.CanDeleteTask(actor, task) {
		return ErrAccessDenied
	}

	title := task.Title

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.logger.Info().Uint("task_id", id).Uint("actor_id", actor.ID).Msg("task deleted")
	s.recordActivity(ctx, actor.ID, models.ActionDeleteTask,
		fmt.Sprintf("Task deleted: %s (ID: %d)", title, id),
		map[string]interface{}{"task_id": id, "title": title})

	return nil
}

// resolveAssignment applies the role-based assignment constraints and returns
// the assignee id to persist. currentAssignee is the task's assignee before
// the change (nil on create).
func (s *taskService) resolveAssignment(ctx context.Context, actor models.User, requested *uint, currentAssignee *uint) (*uint, error) {
	if requested == nil {
		// Staff creating without an assignee work on it themselves.
		if actor.IsStaff() && currentAssignee == nil {
			id := actor.ID
			return &id, nil
		}
		return currentAssignee, nil
	}

	assignee, err := s.users.GetByID(ctx, *requested)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &FieldError{Field: "assigned_to_id", Message: "assigned user does not exist"}
		}
		return nil, err
	}

	switch actor.Role {
	case models.RoleManager:
		if !assignee.IsStaff() {
			return nil, NewPolicyViolation("managers can only assign tasks to staff")
		}
	case models.RoleStaff:
		if assignee.ID != actor.ID && (currentAssignee == nil || *currentAssignee != assignee.ID) {
			return nil, NewPolicyViolation("staff can only assign tasks to themselves")
		}
	}

	id := assignee.ID
	return &id, nil
}

func (s *taskService) parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}

	dueDate, err := time.Parse(time.DateOnly, strings.TrimSpace(*raw))
	if err != nil {
		return nil, &FieldError{Field: "due_date", Message: "must be a date in the form 2006-01-02"}
	}

	// Both sides are midnight UTC dates, so this is a calendar-day comparison.
	today, _ := time.Parse(time.DateOnly, s.now().Format(time.DateOnly))
	if dueDate.Before(today) {
		return nil, &FieldError{Field: "due_date", Message: "must not precede today"}
	}

	return &dueDate, nil
}

func (s *taskService) recordActivity(ctx context.Context, actorID uint, action, description string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	// Log persistence failures are observed inside the recorder; the mutation
	// has already succeeded and is not reverted.
	_ = s.activity.Record(ctx, ActivityEntry{
		ActorID:     actorID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
	})
}

func taskMetadata(task models.Task) map[string]interface{} {
	metadata := map[string]interface{}{
		"task_id":       task.ID,
		"status":        task.Status,
		"created_by_id": task.CreatedByID,
	}
	if task.AssignedToID != nil {
		metadata["assigned_to_id"] = *task.AssignedToID
	}
	return metadata
}

func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
