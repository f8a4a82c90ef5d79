package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

// OverdueScanner sweeps the task store for tasks past their due date and logs
// each one. Overdue is a derived classification: the scan never mutates task
// state, and re-running it re-logs the same tasks (no dedup).
type OverdueScanner interface {
	Scan(ctx context.Context, now time.Time) (int, error)
}

type overdueService struct {
	tasks            repository.TaskRepository
	users            repository.UserRepository
	activity         ActivityRecorder
	systemActorEmail string
	logger           zerolog.Logger
}

// NewOverdueService builds the overdue scanner. systemActorEmail designates
// the account automated entries are attributed to; when that account is
// missing or inactive the first active admin is used instead.
func NewOverdueService(tasks repository.TaskRepository, users repository.UserRepository, activity ActivityRecorder, systemActorEmail string, logger zerolog.Logger) OverdueScanner {
	return &overdueService{
		tasks:            tasks,
		users:            users,
		activity:         activity,
		systemActorEmail: systemActorEmail,
		logger:           logger.With().Str("component", "overdue_scanner").Logger(),
	}
}

func (s *overdueService) Scan(ctx context.Context, now time.Time) (int, error) {
	actor, err := s.resolveSystemActor(ctx)
	if err != nil {
		return 0, err
	}

	overdue, err := s.tasks.ListOverdue(ctx, startOfDay(now))
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, task := range overdue {
		assignedTo := "none"
		if task.AssignedToID != nil {
			assignedTo = fmt.Sprintf("%d", *task.AssignedToID)
		}

		entry := ActivityEntry{
			ActorID: actor.ID,
			Action:  models.ActionTaskOverdue,
			Description: fmt.Sprintf("Task overdue: %s (ID: %d) created_by: %d, assigned_to: %s",
				task.Title, task.ID, task.CreatedByID, assignedTo),
			Metadata: taskMetadata(task),
		}

		if err := s.activity.Record(ctx, entry); err != nil {
			s.logger.Warn().Err(err).Uint("task_id", task.ID).Msg("failed to log overdue task")
			continue
		}
		processed++
	}

	s.logger.Info().Int("processed", processed).Int("found", len(overdue)).Msg("overdue scan finished")
	return processed, nil
}

// resolveSystemActor looks up the configured system account and falls back to
// the first active admin when it is absent or inactive. With neither
// available the scan fails and reports zero processed.
func (s *overdueService) resolveSystemActor(ctx context.Context) (models.User, error) {
	email := strings.TrimSpace(s.systemActorEmail)
	if email != "" {
		actor, err := s.users.GetByEmail(ctx, email)
		if err == nil && actor.Active {
			return actor, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, err
		}
		s.logger.Warn().Str("email", email).Msg("system actor unavailable, falling back to first active admin")
	}

	admin, err := s.users.FirstActiveAdmin(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNoSystemActor
		}
		return models.User{}, err
	}

	return admin, nil
}
