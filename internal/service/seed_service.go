package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedResult summarises what a seed run created.
type SeedResult struct {
	UsersCreated int `json:"users_created"`
	TasksCreated int `json:"tasks_created"`
}

// SeedService provisions the default accounts (including the system actor)
// and a handful of sample tasks. Existing records are left untouched.
type SeedService interface {
	SeedDefaults(ctx context.Context, token string) (SeedResult, error)
}

type seedService struct {
	users            repository.UserRepository
	tasks            repository.TaskRepository
	systemActorEmail string
	enabled          bool
	token            string
	logger           zerolog.Logger
}

// NewSeedService constructs the seeding service.
func NewSeedService(users repository.UserRepository, tasks repository.TaskRepository, systemActorEmail string, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		users:            users,
		tasks:            tasks,
		systemActorEmail: systemActorEmail,
		enabled:          enabled,
		token:            token,
		logger:           logger.With().Str("component", "seed_service").Logger(),
	}
}

type seedUser struct {
	name   string
	email  string
	role   string
	active bool
}

func (s *seedService) SeedDefaults(ctx context.Context, token string) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return SeedResult{}, ErrSeedUnauthorized
	}

	systemEmail := strings.TrimSpace(s.systemActorEmail)
	if systemEmail == "" {
		systemEmail = "system@example.com"
	}

	defaults := []seedUser{
		{name: "System", email: systemEmail, role: models.RoleAdmin, active: true},
		{name: "Admin User", email: "admin@example.com", role: models.RoleAdmin, active: true},
		{name: "Manager User", email: "manager@example.com", role: models.RoleManager, active: true},
		{name: "Staff User One", email: "staff1@example.com", role: models.RoleStaff, active: true},
		{name: "Staff User Two", email: "staff2@example.com", role: models.RoleStaff, active: false},
	}

	result := SeedResult{}
	for _, candidate := range defaults {
		created, err := s.ensureUser(ctx, candidate)
		if err != nil {
			return result, err
		}
		if created {
			result.UsersCreated++
		}
	}

	tasksCreated, err := s.ensureSampleTasks(ctx)
	if err != nil {
		return result, err
	}
	result.TasksCreated = tasksCreated

	s.logger.Info().
		Int("users_created", result.UsersCreated).
		Int("tasks_created", result.TasksCreated).
		Msg("seed completed")

	return result, nil
}

func (s *seedService) ensureUser(ctx context.Context, candidate seedUser) (bool, error) {
	_, err := s.users.GetByEmail(ctx, candidate.email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := models.User{
		Name:     candidate.name,
		Email:    candidate.email,
		Password: string(hash),
		Role:     candidate.role,
		Active:   candidate.active,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return false, err
	}

	return true, nil
}

func (s *seedService) ensureSampleTasks(ctx context.Context) (int, error) {
	admin, err := s.users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		return 0, err
	}

	existing, _, err := s.tasks.ListVisible(ctx, admin, repository.TaskFilter{PageSize: 1})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	in7 := time.Now().AddDate(0, 0, 7)
	in14 := time.Now().AddDate(0, 0, 14)
	samples := []models.Task{
		{Title: "Build dashboard UI", Description: "Responsive dashboard views", Status: models.TaskStatusPending, DueDate: &in7},
		{Title: "Implement API authentication", Description: "Bearer token issuance and validation", Status: models.TaskStatusInProgress, DueDate: &in7},
		{Title: "End-to-end testing", Description: "Cover the main task flows", Status: models.TaskStatusPending, DueDate: &in14},
	}

	created := 0
	for i := range samples {
		samples[i].CreatedByID = admin.ID
		adminID := admin.ID
		samples[i].AssignedToID = &adminID
		if err := s.tasks.Create(ctx, &samples[i]); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	provided := strings.TrimSpace(token)
	if len(expected) != len(provided) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}
