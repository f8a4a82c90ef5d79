package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/policy"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

// UserService exposes user account management use cases under the role rules.
type UserService interface {
	List(ctx context.Context, actor models.User, req dto.UserListRequest) (dto.UserListResponse, error)
	Get(ctx context.Context, actor models.User, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, actor models.User, payload dto.UserCreateRequest) (dto.UserResponse, error)
	Update(ctx context.Context, actor models.User, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error)
	Delete(ctx context.Context, actor models.User, id uint) error
}

type userService struct {
	repo      repository.UserRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService builds the user management service.
func NewUserService(repo repository.UserRepository, activity ActivityRecorder, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		activity:  activity,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, actor models.User, req dto.UserListRequest) (dto.UserListResponse, error) {
	if !policy.CanViewAnyUsers(actor) {
		return dto.UserListResponse{}, ErrAccessDenied
	}

	users, total, err := s.repo.List(ctx, repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     strings.TrimSpace(req.Role),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.UserListResponse{}, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}

	return dto.UserListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *userService) Get(ctx context.Context, actor models.User, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if !policy.CanViewUser(actor, user) {
		return dto.UserResponse{}, ErrAccessDenied
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, actor models.User, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if !policy.CanCreateUser(actor) {
		return dto.UserResponse{}, ErrAccessDenied
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return dto.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	active := true
	if payload.Active != nil {
		active = *payload.Active
	}

	user := models.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: string(hash),
		Role:     payload.Role,
		Active:   active,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Uint("actor_id", actor.ID).Msg("user created")
	s.recordActivity(ctx, actor.ID, models.ActionCreateUser,
		fmt.Sprintf("User created: %s (ID: %d)", user.Email, user.ID),
		map[string]interface{}{"target_user_id": user.ID, "role": user.Role})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, actor models.User, id uint, payload dto.UserUpdateRequest) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if !policy.CanUpdateUser(actor, user) {
		return dto.UserResponse{}, ErrAccessDenied
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	changedFields := make([]string, 0, 4)

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
		changedFields = append(changedFields, "name")
	}
	if payload.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*payload.Email))
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return dto.UserResponse{}, err
			}
		}
		user.Email = email
		changedFields = append(changedFields, "email")
	}
	if payload.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*payload.Password), bcrypt.DefaultCost)
		if err != nil {
			return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
		changedFields = append(changedFields, "password")
	}
	if payload.Role != nil {
		user.Role = *payload.Role
		changedFields = append(changedFields, "role")
	}
	if payload.Active != nil {
		user.Active = *payload.Active
		changedFields = append(changedFields, "active")
	}

	if len(changedFields) == 0 {
		return dto.NewUserResponse(user), nil
	}

	if err := s.repo.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Uint("actor_id", actor.ID).Msg("user updated")
	s.recordActivity(ctx, actor.ID, models.ActionUpdateUser,
		fmt.Sprintf("User updated: %s (ID: %d)", user.Email, user.ID),
		map[string]interface{}{"target_user_id": user.ID, "fields": changedFields})

	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, actor models.User, id uint) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !policy.CanDeleteUser(actor, user) {
		return ErrAccessDenied
	}

	// Checked after authorization: nobody removes their own account.
	if user.ID == actor.ID {
		return ErrSelfDeleteForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.logger.Info().Uint("user_id", id).Uint("actor_id", actor.ID).Msg("user deleted")
	s.recordActivity(ctx, actor.ID, models.ActionDeleteUser,
		fmt.Sprintf("User deleted: %s (ID: %d)", user.Email, id),
		map[string]interface{}{"target_user_id": id})

	return nil
}

func (s *userService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return &FieldError{Field: "email", Message: "already in use"}
	}
	return nil
}

func (s *userService) recordActivity(ctx context.Context, actorID uint, action, description string, metadata map[string]interface{}) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Record(ctx, ActivityEntry{
		ActorID:     actorID,
		Action:      action,
		Description: description,
		Metadata:    metadata,
	})
}
