package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/events"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/policy"
	"github.com/taskdesk/taskdesk-api/internal/repository"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	ActorID     uint
	Action      string
	Description string
	Metadata    map[string]interface{}
}

// ActivityRecorder defines behaviour for recording activity logs. Recording
// happens synchronously right after a successful mutation and is best-effort:
// callers observe failures but never fail the triggering operation over them.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
}

// ActivityService exposes methods to persist and query the audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, actor models.User, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error)
}

type activityService struct {
	repo      repository.ActivityLogRepository
	publisher *events.Publisher
	logger    zerolog.Logger
}

// NewActivityService constructs the activity log service. The publisher may
// be nil when no event broker is configured.
func NewActivityService(repo repository.ActivityLogRepository, publisher *events.Publisher, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) error {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	if action == "" {
		return fmt.Errorf("action is required")
	}

	model := models.ActivityLog{
		UserID:      entry.ActorID,
		Action:      action,
		Description: strings.TrimSpace(entry.Description),
		Metadata:    toJSONMap(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity log")
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishActivity(model); err != nil {
			s.logger.Warn().Err(err).Str("action", action).Msg("failed to publish activity event")
		}
	}

	return nil
}

func (s *activityService) List(ctx context.Context, actor models.User, req dto.ActivityLogListRequest) (dto.ActivityLogListResponse, error) {
	if !policy.CanViewLogs(actor) {
		return dto.ActivityLogListResponse{}, ErrAccessDenied
	}

	filter := repository.ActivityLogFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Action:   strings.TrimSpace(req.Action),
	}
	if req.UserID > 0 {
		filter.UserID = &req.UserID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityLogListResponse{}, err
	}

	responses := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityLogResponse(entry))
	}

	return dto.ActivityLogListResponse{
		Items:      responses,
		Pagination: paginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func toJSONMap(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}
	data := datatypes.JSONMap{}
	for key, value := range metadata {
		data[key] = value
	}
	return data
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		meta.TotalPages = 1
	}
	return meta
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
