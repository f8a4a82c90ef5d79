package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/service"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

const defaultLogPageSize = 20

type ActivityLogHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

func NewActivityLogHandler(activity service.ActivityService, logger zerolog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		activity: activity,
		logger:   logger.With().Str("component", "activity_log_handler").Logger(),
	}
}

func (h *ActivityLogHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing or invalid token")
	}

	page, pageSize, err := parsePagination(c, defaultLogPageSize)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID, err := parseQueryInt(c, "user_id")
	if err != nil || userID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id filter")
	}

	response, err := h.activity.List(c.Context(), actor, dto.ActivityLogListRequest{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Action:   c.Query("action"),
	})
	if err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "activity logs retrieved", response)
}
