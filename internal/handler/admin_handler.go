package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/service"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

// AdminHandler exposes maintenance operations restricted to administrators.
type AdminHandler struct {
	scanner service.OverdueScanner
	logger  zerolog.Logger
}

func NewAdminHandler(scanner service.OverdueScanner, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		scanner: scanner,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// OverdueScan triggers an immediate pass over overdue tasks.
func (h *AdminHandler) OverdueScan(c *fiber.Ctx) error {
	processed, err := h.scanner.Scan(c.Context(), time.Now())
	if err != nil {
		if errors.Is(err, service.ErrNoSystemActor) {
			return utils.SendError(c, fiber.StatusInternalServerError, "no system actor available for overdue scan")
		}
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "overdue scan completed", fiber.Map{"processed": processed})
}
