package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/service"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// parsePagination reads page/page_size query values, clamping the page size
// to the given default and sane bounds.
func parsePagination(c *fiber.Ctx, defaultPageSize int) (int, int, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return 0, 0, errors.New("invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return 0, 0, errors.New("invalid page size")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	} else if pageSize > 100 {
		pageSize = 100
	}

	return page, pageSize, nil
}

func actorFromContext(c *fiber.Ctx) (models.User, bool) {
	return middleware.UserFromContext(c)
}

// sendDomainError translates service-layer errors into the HTTP envelope.
// Access denials, policy violations, validation failures and missing records
// each map to distinct responses.
func sendDomainError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	var fieldError *service.FieldError
	var policyViolation *service.PolicyViolationError

	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrAccessDenied):
		return utils.SendError(c, fiber.StatusForbidden, "you do not have access to this resource")
	case errors.Is(err, service.ErrSelfDeleteForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "you cannot delete your own account")
	case errors.As(err, &policyViolation):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, policyViolation.Reason)
	case errors.As(err, &fieldError):
		return utils.SendValidationError(c, "validation failed", map[string]string{
			fieldError.Field: fieldError.Message,
		})
	case errors.As(err, &validationErrors):
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
		return utils.SendValidationError(c, "validation failed", fields)
	default:
		logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
