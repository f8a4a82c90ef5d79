package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/dto"
	"github.com/taskdesk/taskdesk-api/internal/service"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

type AuthHandler struct {
	auth   service.AuthService
	logger zerolog.Logger
}

func NewAuthHandler(auth service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With().Str("component", "auth_handler").Logger(),
	}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.auth.Login(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrAccountInactive):
			return utils.SendError(c, fiber.StatusForbidden, "account is inactive")
		default:
			return sendDomainError(c, h.logger, err)
		}
	}

	return utils.SendSuccess(c, "login successful", response)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("token_jti").(string)
	expiresAt, _ := c.Locals("token_exp").(time.Time)
	if jti == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing or invalid token")
	}

	if err := h.auth.Logout(c.Context(), jti, expiresAt); err != nil {
		return sendDomainError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "logout successful", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing or invalid token")
	}

	return utils.SendSuccess(c, "current user retrieved", dto.NewUserResponse(actor))
}
