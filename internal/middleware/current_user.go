package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

// CurrentUser loads the authenticated account referenced by the JWT and
// stores it in the request locals. Deactivated accounts are rejected here,
// for every authenticated route, regardless of what their token says.
func CurrentUser(users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		value := c.Locals("user_id")
		userID, ok := value.(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		user, err := users.GetByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.SendError(c, fiber.StatusUnauthorized, "account no longer exists")
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to load account")
		}

		if !user.Active {
			return utils.SendError(c, fiber.StatusForbidden, "account is inactive")
		}

		c.Locals("current_user", user)
		return c.Next()
	}
}

// UserFromContext returns the loaded current user, if any.
func UserFromContext(c *fiber.Ctx) (models.User, bool) {
	value := c.Locals("current_user")
	user, ok := value.(models.User)
	return user, ok
}
