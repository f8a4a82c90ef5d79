package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the common envelope for all API responses: a success or
// error status, a human-readable message and, where relevant, the payload or
// per-field errors.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP
// status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Status:  "error",
		Message: message,
	})
}

// SendValidationError sends an unprocessable-entity response carrying
// per-field detail.
func SendValidationError(c *fiber.Ctx, message string, fieldErrors map[string]string) error {
	if message == "" {
		message = "validation failed"
	}

	return c.Status(fiber.StatusUnprocessableEntity).JSON(APIResponse{
		Status:  "error",
		Message: message,
		Errors:  fieldErrors,
	})
}
