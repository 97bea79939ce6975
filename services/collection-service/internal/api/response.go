// services/collection-service/internal/api/response.go
package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func errorJSON(c *fiber.Ctx, code int, message string, details interface{}) error {
	body := fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
	}
	if details != nil {
		body["errors"] = details
	}
	return c.Status(code).JSON(body)
}

// validationError reports every failed field with the tag it failed on.
func validationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errorJSON(c, fiber.StatusBadRequest, "invalid input", nil)
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return errorJSON(c, fiber.StatusBadRequest, "validation failed", fields)
}
