package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// RespondWithError sends the JSON error body the API contract promises:
// {"error": "..."}.
func RespondWithError(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"error": message,
	})
}

// FormatValidationErrors formats validation errors from validator/v10 into a
// single human-readable message.
func FormatValidationErrors(err error) string {
	var errors []string
	if err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err.Error()
		}
		for _, fieldErr := range validationErrs {
			element := fmt.Sprintf("Field '%s' failed on the '%s' tag", fieldErr.Field(), fieldErr.Tag())
			if fieldErr.Param() != "" {
				element = fmt.Sprintf("%s (value: %s)", element, fieldErr.Param())
			}
			errors = append(errors, element)
		}
	}
	return strings.Join(errors, "; ")
}

// SanitizeInput trims surrounding whitespace from user-supplied text fields.
func SanitizeInput(input string) string {
	return strings.TrimSpace(input)
}
