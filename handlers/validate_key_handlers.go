package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Yuki-bach/ditationable/utils"
)

// validateKeyPayload is the JSON body of POST /validate-key.
type validateKeyPayload struct {
	APIKey string `json:"apiKey" validate:"required"`
}

// ValidateKey handles POST /validate-key: checks the supplied credential
// against the provider without transcribing anything.
func (h *ApplicationHandler) ValidateKey(c *fiber.Ctx) error {
	var payload validateKeyPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	payload.APIKey = utils.SanitizeInput(payload.APIKey)
	if err := h.Validator.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "API key is required")
	}

	valid := h.Service.ValidateKey(c.UserContext(), payload.APIKey)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"valid": valid,
	})
}
