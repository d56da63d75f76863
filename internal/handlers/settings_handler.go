package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetAll is public: clients read the toggles to decide which UI to show
// (registration form, anonymous checkbox, maintenance banner). The server
// re-checks every toggle on the corresponding write path.
func (h *SettingsHandler) GetAll(c *fiber.Ctx) error {
	settings, err := h.settingsService.GetAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load settings",
		})
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Setting key is required",
		})
	}

	var req dto.UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	setting, err := h.settingsService.Set(c.Context(), key, req.Value, req.Type)
	if err != nil {
		if errors.Is(err, services.ErrSettingValueRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update setting",
		})
	}

	return c.JSON(setting)
}
