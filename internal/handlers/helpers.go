package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"github.com/namisapo/minna-diary-backend/internal/services"
)

// requireUser loads the authenticated user's row for write paths that
// need role or silence flags, not just the id. When it returns false the
// 401 response has already been written.
func requireUser(c *fiber.Ctx, auth *services.AuthService) (*models.User, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
		return nil, false
	}

	user, err := auth.Me(c.Context(), userID)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
		return nil, false
	}

	return user, true
}
