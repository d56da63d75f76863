package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"github.com/namisapo/minna-diary-backend/internal/services"
)

type BlockHandler struct {
	blockService *services.BlockService
}

func NewBlockHandler(blockService *services.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

type blockedUserSummary struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

func (h *BlockHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	users, err := h.blockService.ListBlocked(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list blocked users",
		})
	}

	out := make([]blockedUserSummary, len(users))
	for i, u := range users {
		out[i] = blockedUserSummary{ID: u.ID, DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
	}

	return c.JSON(fiber.Map{"blocked_users": out, "total": len(out)})
}

func (h *BlockHandler) Block(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BlockUserRequest
	if err := c.BodyParser(&req); err != nil || req.BlockedID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "blocked_id is required",
		})
	}

	if err := h.blockService.Block(c.Context(), userID, req.BlockedID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfBlock):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrAlreadyBlocked):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to block user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User blocked"})
}

func (h *BlockHandler) Unblock(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if err := h.blockService.Unblock(c.Context(), userID, targetID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to unblock user",
		})
	}

	return c.JSON(fiber.Map{"message": "User unblocked"})
}

// Toggle flips the block relationship and reports the resulting state, so
// a single button can drive both directions.
func (h *BlockHandler) Toggle(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	targetID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	blocked, err := h.blockService.Toggle(c.Context(), userID, targetID)
	if err != nil {
		if errors.Is(err, services.ErrSelfBlock) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to toggle block",
		})
	}

	return c.JSON(dto.ToggleBlockResponse{Blocked: blocked})
}
