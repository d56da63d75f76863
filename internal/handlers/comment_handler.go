package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"github.com/namisapo/minna-diary-backend/internal/services"
)

type CommentHandler struct {
	commentService *services.CommentService
	authService    *services.AuthService
}

func NewCommentHandler(commentService *services.CommentService, authService *services.AuthService) *CommentHandler {
	return &CommentHandler{commentService: commentService, authService: authService}
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	diaryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid diary id",
		})
	}

	resp, err := h.commentService.List(c.Context(), middleware.ViewerID(c), diaryID)
	if err != nil {
		return writeDiaryError(c, err)
	}

	return c.JSON(resp)
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	diaryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid diary id",
		})
	}

	user, ok := requireUser(c, h.authService)
	if !ok {
		return nil
	}

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.commentService.Create(c.Context(), user, diaryID, &req)
	if err != nil {
		return writeDiaryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid comment id",
		})
	}

	user, ok := requireUser(c, h.authService)
	if !ok {
		return nil
	}

	if err := h.commentService.Delete(c.Context(), user, commentID); err != nil {
		return writeDiaryError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
