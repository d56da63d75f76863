package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"github.com/namisapo/minna-diary-backend/internal/services"
)

type DiaryHandler struct {
	diaryService *services.DiaryService
	authService  *services.AuthService
}

func NewDiaryHandler(diaryService *services.DiaryService, authService *services.AuthService) *DiaryHandler {
	return &DiaryHandler{diaryService: diaryService, authService: authService}
}

// parseFeedFilters reads the board's query params. Dates are calendar
// days (YYYY-MM-DD) interpreted in server-local time, inclusive on both
// ends.
func parseFeedFilters(c *fiber.Ctx) (services.FeedFilters, error) {
	filters := services.FeedFilters{
		Keyword: c.Query("keyword"),
		Author:  c.Query("author"),
		Emotion: c.Query("emotion"),
		Page:    c.QueryInt("page", 0),
		Limit:   c.QueryInt("limit", services.DefaultPageSize),
	}

	if v := c.Query("date_from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return filters, errors.New("date_from must be YYYY-MM-DD")
		}
		from := services.DayStart(t, time.Local)
		filters.DateFrom = &from
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return filters, errors.New("date_to must be YYYY-MM-DD")
		}
		to := services.DayEnd(t, time.Local)
		filters.DateTo = &to
	}

	return filters, nil
}

func (h *DiaryHandler) Feed(c *fiber.Ctx) error {
	filters, err := parseFeedFilters(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	resp, err := h.diaryService.GetFeed(c.Context(), middleware.ViewerID(c), filters)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEmotion) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load feed",
		})
	}

	return c.JSON(resp)
}

func (h *DiaryHandler) Get(c *fiber.Ctx) error {
	diaryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid diary id",
		})
	}

	resp, err := h.diaryService.Get(c.Context(), middleware.ViewerID(c), diaryID)
	if err != nil {
		if errors.Is(err, services.ErrDiaryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load entry",
		})
	}

	return c.JSON(resp)
}

// UserEntries serves a profile page's post list: the user's public
// entries, newest first.
func (h *DiaryHandler) UserEntries(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", services.DefaultPageSize)

	resp, err := h.diaryService.UserEntries(c.Context(), middleware.ViewerID(c), userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load entries",
		})
	}

	return c.JSON(resp)
}

func (h *DiaryHandler) Create(c *fiber.Ctx) error {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return nil
	}

	var req dto.CreateDiaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.diaryService.Create(c.Context(), user, &req)
	if err != nil {
		return writeDiaryError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *DiaryHandler) Update(c *fiber.Ctx) error {
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

	var req dto.UpdateDiaryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	entry, err := h.diaryService.Update(c.Context(), user, diaryID, &req)
	if err != nil {
		return writeDiaryError(c, err)
	}

	return c.JSON(entry)
}

func (h *DiaryHandler) Delete(c *fiber.Ctx) error {
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

	if err := h.diaryService.Delete(c.Context(), user, diaryID); err != nil {
		return writeDiaryError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Entry deleted"})
}

func (h *DiaryHandler) ToggleLike(c *fiber.Ctx) error {
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

	resp, err := h.diaryService.ToggleLike(c.Context(), user, diaryID)
	if err != nil {
		return writeDiaryError(c, err)
	}

	return c.JSON(resp)
}

func (h *DiaryHandler) Share(c *fiber.Ctx) error {
	diaryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid diary id",
		})
	}

	url, err := h.diaryService.ShareURL(c.Context(), diaryID)
	if err != nil {
		if errors.Is(err, services.ErrDiaryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to build share URL",
		})
	}

	return c.JSON(dto.ShareResponse{URL: url})
}

// writeDiaryError maps diary/comment service errors onto HTTP statuses.
func writeDiaryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrDiaryNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrAccountSilenced),
		errors.Is(err, services.ErrAnonymousDisabled):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrContentRequired),
		errors.Is(err, services.ErrContentTooLong),
		errors.Is(err, services.ErrCommentTooLong),
		errors.Is(err, services.ErrInvalidEmotion),
		errors.Is(err, services.ErrContentInappropriate):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
