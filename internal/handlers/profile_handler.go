package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/dto"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"github.com/namisapo/minna-diary-backend/internal/services"
	"github.com/namisapo/minna-diary-backend/internal/storage"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	avatars        *storage.AvatarStore
}

func NewProfileHandler(profileService *services.ProfileService, avatars *storage.AvatarStore) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, avatars: avatars}
}

func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	profile, err := h.profileService.Get(c.Context(), middleware.ViewerID(c), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load profile",
		})
	}

	return c.JSON(profile)
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if req.DisplayName == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "display_name is required",
		})
	}

	user, err := h.profileService.UpdateDisplayName(c.Context(), userID, *req.DisplayName)
	if err != nil {
		if errors.Is(err, services.ErrDisplayNameInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}

	return c.JSON(services.UserToResponse(user))
}

// UploadAvatar accepts a multipart "avatar" file, stores it in the object
// store and saves the public URL on the profile.
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if h.avatars == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Avatar storage is not configured",
		})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "avatar file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	avatarURL, err := h.avatars.Upload(c.Context(), userID, contentType, fileHeader.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAvatarTooLarge),
			errors.Is(err, storage.ErrAvatarBadType):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store avatar",
		})
	}

	if err := h.profileService.SetAvatarURL(c.Context(), userID, avatarURL); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save avatar URL",
		})
	}

	return c.JSON(dto.AvatarResponse{AvatarURL: avatarURL})
}

func (h *ProfileHandler) DeleteAvatar(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if h.avatars != nil {
		if err := h.avatars.Delete(c.Context(), userID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to delete avatar",
			})
		}
	}

	if err := h.profileService.SetAvatarURL(c.Context(), userID, ""); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to clear avatar URL",
		})
	}

	return c.JSON(fiber.Map{"message": "Avatar removed"})
}
