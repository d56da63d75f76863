package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/namisapo/minna-diary-backend/internal/config"
	"github.com/namisapo/minna-diary-backend/internal/handlers"
	"github.com/namisapo/minna-diary-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	diaryHandler *handlers.DiaryHandler,
	commentHandler *handlers.CommentHandler,
	blockHandler *handlers.BlockHandler,
	profileHandler *handlers.ProfileHandler,
	settingsHandler *handlers.SettingsHandler,
	moderationHandler *handlers.ModerationHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// System settings are public reads; the admin write path is below.
	api.Get("/settings", settingsHandler.GetAll)

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google", authHandler.GoogleSignIn)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Current user and profile
	api.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Put("/me", middleware.JWTProtected(cfg), profileHandler.Update)
	api.Post("/me/avatar", middleware.JWTProtected(cfg), profileHandler.UploadAvatar)
	api.Delete("/me/avatar", middleware.JWTProtected(cfg), profileHandler.DeleteAvatar)

	// Diary board. Reads are public; an optional token only adds block
	// filtering and liked_by_viewer.
	api.Get("/diaries", middleware.JWTOptional(cfg), diaryHandler.Feed)
	api.Get("/diaries/:id", middleware.JWTOptional(cfg), diaryHandler.Get)
	api.Get("/diaries/:id/share", diaryHandler.Share)
	api.Get("/diaries/:id/comments", middleware.JWTOptional(cfg), commentHandler.List)

	api.Post("/diaries", middleware.JWTProtected(cfg), diaryHandler.Create)
	api.Patch("/diaries/:id", middleware.JWTProtected(cfg), diaryHandler.Update)
	api.Delete("/diaries/:id", middleware.JWTProtected(cfg), diaryHandler.Delete)
	api.Post("/diaries/:id/like", middleware.JWTProtected(cfg), diaryHandler.ToggleLike)
	api.Post("/diaries/:id/comments", middleware.JWTProtected(cfg), commentHandler.Create)
	api.Delete("/comments/:commentId", middleware.JWTProtected(cfg), commentHandler.Delete)

	// Public profiles
	api.Get("/users/:userId", middleware.JWTOptional(cfg), profileHandler.Get)
	api.Get("/users/:userId/diaries", middleware.JWTOptional(cfg), diaryHandler.UserEntries)

	// Blocks
	api.Get("/blocks", middleware.JWTProtected(cfg), blockHandler.List)
	api.Post("/blocks", middleware.JWTProtected(cfg), blockHandler.Block)
	api.Delete("/blocks/:userId", middleware.JWTProtected(cfg), blockHandler.Unblock)
	api.Put("/blocks/:userId/toggle", middleware.JWTProtected(cfg), blockHandler.Toggle)

	// Reports (any signed-in user)
	api.Post("/reports", middleware.JWTProtected(cfg), moderationHandler.CreateReport)

	// Admin dashboard
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/stats", moderationHandler.Stats)
	admin.Get("/users", moderationHandler.ListUsers)
	admin.Put("/users/:id/block", moderationHandler.SetUserBlocked)
	admin.Get("/reports", moderationHandler.ListReports)
	admin.Put("/reports/:id", moderationHandler.ActionReport)
	admin.Put("/settings/:key", settingsHandler.Update)
}
