package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/amberline/internal/config"
	"github.com/example/amberline/internal/handlers"
	"github.com/example/amberline/internal/middleware"
	"github.com/example/amberline/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	emailService := services.NewEmailService(cfg)
	dispatcher := services.NewNotificationDispatcher(emailService, telegramService)

	orderResolver := services.NewOrderResolver(db)
	returnStore := services.NewReturnStore(db, orderResolver)
	raGenerator := services.NewRANumberGenerator(db)
	lifecycle := services.NewLifecycle(raGenerator)
	returnService := services.NewReturnService(returnStore, orderResolver, lifecycle, dispatcher, cfg.StoreTimeout)

	authHandler := handlers.NewAuthHandler(db, cfg)
	orderHandler := handlers.NewOrderHandler(db)
	returnHandler := handlers.NewReturnRequestHandler(returnService)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Guest-capable routes: identity is attached when a token is present.
	optional := api.Group("", middleware.OptionalAuthMiddleware(cfg, db))
	optional.Post("/orders", orderHandler.CreateOrder)
	optional.Post("/returns", returnHandler.Create)

	// Protected routes. Staff-only rights on returns are enforced by the
	// access checks inside the service, not by the route.
	protected := api.Group("", middleware.AuthMiddleware(cfg, db))

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	protected.Get("/returns", returnHandler.List)
	protected.Get("/returns/:id", returnHandler.Get)
	protected.Put("/returns/:id/status", returnHandler.Transition)
	protected.Delete("/returns/:id", returnHandler.Delete)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	admin := protected.Group("/admin")
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/returns/recent", adminHandler.RecentReturnRequests)
}
