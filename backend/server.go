package backend

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fantasyrun/runner-market/backend/handlers"
	"github.com/fantasyrun/runner-market/backend/middleware"
	"github.com/fantasyrun/runner-market/internal/config"
)

// NewApp builds the API server. limiter may be nil to disable rate limiting.
func NewApp(webApp *handlers.WebApp, cfg config.WebConfig, limiter *middleware.RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Runner Market API",
		ServerHeader: "Runner-Market",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	if len(cfg.AllowOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.AllowOrigins, ","),
			AllowMethods: "GET,POST,DELETE,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept," + middleware.UserHeader,
		}))
	}
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp, limiter)
	return app
}

func setupRoutes(app *fiber.App, webApp *handlers.WebApp, limiter *middleware.RateLimiter) {
	app.Get("/health", handlers.HealthCheck(webApp))

	api := app.Group("/api")
	api.Get("/listings", handlers.GetListings(webApp))
	api.Get("/cards/:id/bids", handlers.GetOpenBidsForCard(webApp))
	api.Get("/runners", handlers.SearchRunners(webApp))

	user := api.Group("", middleware.UserRequired())
	if limiter != nil {
		user.Use(middleware.RateLimit(limiter))
	}
	user.Post("/listings", handlers.CreateListing(webApp))
	user.Delete("/listings/:id", handlers.CancelListing(webApp))
	user.Post("/listings/:id/bids", handlers.PlaceListingBid(webApp))
	user.Post("/cards/:id/bids", handlers.PlaceOpenBid(webApp))
	user.Post("/bids/:id/accept", handlers.AcceptOpenBid(webApp))
	user.Get("/users/:id/bids", handlers.GetUserBids(webApp))
	user.Post("/packs", handlers.PurchasePack(webApp))
}
