// Package server assembles the fiber application: middleware, routes, and
// error handling.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	devotphandler "roster-portal/internal/devotp/handler"
	healthhandler "roster-portal/internal/health/handler"
	identityhandler "roster-portal/internal/identity/handler"
	playerhandler "roster-portal/internal/player/handler"
	"roster-portal/internal/security"
	"roster-portal/internal/server/middleware"
)

// Deps holds everything the HTTP app needs. DevOTP is nil unless dev OTP mode
// is enabled.
type Deps struct {
	Tokens      *security.TokenProvider
	Auth        *identityhandler.HTTPHandler
	Player      *playerhandler.HTTPHandler
	Health      *healthhandler.HTTPHandler
	DevOTP      *devotphandler.HTTPHandler
	CORSOrigins string
}

// New builds the fiber app with middleware and all routes mounted.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	origins := deps.CORSOrigins
	if origins == "" {
		// fiber's cors middleware rejects credentials with a wildcard origin.
		origins = "http://localhost:3000"
	}

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
	}))

	if deps.Health != nil {
		deps.Health.Register(app)
	}

	api := app.Group("/api")

	if deps.Auth != nil {
		// Optional auth so logout can revoke the caller's session from the
		// Bearer token alone.
		deps.Auth.Register(api.Group("/auth", middleware.OptionalAuth(deps.Tokens)))
	}

	if deps.DevOTP != nil {
		deps.DevOTP.Register(api)
	}

	if deps.Player != nil {
		deps.Player.Register(api.Group("", middleware.RequireAuth(deps.Tokens)))
	}

	return app
}
