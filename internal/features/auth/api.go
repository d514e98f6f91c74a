package auth

import (
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	// Public routes
	app.Post("/api/register", h.controller.Register)
	app.Post("/api/login", h.controller.Login)
	app.Post("/api/auth/forgot-password", h.controller.ForgotPassword)
	app.Post("/api/auth/reset-password", h.controller.ResetPassword)

	// Protected routes
	authed := app.Group("/api/auth", middleware.AuthMiddleware(h.config.SkipAuth))
	authed.Get("/me", h.controller.Me)
	authed.Post("/change-password", h.controller.ChangePassword)
}
