package user

import (
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	users.Get("/", middleware.RequireRole(common_models.RoleAdmin, common_models.RoleStaff), h.controller.ListUsers)
	users.Get("/:id", h.controller.GetUser)
	users.Put("/:id", h.controller.UpdateProfile)
	users.Patch("/:id/role", middleware.RequireRole(common_models.RoleAdmin), h.controller.UpdateRole)
	users.Patch("/:id/status", middleware.RequireRole(common_models.RoleAdmin), h.controller.UpdateStatus)
}
