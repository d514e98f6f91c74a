package sync

import (
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	config     *config.Config
}

func NewSyncApi(controller *SyncController, config *config.Config) *SyncApi {
	return &SyncApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers legacy sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	legacy := app.Group("/api/sync",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole(common_models.RoleAdmin))

	legacy.Post("/legacy", h.controller.ImportLegacy)
}
