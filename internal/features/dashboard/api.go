package dashboard

import (
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DashboardApi struct {
	controller *DashboardController
	config     *config.Config
}

func NewDashboardApi(controller *DashboardController, config *config.Config) *DashboardApi {
	return &DashboardApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers dashboard routes
func (h *DashboardApi) Setup(app *fiber.App) {
	dash := app.Group("/api/dashboard", middleware.AuthMiddleware(h.config.SkipAuth))

	dash.Get("/stats", h.controller.GetStats)
}
