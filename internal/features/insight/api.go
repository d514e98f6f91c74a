package insight

import (
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InsightApi struct {
	controller *InsightController
	config     *config.Config
}

func NewInsightApi(controller *InsightController, config *config.Config) *InsightApi {
	return &InsightApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers insight routes
func (h *InsightApi) Setup(app *fiber.App) {
	insights := app.Group("/api/insights", middleware.AuthMiddleware(h.config.SkipAuth))

	insights.Get("/", h.controller.GetInsights)

	staff := middleware.RequireRole(common_models.RoleAdmin, common_models.RoleStaff)
	insights.Get("/rules", staff, h.controller.ListRules)
	insights.Post("/rules", staff, h.controller.CreateRule)
	insights.Put("/rules/:id", staff, h.controller.UpdateRule)
	insights.Delete("/rules/:id", staff, h.controller.DeleteRule)
}
