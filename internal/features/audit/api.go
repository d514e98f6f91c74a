package audit

import (
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers audit routes (admin only)
func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth))
	audit.Get("/", middleware.RequireRole(common_models.RoleAdmin), h.controller.ListLogs)
}
