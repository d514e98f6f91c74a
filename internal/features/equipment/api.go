package equipment

import (
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EquipmentApi struct {
	controller *EquipmentController
	config     *config.Config
}

func NewEquipmentApi(controller *EquipmentController, config *config.Config) *EquipmentApi {
	return &EquipmentApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all equipment routes
func (h *EquipmentApi) Setup(app *fiber.App) {
	items := app.Group("/api/equipment", middleware.AuthMiddleware(h.config.SkipAuth))

	items.Get("/", h.controller.ListEquipment)
	items.Get("/stats", h.controller.GetStats)
	items.Get("/:id", h.controller.GetEquipment)

	staff := middleware.RequireRole(common_models.RoleAdmin, common_models.RoleStaff)
	items.Post("/", staff, h.controller.CreateEquipment)
	items.Put("/:id", staff, h.controller.UpdateEquipment)
	items.Patch("/:id/status", staff, h.controller.ChangeStatus)
	items.Delete("/:id", middleware.RequireRole(common_models.RoleAdmin), h.controller.DeleteEquipment)
}
