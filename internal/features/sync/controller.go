package sync

import (
	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{Service: service}
}

// ImportLegacy godoc
// @Summary      Import inventory from the legacy SQL database
// @Tags         sync
// @Accept       json
// @Produce      json
// @Success      200 {object} Result
// @Failure      502 {object} map[string]string
// @Router       /api/sync/legacy [post]
func (ctrl *SyncController) ImportLegacy(c *fiber.Ctx) error {
	var body struct {
		Driver string `json:"driver"`
		DSN    string `json:"dsn"`
	}
	// Body is optional; defaults come from config
	_ = c.BodyParser(&body)

	result, err := ctrl.Service.ImportLegacy(c.UserContext(), body.Driver, body.DSN)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}
