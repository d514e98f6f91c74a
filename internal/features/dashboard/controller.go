package dashboard

import (
	"github.com/gofiber/fiber/v2"
)

type DashboardController struct {
	Service DashboardService
}

func NewDashboardController(service DashboardService) *DashboardController {
	return &DashboardController{Service: service}
}

// GetStats godoc
// @Summary      Combined equipment and booking stats
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} Stats
// @Router       /api/dashboard/stats [get]
func (ctrl *DashboardController) GetStats(c *fiber.Ctx) error {
	stats, err := ctrl.Service.GetStats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(stats)
}
