package qr

import (
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type QRApi struct {
	controller *QRController
	config     *config.Config
}

func NewQRApi(controller *QRController, config *config.Config) *QRApi {
	return &QRApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers QR routes
func (h *QRApi) Setup(app *fiber.App) {
	codes := app.Group("/api/qr", middleware.AuthMiddleware(h.config.SkipAuth))

	codes.Get("/equipment/:id", h.controller.GenerateLabel)
	codes.Post("/scan", h.controller.Scan)
	codes.Get("/history", h.controller.History)
}
