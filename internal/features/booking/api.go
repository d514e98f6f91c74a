package booking

import (
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type BookingApi struct {
	controller *BookingController
	config     *config.Config
}

func NewBookingApi(controller *BookingController, config *config.Config) *BookingApi {
	return &BookingApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all booking routes
func (h *BookingApi) Setup(app *fiber.App) {
	bookings := app.Group("/api/bookings", middleware.AuthMiddleware(h.config.SkipAuth))

	bookings.Get("/", h.controller.ListBookings)
	bookings.Get("/stats", h.controller.GetStats)
	bookings.Get("/check-availability", h.controller.CheckAvailability)
	bookings.Get("/user/:userId", h.controller.ListUserBookings)
	bookings.Get("/:id", h.controller.GetBooking)
	bookings.Post("/", h.controller.CreateBooking)
	bookings.Put("/:id", h.controller.UpdateBooking)
	bookings.Patch("/:id/status", middleware.RequireRole(common_models.RoleAdmin, common_models.RoleStaff), h.controller.ChangeStatus)
	bookings.Delete("/:id", h.controller.DeleteBooking)

	// Availability by equipment path, for clients holding an equipment id
	app.Get("/api/equipment/:id/availability",
		middleware.AuthMiddleware(h.config.SkipAuth), h.controller.EquipmentAvailability)
}
