package booking

import (
	"errors"
	"strconv"
	"time"

	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingController struct {
	Service BookingService
}

func NewBookingController(service BookingService) *BookingController {
	return &BookingController{Service: service}
}

// BookingRequest is the write payload. Dates accept "2006-01-02" or RFC3339.
type BookingRequest struct {
	EquipmentID string `json:"equipment_id"`
	UserID      string `json:"user_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Purpose     string `json:"purpose"`
	Notes       string `json:"notes"`
	Priority    string `json:"priority"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (req *BookingRequest) toBooking(defaultUserID string) (*Booking, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, errors.New("invalid start_date")
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, errors.New("invalid end_date")
	}

	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errors.New("invalid user_id")
	}

	b := &Booking{
		UserID:    uid,
		StartDate: start,
		EndDate:   end,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Notes:     req.Notes,
		Priority:  Priority(req.Priority),
	}
	if req.EquipmentID != "" {
		eid, err := primitive.ObjectIDFromHex(req.EquipmentID)
		if err != nil {
			return nil, errors.New("invalid equipment_id")
		}
		b.EquipmentID = eid
	}
	return b, nil
}

// CreateBooking godoc
// @Summary      Create a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        input body BookingRequest true "Booking"
// @Success      201 {object} Booking
// @Failure      409 {object} map[string]string
// @Router       /api/bookings [post]
func (ctrl *BookingController) CreateBooking(c *fiber.Ctx) error {
	var req BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	defaultUser := ""
	if claims := middleware.GetClaims(c); claims != nil {
		defaultUser = claims.UserID
	}

	b, err := req.toBooking(defaultUser)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := ctrl.Service.Create(c.UserContext(), b); err != nil {
		switch {
		case errors.Is(err, ErrBookingConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrEquipmentMissing):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(b)
}

// ListBookings godoc
// @Summary      List bookings
// @Tags         bookings
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        equipment_id query string false "Filter by equipment"
// @Param        user_id query string false "Filter by user"
// @Success      200 {object} map[string]interface{}
// @Router       /api/bookings [get]
func (ctrl *BookingController) ListBookings(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "25"), 10, 64)

	bookings, total, err := ctrl.Service.List(c.UserContext(), ListQuery{
		Status:      c.Query("status"),
		EquipmentID: c.Query("equipment_id"),
		UserID:      c.Query("user_id"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"total":    total,
		"page":     page,
	})
}

// ListUserBookings godoc
// @Summary      List a user's bookings
// @Tags         bookings
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} map[string]interface{}
// @Router       /api/bookings/user/{userId} [get]
func (ctrl *BookingController) ListUserBookings(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "25"), 10, 64)

	bookings, total, err := ctrl.Service.List(c.UserContext(), ListQuery{
		UserID: c.Params("userId"),
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"total":    total,
		"page":     page,
	})
}

// GetBooking godoc
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} Booking
// @Router       /api/bookings/{id} [get]
func (ctrl *BookingController) GetBooking(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	b, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Booking not found",
		})
	}

	return c.JSON(b)
}

// UpdateBooking godoc
// @Summary      Update a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} Booking
// @Failure      409 {object} map[string]string
// @Router       /api/bookings/{id} [put]
func (ctrl *BookingController) UpdateBooking(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var req BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	defaultUser := ""
	if claims := middleware.GetClaims(c); claims != nil {
		defaultUser = claims.UserID
	}

	b, err := req.toBooking(defaultUser)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	updated, err := ctrl.Service.Update(c.UserContext(), id, b)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrBookingConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(updated)
}

// ChangeStatus godoc
// @Summary      Approve, cancel or complete a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} map[string]string
// @Router       /api/bookings/{id}/status [patch]
func (ctrl *BookingController) ChangeStatus(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var body struct {
		Status Status `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.ChangeStatus(c.UserContext(), id, body.Status); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrInvalidTransition):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Booking status updated successfully",
	})
}

// DeleteBooking godoc
// @Summary      Delete a booking
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID"
// @Success      200 {object} map[string]string
// @Router       /api/bookings/{id} [delete]
func (ctrl *BookingController) DeleteBooking(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	if err := ctrl.Service.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Booking deleted successfully",
	})
}

// CheckAvailability godoc
// @Summary      Check whether a range is free for an equipment item
// @Tags         bookings
// @Produce      json
// @Param        equipment_id query string true "Equipment ID"
// @Param        start_date query string true "Start date"
// @Param        end_date query string true "End date"
// @Success      200 {object} AvailabilityResult
// @Router       /api/bookings/check-availability [get]
func (ctrl *BookingController) CheckAvailability(c *fiber.Ctx) error {
	equipmentID, err := primitive.ObjectIDFromHex(c.Query("equipment_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment_id",
		})
	}

	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid start_date",
		})
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid end_date",
		})
	}

	result, err := ctrl.Service.CheckAvailability(c.UserContext(), equipmentID, start, end)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// EquipmentAvailability godoc
// @Summary      Check a date range for one equipment item by path
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Equipment ID"
// @Param        start_date query string true "Start date"
// @Param        end_date query string true "End date"
// @Success      200 {object} AvailabilityResult
// @Router       /api/equipment/{id}/availability [get]
func (ctrl *BookingController) EquipmentAvailability(c *fiber.Ctx) error {
	equipmentID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	start, err := parseDate(c.Query("start_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid start_date",
		})
	}
	end, err := parseDate(c.Query("end_date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid end_date",
		})
	}

	result, err := ctrl.Service.CheckAvailability(c.UserContext(), equipmentID, start, end)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// GetStats godoc
// @Summary      Booking statistics
// @Tags         bookings
// @Produce      json
// @Success      200 {object} Stats
// @Router       /api/bookings/stats [get]
func (ctrl *BookingController) GetStats(c *fiber.Ctx) error {
	stats, err := ctrl.Service.GetStats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(stats)
}
