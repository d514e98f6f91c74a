package equipment

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EquipmentController struct {
	Service EquipmentService
}

func NewEquipmentController(service EquipmentService) *EquipmentController {
	return &EquipmentController{Service: service}
}

// CreateEquipment godoc
// @Summary      Add an equipment item
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Param        input body Equipment true "Equipment"
// @Success      201 {object} Equipment
// @Failure      409 {object} map[string]string
// @Router       /api/equipment [post]
func (ctrl *EquipmentController) CreateEquipment(c *fiber.Ctx) error {
	var item Equipment
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.Create(c.UserContext(), &item); err != nil {
		if errors.Is(err, ErrDuplicateSerial) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// ListEquipment godoc
// @Summary      List equipment
// @Tags         equipment
// @Produce      json
// @Param        category query string false "Filter by category"
// @Param        status query string false "Filter by status"
// @Param        search query string false "Search name/serial/location"
// @Success      200 {object} map[string]interface{}
// @Router       /api/equipment [get]
func (ctrl *EquipmentController) ListEquipment(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "25"), 10, 64)

	items, total, err := ctrl.Service.List(c.UserContext(), ListQuery{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"equipment": items,
		"total":     total,
		"page":      page,
	})
}

// GetEquipment godoc
// @Summary      Get an equipment item
// @Tags         equipment
// @Produce      json
// @Param        id path string true "Equipment ID"
// @Success      200 {object} Equipment
// @Router       /api/equipment/{id} [get]
func (ctrl *EquipmentController) GetEquipment(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	item, err := ctrl.Service.Get(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Equipment not found",
		})
	}

	return c.JSON(item)
}

// UpdateEquipment godoc
// @Summary      Update an equipment item
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Param        id path string true "Equipment ID"
// @Success      200 {object} Equipment
// @Router       /api/equipment/{id} [put]
func (ctrl *EquipmentController) UpdateEquipment(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	var item Equipment
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updated, err := ctrl.Service.Update(c.UserContext(), id, &item)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrDuplicateSerial):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(updated)
}

// ChangeStatus godoc
// @Summary      Change equipment status
// @Tags         equipment
// @Accept       json
// @Produce      json
// @Param        id path string true "Equipment ID"
// @Success      200 {object} map[string]string
// @Router       /api/equipment/{id}/status [patch]
func (ctrl *EquipmentController) ChangeStatus(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
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
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Status updated successfully",
	})
}

// DeleteEquipment godoc
// @Summary      Delete an equipment item
// @Tags         equipment
// @Produce      json
// @Param        id path string true "Equipment ID"
// @Success      200 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /api/equipment/{id} [delete]
func (ctrl *EquipmentController) DeleteEquipment(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	if err := ctrl.Service.Delete(c.UserContext(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, ErrHasBookings):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Equipment deleted successfully",
	})
}

// GetStats godoc
// @Summary      Equipment statistics
// @Tags         equipment
// @Produce      json
// @Success      200 {object} Stats
// @Router       /api/equipment/stats [get]
func (ctrl *EquipmentController) GetStats(c *fiber.Ctx) error {
	stats, err := ctrl.Service.GetStats(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(stats)
}
