package qr

import (
	"errors"
	"strconv"

	"gearbook/internal/features/equipment"
	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QRController struct {
	Service QRService
}

func NewQRController(service QRService) *QRController {
	return &QRController{Service: service}
}

// GenerateLabel godoc
// @Summary      Render the QR label PNG for an equipment item
// @Tags         qr
// @Produce      png
// @Param        id path string true "Equipment ID"
// @Param        size query int false "Image size in pixels"
// @Success      200 {file} binary
// @Router       /api/qr/equipment/{id} [get]
func (ctrl *QRController) GenerateLabel(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid equipment ID",
		})
	}

	size, _ := strconv.Atoi(c.Query("size", "256"))

	png, err := ctrl.Service.GenerateLabel(c.UserContext(), id, size)
	if err != nil {
		if errors.Is(err, equipment.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// Scan godoc
// @Summary      Resolve a scanned QR code to its equipment item
// @Tags         qr
// @Accept       json
// @Produce      json
// @Success      200 {object} equipment.Equipment
// @Failure      404 {object} map[string]string
// @Router       /api/qr/scan [post]
func (ctrl *QRController) Scan(c *fiber.Ctx) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&body); err != nil || body.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "QR code is required",
		})
	}

	scannedBy := primitive.NilObjectID
	if claims := middleware.GetClaims(c); claims != nil {
		if oid, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			scannedBy = oid
		}
	}

	item, err := ctrl.Service.Scan(c.UserContext(), body.Code, scannedBy)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(item)
}

// History godoc
// @Summary      Recent QR scan history
// @Tags         qr
// @Produce      json
// @Param        mine query bool false "Only the current user's scans"
// @Success      200 {array} ScanEvent
// @Router       /api/qr/history [get]
func (ctrl *QRController) History(c *fiber.Ctx) error {
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)

	userID := primitive.NilObjectID
	if c.Query("mine") == "true" {
		if claims := middleware.GetClaims(c); claims != nil {
			if oid, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
				userID = oid
			}
		}
	}

	scans, err := ctrl.Service.History(c.UserContext(), userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(scans)
}
