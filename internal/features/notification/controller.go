package notification

import (
	"strconv"

	"gearbook/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationController struct {
	Service NotificationService
}

func NewNotificationController(service NotificationService) *NotificationController {
	return &NotificationController{Service: service}
}

func currentUserID(c *fiber.Ctx) (primitive.ObjectID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// ListNotifications godoc
// @Summary      List the current user's notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Unread only"
// @Success      200 {object} map[string]interface{}
// @Router       /api/notifications [get]
func (ctrl *NotificationController) ListNotifications(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	unreadOnly := c.Query("unread") == "true"

	notifications, err := ctrl.Service.ListForUser(c.UserContext(), userID, unreadOnly, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if notifications == nil {
		notifications = []Notification{}
	}

	unread, _ := ctrl.Service.CountUnread(c.UserContext(), userID)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread":        unread,
	})
}

// MarkRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID"
// @Success      200 {object} map[string]string
// @Router       /api/notifications/{id}/read [patch]
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid notification ID",
		})
	}

	if err := ctrl.Service.MarkRead(c.UserContext(), id, userID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notification marked as read",
	})
}

// MarkAllRead godoc
// @Summary      Mark all the current user's notifications as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /api/notifications/read-all [post]
func (ctrl *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	count, err := ctrl.Service.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Notifications marked as read",
		"count":   count,
	})
}
