package insight

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type InsightController struct {
	Service InsightService
}

func NewInsightController(service InsightService) *InsightController {
	return &InsightController{Service: service}
}

// GetInsights godoc
// @Summary      Generated insight feed for the current inventory state
// @Tags         insights
// @Produce      json
// @Success      200 {array} Insight
// @Router       /api/insights [get]
func (ctrl *InsightController) GetInsights(c *fiber.Ctx) error {
	insights, err := ctrl.Service.GetInsights(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(insights)
}

// ListRules godoc
// @Summary      List all insight rules
// @Tags         insights
// @Produce      json
// @Success      200 {array} InsightRule
// @Router       /api/insights/rules [get]
func (ctrl *InsightController) ListRules(c *fiber.Ctx) error {
	rules, err := ctrl.Service.ListRules(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if rules == nil {
		rules = []InsightRule{}
	}
	return c.JSON(rules)
}

// CreateRule godoc
// @Summary      Create an insight rule
// @Tags         insights
// @Accept       json
// @Produce      json
// @Success      201 {object} InsightRule
// @Router       /api/insights/rules [post]
func (ctrl *InsightController) CreateRule(c *fiber.Ctx) error {
	var rule InsightRule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.CreateRule(c.UserContext(), &rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

// UpdateRule godoc
// @Summary      Update an insight rule
// @Tags         insights
// @Accept       json
// @Produce      json
// @Param        id path string true "Rule ID"
// @Success      200 {object} InsightRule
// @Router       /api/insights/rules/{id} [put]
func (ctrl *InsightController) UpdateRule(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid rule ID",
		})
	}

	var rule InsightRule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateRule(c.UserContext(), id, &rule); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Rule not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	rule.ID = id
	return c.JSON(rule)
}

// DeleteRule godoc
// @Summary      Delete an insight rule
// @Tags         insights
// @Param        id path string true "Rule ID"
// @Success      200 {object} map[string]string
// @Router       /api/insights/rules/{id} [delete]
func (ctrl *InsightController) DeleteRule(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid rule ID",
		})
	}

	if err := ctrl.Service.DeleteRule(c.UserContext(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Rule not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Rule deleted"})
}
