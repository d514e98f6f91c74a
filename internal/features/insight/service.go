package insight

import (
	"context"
	"fmt"
	"time"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/features/booking"
	"gearbook/internal/features/equipment"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventPublisher pushes generated insights onto the websocket feed.
type EventPublisher interface {
	Publish(event common_models.Event)
}

type InsightService interface {
	GetInsights(ctx context.Context) ([]Insight, error)
	HandleEvent(ctx context.Context, event common_models.Event)
	ListRules(ctx context.Context) ([]InsightRule, error)
	CreateRule(ctx context.Context, rule *InsightRule) error
	UpdateRule(ctx context.Context, id primitive.ObjectID, rule *InsightRule) error
	DeleteRule(ctx context.Context, id primitive.ObjectID) error
}

type InsightServiceImpl struct {
	rules            RuleRepository
	equipmentService equipment.EquipmentService
	bookingService   booking.BookingService
	events           EventPublisher
	logger           *zap.Logger
}

func NewInsightService(rules RuleRepository, equipmentService equipment.EquipmentService, bookingService booking.BookingService, events EventPublisher, logger *zap.Logger) InsightService {
	return &InsightServiceImpl{
		rules:            rules,
		equipmentService: equipmentService,
		bookingService:   bookingService,
		events:           events,
		logger:           logger,
	}
}

// GetInsights builds the feed from current stats, then runs every enabled
// snapshot rule on top. A broken rule is logged and skipped, never fatal.
func (s *InsightServiceImpl) GetInsights(ctx context.Context) ([]Insight, error) {
	eqStats, err := s.equipmentService.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	bkStats, err := s.bookingService.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	insights := builtinInsights(eqStats, bkStats, now)

	rules, err := s.rules.FindAll(ctx, true)
	if err != nil {
		return nil, err
	}

	snapshot := statsSnapshot(eqStats, bkStats)
	for _, rule := range rules {
		if rule.Trigger != TriggerSnapshot {
			continue
		}
		result, err := EvaluateRule(ctx, rule.Script, snapshot)
		if err != nil {
			s.logger.Warn("insight rule failed",
				zap.String("rule", rule.Name),
				zap.Error(err))
			continue
		}
		if result.Message == "" {
			continue
		}
		insights = append(insights, Insight{
			Kind:        "rule",
			Title:       rule.Name,
			Message:     result.Message,
			Severity:    result.Severity,
			GeneratedAt: now,
		})
	}

	return insights, nil
}

// triggerForEvent maps feed event types to rule triggers. Events with no
// trigger (including insight.generated itself) are ignored.
func triggerForEvent(event common_models.Event) Trigger {
	switch event.Type {
	case "booking.created":
		return TriggerBookingCreated
	case "booking.overdue":
		return TriggerBookingOverdue
	case "equipment.status":
		if data, ok := event.Data.(map[string]interface{}); ok {
			if data["status"] == string(equipment.StatusDamaged) {
				return TriggerEquipmentDamaged
			}
		}
	}
	return ""
}

// HandleEvent runs the enabled rules bound to the event's trigger against a
// fresh stats snapshot and republishes any hits as insight.generated events.
func (s *InsightServiceImpl) HandleEvent(ctx context.Context, event common_models.Event) {
	trigger := triggerForEvent(event)
	if trigger == "" {
		return
	}

	rules, err := s.rules.FindAll(ctx, true)
	if err != nil {
		s.logger.Error("failed to load insight rules", zap.Error(err))
		return
	}

	var snapshot map[string]interface{}
	for _, rule := range rules {
		if rule.Trigger != trigger {
			continue
		}
		if snapshot == nil {
			eqStats, err := s.equipmentService.GetStats(ctx)
			if err != nil {
				s.logger.Error("failed to snapshot stats", zap.Error(err))
				return
			}
			bkStats, err := s.bookingService.GetStats(ctx)
			if err != nil {
				s.logger.Error("failed to snapshot stats", zap.Error(err))
				return
			}
			snapshot = statsSnapshot(eqStats, bkStats)
			snapshot["record_id"] = event.RecordID
		}

		result, err := EvaluateRule(ctx, rule.Script, snapshot)
		if err != nil {
			s.logger.Warn("insight rule failed",
				zap.String("rule", rule.Name),
				zap.Error(err))
			continue
		}
		if result.Message == "" {
			continue
		}

		s.logger.Info("insight rule fired",
			zap.String("rule", rule.Name),
			zap.String("trigger", string(trigger)),
			zap.String("message", result.Message))
		s.events.Publish(common_models.Event{
			Type:     "insight.generated",
			RecordID: event.RecordID,
			Data: map[string]interface{}{
				"rule":     rule.Name,
				"message":  result.Message,
				"severity": result.Severity,
			},
			Timestamp: time.Now(),
		})
	}
}

func builtinInsights(eq *equipment.Stats, bk *booking.Stats, now time.Time) []Insight {
	insights := []Insight{
		{
			Kind:        "utilization",
			Title:       "Fleet utilization",
			Message:     fmt.Sprintf("%d%% of equipment is currently in use", eq.Utilization),
			Severity:    utilizationSeverity(eq.Utilization),
			Metric:      float64(eq.Utilization),
			GeneratedAt: now,
		},
	}

	if bk.Overdue > 0 {
		insights = append(insights, Insight{
			Kind:        "overdue",
			Title:       "Overdue bookings",
			Message:     fmt.Sprintf("%d booking(s) are past their end date", bk.Overdue),
			Severity:    "warning",
			Metric:      float64(bk.Overdue),
			GeneratedAt: now,
		})
	}

	if damaged := eq.ByStatus[string(equipment.StatusDamaged)]; damaged > 0 {
		insights = append(insights, Insight{
			Kind:        "damaged",
			Title:       "Damaged equipment",
			Message:     fmt.Sprintf("%d item(s) are flagged as damaged", damaged),
			Severity:    "critical",
			Metric:      float64(damaged),
			GeneratedAt: now,
		})
	}

	if name, count := topCategory(eq.ByCategory); name != "" {
		insights = append(insights, Insight{
			Kind:        "category",
			Title:       "Largest category",
			Message:     fmt.Sprintf("%s holds the most inventory (%d items)", name, count),
			Severity:    "info",
			Metric:      float64(count),
			GeneratedAt: now,
		})
	}

	return insights
}

func utilizationSeverity(pct int) string {
	switch {
	case pct >= 90:
		return "critical"
	case pct >= 70:
		return "warning"
	}
	return "info"
}

func topCategory(byCategory map[string]int64) (string, int64) {
	var name string
	var count int64
	for k, v := range byCategory {
		if v > count || (v == count && k < name) {
			name, count = k, v
		}
	}
	return name, count
}

// statsSnapshot flattens both stat blocks into the map rule scripts see.
func statsSnapshot(eq *equipment.Stats, bk *booking.Stats) map[string]interface{} {
	byStatus := map[string]interface{}{}
	for k, v := range eq.ByStatus {
		byStatus[k] = v
	}
	byCategory := map[string]interface{}{}
	for k, v := range eq.ByCategory {
		byCategory[k] = v
	}
	bookingsByStatus := map[string]interface{}{}
	for k, v := range bk.ByStatus {
		bookingsByStatus[k] = v
	}

	return map[string]interface{}{
		"equipment_total":       eq.Total,
		"equipment_available":   eq.Available,
		"utilization":           int64(eq.Utilization),
		"equipment_by_status":   byStatus,
		"equipment_by_category": byCategory,
		"bookings_total":        bk.Total,
		"bookings_by_status":    bookingsByStatus,
		"bookings_upcoming":     bk.Upcoming,
		"bookings_overdue":      bk.Overdue,
	}
}

func (s *InsightServiceImpl) ListRules(ctx context.Context) ([]InsightRule, error) {
	return s.rules.FindAll(ctx, false)
}

func (s *InsightServiceImpl) CreateRule(ctx context.Context, rule *InsightRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.rules.Create(ctx, rule)
}

func (s *InsightServiceImpl) UpdateRule(ctx context.Context, id primitive.ObjectID, rule *InsightRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	return s.rules.Update(ctx, id, rule)
}

func (s *InsightServiceImpl) DeleteRule(ctx context.Context, id primitive.ObjectID) error {
	return s.rules.Delete(ctx, id)
}

// validateRule rejects rules that can never run: missing fields, unknown
// triggers, or scripts that do not compile against an empty snapshot.
func validateRule(rule *InsightRule) error {
	if rule.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	switch rule.Trigger {
	case TriggerBookingCreated, TriggerBookingOverdue, TriggerEquipmentDamaged, TriggerSnapshot:
	default:
		return fmt.Errorf("unknown trigger %q", rule.Trigger)
	}
	if err := CompileRule(rule.Script); err != nil {
		return fmt.Errorf("invalid script: %w", err)
	}
	return nil
}
