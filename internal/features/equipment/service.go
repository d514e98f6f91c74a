package equipment

import (
	"context"
	"errors"
	"math"
	"time"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/features/audit"
	"gearbook/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("equipment not found")
	ErrDuplicateSerial = errors.New("equipment with this serial number already exists")
	ErrHasBookings     = errors.New("equipment has open bookings")
)

// BookingGuard answers whether an equipment item still has bookings that
// block deletion. Satisfied by the booking repository, adapted in main.
type BookingGuard interface {
	CountOpenForEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error)
}

// EventPublisher pushes change events to the websocket feed.
type EventPublisher interface {
	Publish(event common_models.Event)
}

type ListQuery struct {
	Category string
	Status   string
	Search   string
	Page     int64
	Limit    int64
}

type EquipmentService interface {
	Create(ctx context.Context, item *Equipment) error
	Get(ctx context.Context, id primitive.ObjectID) (*Equipment, error)
	GetBySerial(ctx context.Context, serial string) (*Equipment, error)
	List(ctx context.Context, q ListQuery) ([]Equipment, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, item *Equipment) (*Equipment, error)
	ChangeStatus(ctx context.Context, id primitive.ObjectID, status Status) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetStats(ctx context.Context) (*Stats, error)
}

type EquipmentServiceImpl struct {
	repo         EquipmentRepository
	bookings     BookingGuard
	auditService audit.AuditService
	events       EventPublisher
}

func NewEquipmentService(repo EquipmentRepository, bookings BookingGuard, auditService audit.AuditService, events EventPublisher) EquipmentService {
	return &EquipmentServiceImpl{
		repo:         repo,
		bookings:     bookings,
		auditService: auditService,
		events:       events,
	}
}

func (s *EquipmentServiceImpl) Create(ctx context.Context, item *Equipment) error {
	if item.Name == "" {
		return errors.New("equipment name is required")
	}
	if item.SerialNumber == "" {
		return errors.New("serial number is required")
	}
	item.SerialNumber = utils.NormalizeSerial(item.SerialNumber)

	if _, err := s.repo.FindBySerial(ctx, item.SerialNumber); err == nil {
		return ErrDuplicateSerial
	}

	if item.Status != "" && !ValidStatus(item.Status) {
		return errors.New("invalid equipment status")
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionCreate, "equipment", item.ID.Hex(), map[string]common_models.Change{
		"equipment": {New: item},
	})
	s.events.Publish(common_models.Event{
		Type:      "equipment.created",
		RecordID:  item.ID.Hex(),
		Data:      item,
		Timestamp: time.Now(),
	})
	return nil
}

func (s *EquipmentServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*Equipment, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *EquipmentServiceImpl) GetBySerial(ctx context.Context, serial string) (*Equipment, error) {
	item, err := s.repo.FindBySerial(ctx, utils.NormalizeSerial(serial))
	if err != nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (s *EquipmentServiceImpl) List(ctx context.Context, q ListQuery) ([]Equipment, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 25
	}

	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: q.Search, Options: "i"}
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": pattern}},
			{"serial_number": bson.M{"$regex": pattern}},
			{"location": bson.M{"$regex": pattern}},
		}
	}

	return s.repo.List(ctx, filter, q.Limit, (q.Page-1)*q.Limit)
}

func (s *EquipmentServiceImpl) Update(ctx context.Context, id primitive.ObjectID, item *Equipment) (*Equipment, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if item.Name == "" {
		return nil, errors.New("equipment name is required")
	}

	update := bson.M{
		"name":        item.Name,
		"category":    item.Category,
		"description": item.Description,
		"location":    item.Location,
		"condition":   item.Condition,
		"daily_value": item.DailyValue,
		"image_url":   item.ImageURL,
	}
	if item.SerialNumber != "" {
		serial := utils.NormalizeSerial(item.SerialNumber)
		if serial != existing.SerialNumber {
			if _, err := s.repo.FindBySerial(ctx, serial); err == nil {
				return nil, ErrDuplicateSerial
			}
		}
		update["serial_number"] = serial
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionUpdate, "equipment", id.Hex(), map[string]common_models.Change{
		"equipment": {Old: existing, New: item},
	})

	return s.repo.FindByID(ctx, id)
}

func (s *EquipmentServiceImpl) ChangeStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	if !ValidStatus(status) {
		return errors.New("invalid equipment status")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if existing.Status == status {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionStatus, "equipment", id.Hex(), map[string]common_models.Change{
		"status": {Old: existing.Status, New: status},
	})
	s.events.Publish(common_models.Event{
		Type:      "equipment.status",
		RecordID:  id.Hex(),
		Data:      map[string]interface{}{"status": string(status)},
		Timestamp: time.Now(),
	})
	return nil
}

func (s *EquipmentServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	open, err := s.bookings.CountOpenForEquipment(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		return ErrHasBookings
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionDelete, "equipment", id.Hex(), map[string]common_models.Change{
		"equipment": {Old: existing, New: "DELETED"},
	})
	s.events.Publish(common_models.Event{
		Type:      "equipment.deleted",
		RecordID:  id.Hex(),
		Timestamp: time.Now(),
	})
	return nil
}

func (s *EquipmentServiceImpl) GetStats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.repo.CountByField(ctx, "status")
	if err != nil {
		return nil, err
	}
	byCategory, err := s.repo.CountByField(ctx, "category")
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	available := byStatus[string(StatusAvailable)]

	return &Stats{
		Total:       total,
		Available:   available,
		Utilization: UtilizationRate(total, available),
		ByStatus:    byStatus,
		ByCategory:  byCategory,
	}, nil
}

// UtilizationRate is round((total-available)/total*100); zero inventory
// yields zero, not a division by zero.
func UtilizationRate(total, available int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(total-available) / float64(total) * 100))
}
