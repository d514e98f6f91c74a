package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/features/audit"
	"gearbook/internal/features/equipment"
	"gearbook/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrBookingConflict   = errors.New("equipment is already booked for this range")
	ErrInvalidRange      = errors.New("end date must not be before start date")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrEquipmentMissing  = errors.New("equipment not found")
)

// Notifier raises a user-facing notification. Satisfied by the
// notification service, adapted in main.
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, message, ntype, link string) error
}

// EventPublisher pushes change events to the websocket feed.
type EventPublisher interface {
	Publish(event common_models.Event)
}

type ListQuery struct {
	Status      string
	EquipmentID string
	UserID      string
	Page        int64
	Limit       int64
}

type BookingService interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	List(ctx context.Context, q ListQuery) ([]Booking, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, b *Booking) (*Booking, error)
	ChangeStatus(ctx context.Context, id primitive.ObjectID, to Status) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CheckAvailability(ctx context.Context, equipmentID primitive.ObjectID, start, end time.Time) (*AvailabilityResult, error)
	GetStats(ctx context.Context) (*Stats, error)
	MarkOverdue(ctx context.Context) (int, error)
}

type BookingServiceImpl struct {
	repo          BookingRepository
	equipmentRepo equipment.EquipmentRepository
	auditService  audit.AuditService
	notifier      Notifier
	events        EventPublisher
}

func NewBookingService(repo BookingRepository, equipmentRepo equipment.EquipmentRepository, auditService audit.AuditService, notifier Notifier, events EventPublisher) BookingService {
	return &BookingServiceImpl{
		repo:          repo,
		equipmentRepo: equipmentRepo,
		auditService:  auditService,
		notifier:      notifier,
		events:        events,
	}
}

func (s *BookingServiceImpl) Create(ctx context.Context, b *Booking) error {
	if b.EquipmentID.IsZero() || b.UserID.IsZero() {
		return errors.New("equipment_id and user_id are required")
	}
	if b.EndDate.Before(b.StartDate) {
		return ErrInvalidRange
	}
	if b.Priority != "" && b.Priority != PriorityLow && b.Priority != PriorityNormal && b.Priority != PriorityHigh {
		return errors.New("invalid priority")
	}

	if _, err := s.equipmentRepo.FindByID(ctx, b.EquipmentID); err != nil {
		return ErrEquipmentMissing
	}

	// Re-check availability right before the insert. The earlier advisory
	// check from the client is not trusted.
	conflicts, err := s.repo.FindConflicts(ctx, b.EquipmentID, b.StartDate, b.EndDate, primitive.NilObjectID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return ErrBookingConflict
	}

	b.Status = StatusPending
	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionCreate, "bookings", b.ID.Hex(), map[string]common_models.Change{
		"booking": {New: b},
	})
	s.events.Publish(common_models.Event{
		Type:      "booking.created",
		RecordID:  b.ID.Hex(),
		Data:      b,
		Timestamp: time.Now(),
	})
	return nil
}

func (s *BookingServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *BookingServiceImpl) List(ctx context.Context, q ListQuery) ([]Booking, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 25
	}

	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.EquipmentID != "" {
		oid, err := primitive.ObjectIDFromHex(q.EquipmentID)
		if err != nil {
			return nil, 0, errors.New("invalid equipment id")
		}
		filter["equipment_id"] = oid
	}
	if q.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(q.UserID)
		if err != nil {
			return nil, 0, errors.New("invalid user id")
		}
		filter["user_id"] = oid
	}

	return s.repo.List(ctx, filter, q.Limit, (q.Page-1)*q.Limit)
}

func (s *BookingServiceImpl) Update(ctx context.Context, id primitive.ObjectID, b *Booking) (*Booking, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if existing.Status == StatusCompleted || existing.Status == StatusCancelled {
		return nil, errors.New("cannot edit a closed booking")
	}
	if b.EndDate.Before(b.StartDate) {
		return nil, ErrInvalidRange
	}

	// Date moves must not collide with other holds on the same equipment.
	if !b.StartDate.Equal(existing.StartDate) || !b.EndDate.Equal(existing.EndDate) {
		conflicts, err := s.repo.FindConflicts(ctx, existing.EquipmentID, b.StartDate, b.EndDate, id)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, ErrBookingConflict
		}
	}

	update := bson.M{
		"start_date": b.StartDate,
		"end_date":   b.EndDate,
		"start_time": b.StartTime,
		"end_time":   b.EndTime,
		"purpose":    b.Purpose,
		"notes":      b.Notes,
	}
	if b.Priority != "" {
		update["priority"] = b.Priority
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionUpdate, "bookings", id.Hex(), map[string]common_models.Change{
		"booking": {Old: existing, New: b},
	})

	return s.repo.FindByID(ctx, id)
}

func (s *BookingServiceImpl) ChangeStatus(ctx context.Context, id primitive.ObjectID, to Status) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if !CanTransition(existing.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, to)
	}

	update := bson.M{"status": to}
	if to == StatusActive {
		if claims, ok := ctx.Value(utils.ClaimsContextKey).(*utils.UserClaims); ok {
			if approver, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
				update["approved_by"] = approver
			}
		}
	}

	if err := s.repo.Update(ctx, id, update); err != nil {
		return err
	}

	// Keep the equipment status in step with the booking lifecycle.
	switch to {
	case StatusActive:
		_ = s.equipmentRepo.UpdateStatus(ctx, existing.EquipmentID, equipment.StatusCheckedOut)
	case StatusCompleted, StatusCancelled:
		if existing.Status == StatusActive || existing.Status == StatusOverdue {
			_ = s.equipmentRepo.UpdateStatus(ctx, existing.EquipmentID, equipment.StatusAvailable)
		}
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionApproval, "bookings", id.Hex(), map[string]common_models.Change{
		"status": {Old: existing.Status, New: to},
	})
	s.events.Publish(common_models.Event{
		Type:      "booking.status",
		RecordID:  id.Hex(),
		Data:      map[string]interface{}{"status": string(to)},
		Timestamp: time.Now(),
	})

	switch to {
	case StatusActive:
		_ = s.notifier.Notify(ctx, existing.UserID, "Booking approved",
			"Your booking has been approved.", "success", "/bookings/"+id.Hex())
	case StatusCancelled:
		_ = s.notifier.Notify(ctx, existing.UserID, "Booking cancelled",
			"Your booking has been cancelled.", "warning", "/bookings/"+id.Hex())
	}

	return nil
}

func (s *BookingServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if existing.Status == StatusActive || existing.Status == StatusOverdue {
		return errors.New("cannot delete a booking that is in progress")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionDelete, "bookings", id.Hex(), map[string]common_models.Change{
		"booking": {Old: existing, New: "DELETED"},
	})
	s.events.Publish(common_models.Event{
		Type:      "booking.deleted",
		RecordID:  id.Hex(),
		Timestamp: time.Now(),
	})
	return nil
}

// CheckAvailability is the read-only advisory check. Creation re-runs the
// same query server-side.
func (s *BookingServiceImpl) CheckAvailability(ctx context.Context, equipmentID primitive.ObjectID, start, end time.Time) (*AvailabilityResult, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	conflicts, err := s.repo.FindConflicts(ctx, equipmentID, start, end, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []Booking{}
	}

	return &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

func (s *BookingServiceImpl) GetStats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.repo.CountUpcoming(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}

	return &Stats{
		Total:    total,
		ByStatus: byStatus,
		Upcoming: upcoming,
		Overdue:  byStatus[string(StatusOverdue)],
	}, nil
}

// MarkOverdue promotes active bookings past their end date to overdue and
// notifies the affected users. Returns the number of bookings relabelled.
func (s *BookingServiceImpl) MarkOverdue(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpiredActive(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, b := range expired {
		if err := s.repo.Update(ctx, b.ID, bson.M{"status": StatusOverdue}); err != nil {
			continue
		}
		marked++

		_ = s.auditService.LogChange(ctx, common_models.AuditActionStatus, "bookings", b.ID.Hex(), map[string]common_models.Change{
			"status": {Old: StatusActive, New: StatusOverdue},
		})
		_ = s.notifier.Notify(ctx, b.UserID, "Booking overdue",
			"Your booking has passed its return date. Please return the equipment.", "warning", "/bookings/"+b.ID.Hex())
		s.events.Publish(common_models.Event{
			Type:      "booking.overdue",
			RecordID:  b.ID.Hex(),
			Timestamp: time.Now(),
		})
	}

	return marked, nil
}
