package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/features/equipment"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// mockBookingRepo keeps bookings in a slice and answers conflict queries
// with the same interval logic the real repository encodes in its query.
type mockBookingRepo struct {
	bookings []Booking
}

func (m *mockBookingRepo) Create(ctx context.Context, b *Booking) error {
	b.ID = primitive.NewObjectID()
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			b := m.bookings[i]
			return &b, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockBookingRepo) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Booking, int64, error) {
	return m.bookings, int64(len(m.bookings)), nil
}

func (m *mockBookingRepo) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			if s, ok := update["status"].(Status); ok {
				m.bookings[i].Status = s
			}
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *mockBookingRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *mockBookingRepo) FindConflicts(ctx context.Context, equipmentID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]Booking, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.EquipmentID != equipmentID || b.ID == excludeID {
			continue
		}
		if !holdsCalendar(b.Status) {
			continue
		}
		if Overlaps(start, end, b.StartDate, b.EndDate) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) CountOpenForEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error) {
	var n int64
	for _, b := range m.bookings {
		if b.EquipmentID == equipmentID && holdsCalendar(b.Status) {
			n++
		}
	}
	return n, nil
}

func (m *mockBookingRepo) FindExpiredActive(ctx context.Context, now time.Time) ([]Booking, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.Status == StatusActive && b.EndDate.Before(now) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, b := range m.bookings {
		out[string(b.Status)]++
	}
	return out, nil
}

func (m *mockBookingRepo) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range m.bookings {
		if (b.Status == StatusPending || b.Status == StatusActive) && b.StartDate.After(now) {
			n++
		}
	}
	return n, nil
}

func (m *mockBookingRepo) EnsureIndexes(ctx context.Context) error { return nil }

// mockEquipmentRepo tracks a single item and the status writes made to it.
type mockEquipmentRepo struct {
	item         *equipment.Equipment
	statusWrites []equipment.Status
}

func (m *mockEquipmentRepo) Create(ctx context.Context, item *equipment.Equipment) error { return nil }

func (m *mockEquipmentRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*equipment.Equipment, error) {
	if m.item != nil && m.item.ID == id {
		return m.item, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *mockEquipmentRepo) FindBySerial(ctx context.Context, serial string) (*equipment.Equipment, error) {
	return nil, mongo.ErrNoDocuments
}

func (m *mockEquipmentRepo) List(ctx context.Context, filter bson.M, limit, offset int64) ([]equipment.Equipment, int64, error) {
	return nil, 0, nil
}

func (m *mockEquipmentRepo) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return nil
}

func (m *mockEquipmentRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status equipment.Status) error {
	m.statusWrites = append(m.statusWrites, status)
	return nil
}

func (m *mockEquipmentRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

func (m *mockEquipmentRepo) CountByField(ctx context.Context, field string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (m *mockEquipmentRepo) UpsertBySerial(ctx context.Context, item *equipment.Equipment) (bool, error) {
	return false, nil
}

func (m *mockEquipmentRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockAudit struct{}

func (m *mockAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (m *mockAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type mockNotifier struct {
	notified int
}

func (m *mockNotifier) Notify(ctx context.Context, userID primitive.ObjectID, title, message, ntype, link string) error {
	m.notified++
	return nil
}

type mockEvents struct {
	events []common_models.Event
}

func (m *mockEvents) Publish(event common_models.Event) {
	m.events = append(m.events, event)
}

func newTestService() (*BookingServiceImpl, *mockBookingRepo, *mockEquipmentRepo, *mockNotifier, *mockEvents) {
	item := &equipment.Equipment{
		ID:           primitive.NewObjectID(),
		Name:         "Sony FX6",
		SerialNumber: "FX6-0001",
		Status:       equipment.StatusAvailable,
	}
	repo := &mockBookingRepo{}
	eqRepo := &mockEquipmentRepo{item: item}
	notifier := &mockNotifier{}
	events := &mockEvents{}
	svc := NewBookingService(repo, eqRepo, &mockAudit{}, notifier, events).(*BookingServiceImpl)
	return svc, repo, eqRepo, notifier, events
}

func TestCreateRejectsConflictingRange(t *testing.T) {
	svc, repo, eqRepo, _, _ := newTestService()
	userID := primitive.NewObjectID()

	existing := Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      userID,
		StartDate:   day("2024-01-01"),
		EndDate:     day("2024-01-05"),
		Status:      StatusActive,
	}
	repo.bookings = append(repo.bookings, existing)

	err := svc.Create(context.Background(), &Booking{
		EquipmentID: eqRepo.item.ID,
		UserID:      userID,
		StartDate:   day("2024-01-04"),
		EndDate:     day("2024-01-10"),
	})
	if !errors.Is(err, ErrBookingConflict) {
		t.Fatalf("Create() error = %v, want ErrBookingConflict", err)
	}

	err = svc.Create(context.Background(), &Booking{
		EquipmentID: eqRepo.item.ID,
		UserID:      userID,
		StartDate:   day("2024-01-06"),
		EndDate:     day("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("Create() after existing range failed: %v", err)
	}
}

func TestCreateIgnoresCancelledHolds(t *testing.T) {
	svc, repo, eqRepo, _, _ := newTestService()
	userID := primitive.NewObjectID()

	repo.bookings = append(repo.bookings, Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      userID,
		StartDate:   day("2024-01-01"),
		EndDate:     day("2024-01-05"),
		Status:      StatusCancelled,
	})

	err := svc.Create(context.Background(), &Booking{
		EquipmentID: eqRepo.item.ID,
		UserID:      userID,
		StartDate:   day("2024-01-04"),
		EndDate:     day("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("Create() over a cancelled booking failed: %v", err)
	}
}

func TestCreateSetsPendingAndPublishes(t *testing.T) {
	svc, _, eqRepo, _, events := newTestService()

	b := &Booking{
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   day("2024-02-01"),
		EndDate:     day("2024-02-03"),
		Status:      StatusActive, // client-supplied status must be ignored
	}
	if err := svc.Create(context.Background(), b); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if b.Status != StatusPending {
		t.Errorf("new booking status = %s, want pending", b.Status)
	}
	if len(events.events) != 1 || events.events[0].Type != "booking.created" {
		t.Errorf("expected a booking.created event, got %+v", events.events)
	}
}

func TestCreateRejectsMissingEquipment(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	err := svc.Create(context.Background(), &Booking{
		EquipmentID: primitive.NewObjectID(),
		UserID:      primitive.NewObjectID(),
		StartDate:   day("2024-02-01"),
		EndDate:     day("2024-02-03"),
	})
	if !errors.Is(err, ErrEquipmentMissing) {
		t.Fatalf("Create() error = %v, want ErrEquipmentMissing", err)
	}
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc, _, eqRepo, _, _ := newTestService()

	err := svc.Create(context.Background(), &Booking{
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   day("2024-02-10"),
		EndDate:     day("2024-02-01"),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Create() error = %v, want ErrInvalidRange", err)
	}
}

func TestChangeStatusEnforcesLifecycle(t *testing.T) {
	svc, repo, eqRepo, notifier, _ := newTestService()

	b := Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   day("2024-01-01"),
		EndDate:     day("2024-01-05"),
		Status:      StatusPending,
	}
	repo.bookings = append(repo.bookings, b)

	// pending -> completed is illegal
	err := svc.ChangeStatus(context.Background(), b.ID, StatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ChangeStatus(pending->completed) error = %v, want ErrInvalidTransition", err)
	}

	// pending -> active checks the equipment out and notifies the user
	if err := svc.ChangeStatus(context.Background(), b.ID, StatusActive); err != nil {
		t.Fatalf("ChangeStatus(pending->active) failed: %v", err)
	}
	if len(eqRepo.statusWrites) != 1 || eqRepo.statusWrites[0] != equipment.StatusCheckedOut {
		t.Errorf("equipment status writes = %v, want [checked-out]", eqRepo.statusWrites)
	}
	if notifier.notified != 1 {
		t.Errorf("notifications sent = %d, want 1", notifier.notified)
	}

	// active -> completed releases the equipment
	if err := svc.ChangeStatus(context.Background(), b.ID, StatusCompleted); err != nil {
		t.Fatalf("ChangeStatus(active->completed) failed: %v", err)
	}
	if got := eqRepo.statusWrites[len(eqRepo.statusWrites)-1]; got != equipment.StatusAvailable {
		t.Errorf("final equipment status write = %s, want available", got)
	}

	// completed is terminal
	err = svc.ChangeStatus(context.Background(), b.ID, StatusCancelled)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ChangeStatus(completed->cancelled) error = %v, want ErrInvalidTransition", err)
	}
}

func TestDeleteRefusesInProgress(t *testing.T) {
	svc, repo, eqRepo, _, _ := newTestService()

	b := Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   day("2024-01-01"),
		EndDate:     day("2024-01-05"),
		Status:      StatusActive,
	}
	repo.bookings = append(repo.bookings, b)

	if err := svc.Delete(context.Background(), b.ID); err == nil {
		t.Fatal("Delete() of an active booking should fail")
	}

	repo.bookings[0].Status = StatusCompleted
	if err := svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete() of a completed booking failed: %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	svc, repo, eqRepo, _, _ := newTestService()

	repo.bookings = append(repo.bookings, Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   day("2024-01-01"),
		EndDate:     day("2024-01-05"),
		Status:      StatusPending,
	})

	res, err := svc.CheckAvailability(context.Background(), eqRepo.item.ID, day("2024-01-04"), day("2024-01-10"))
	if err != nil {
		t.Fatalf("CheckAvailability() failed: %v", err)
	}
	if res.Available || len(res.Conflicts) != 1 {
		t.Errorf("got available=%v conflicts=%d, want unavailable with 1 conflict", res.Available, len(res.Conflicts))
	}

	res, err = svc.CheckAvailability(context.Background(), eqRepo.item.ID, day("2024-01-06"), day("2024-01-10"))
	if err != nil {
		t.Fatalf("CheckAvailability() failed: %v", err)
	}
	if !res.Available {
		t.Errorf("range after the hold should be available, conflicts=%v", res.Conflicts)
	}
}

func TestMarkOverdue(t *testing.T) {
	svc, repo, eqRepo, notifier, events := newTestService()

	past := Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   time.Now().AddDate(0, 0, -10),
		EndDate:     time.Now().AddDate(0, 0, -2),
		Status:      StatusActive,
	}
	current := Booking{
		ID:          primitive.NewObjectID(),
		EquipmentID: eqRepo.item.ID,
		UserID:      primitive.NewObjectID(),
		StartDate:   time.Now().AddDate(0, 0, -1),
		EndDate:     time.Now().AddDate(0, 0, 3),
		Status:      StatusActive,
	}
	repo.bookings = append(repo.bookings, past, current)

	n, err := svc.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("MarkOverdue() failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("MarkOverdue() = %d, want 1", n)
	}

	got, _ := repo.FindByID(context.Background(), past.ID)
	if got.Status != StatusOverdue {
		t.Errorf("expired booking status = %s, want overdue", got.Status)
	}
	still, _ := repo.FindByID(context.Background(), current.ID)
	if still.Status != StatusActive {
		t.Errorf("running booking status = %s, want active", still.Status)
	}
	if notifier.notified != 1 {
		t.Errorf("notifications sent = %d, want 1", notifier.notified)
	}
	if len(events.events) != 1 || events.events[0].Type != "booking.overdue" {
		t.Errorf("expected a booking.overdue event, got %+v", events.events)
	}
}
