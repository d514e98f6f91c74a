package equipment

import (
	"context"
	"errors"
	"testing"

	common_models "gearbook/internal/common/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memRepo struct {
	items map[primitive.ObjectID]*Equipment
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[primitive.ObjectID]*Equipment{}}
}

func (m *memRepo) Create(ctx context.Context, item *Equipment) error {
	item.ID = primitive.NewObjectID()
	if item.Status == "" {
		item.Status = StatusAvailable
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Equipment, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memRepo) FindBySerial(ctx context.Context, serial string) (*Equipment, error) {
	for _, item := range m.items {
		if item.SerialNumber == serial {
			cp := *item
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memRepo) List(ctx context.Context, filter bson.M, limit, offset int64) ([]Equipment, int64, error) {
	var out []Equipment
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status Status) error {
	if item, ok := m.items[id]; ok {
		item.Status = status
		return nil
	}
	return mongo.ErrNoDocuments
}

func (m *memRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) CountByField(ctx context.Context, field string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, item := range m.items {
		switch field {
		case "status":
			out[string(item.Status)]++
		case "category":
			out[item.Category]++
		}
	}
	return out, nil
}

func (m *memRepo) UpsertBySerial(ctx context.Context, item *Equipment) (bool, error) {
	if existing, err := m.FindBySerial(ctx, item.SerialNumber); err == nil {
		item.ID = existing.ID
		m.items[existing.ID] = item
		return false, nil
	}
	return true, m.Create(ctx, item)
}

func (m *memRepo) EnsureIndexes(ctx context.Context) error { return nil }

type stubGuard struct {
	open int64
}

func (g *stubGuard) CountOpenForEquipment(ctx context.Context, equipmentID primitive.ObjectID) (int64, error) {
	return g.open, nil
}

type nopAudit struct{}

func (nopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type nopEvents struct{}

func (nopEvents) Publish(event common_models.Event) {}

func TestUtilizationRate(t *testing.T) {
	tests := []struct {
		total, available int64
		want             int
	}{
		{0, 0, 0},
		{10, 5, 50},
		{10, 10, 0},
		{10, 0, 100},
		{3, 1, 67},
		{3, 2, 33},
	}

	for _, tt := range tests {
		if got := UtilizationRate(tt.total, tt.available); got != tt.want {
			t.Errorf("UtilizationRate(%d, %d) = %d, want %d", tt.total, tt.available, got, tt.want)
		}
	}
}

func TestCreateNormalizesAndRejectsDuplicateSerial(t *testing.T) {
	repo := newMemRepo()
	svc := NewEquipmentService(repo, &stubGuard{}, nopAudit{}, nopEvents{})

	first := &Equipment{Name: "Sony FX6", SerialNumber: "fx6 0001"}
	if err := svc.Create(context.Background(), first); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if first.SerialNumber != "FX6-0001" {
		t.Errorf("serial not normalized: %q", first.SerialNumber)
	}

	err := svc.Create(context.Background(), &Equipment{Name: "Other", SerialNumber: "FX6-0001"})
	if !errors.Is(err, ErrDuplicateSerial) {
		t.Fatalf("Create() error = %v, want ErrDuplicateSerial", err)
	}
}

func TestDeleteBlockedByOpenBookings(t *testing.T) {
	repo := newMemRepo()
	guard := &stubGuard{open: 2}
	svc := NewEquipmentService(repo, guard, nopAudit{}, nopEvents{})

	item := &Equipment{Name: "Canon C70", SerialNumber: "C70-0001"}
	if err := svc.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	err := svc.Delete(context.Background(), item.ID)
	if !errors.Is(err, ErrHasBookings) {
		t.Fatalf("Delete() error = %v, want ErrHasBookings", err)
	}

	guard.open = 0
	if err := svc.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("Delete() without open bookings failed: %v", err)
	}
	if _, err := repo.FindByID(context.Background(), item.ID); err == nil {
		t.Error("item still present after delete")
	}
}

func TestChangeStatusValidation(t *testing.T) {
	repo := newMemRepo()
	svc := NewEquipmentService(repo, &stubGuard{}, nopAudit{}, nopEvents{})

	item := &Equipment{Name: "Aputure 600d", SerialNumber: "AP600D-0001"}
	if err := svc.Create(context.Background(), item); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := svc.ChangeStatus(context.Background(), item.ID, Status("broken")); err == nil {
		t.Fatal("ChangeStatus() with unknown status should fail")
	}

	if err := svc.ChangeStatus(context.Background(), item.ID, StatusMaintenance); err != nil {
		t.Fatalf("ChangeStatus() failed: %v", err)
	}
	got, _ := repo.FindByID(context.Background(), item.ID)
	if got.Status != StatusMaintenance {
		t.Errorf("status = %s, want maintenance", got.Status)
	}
}

func TestGetStats(t *testing.T) {
	repo := newMemRepo()
	svc := NewEquipmentService(repo, &stubGuard{}, nopAudit{}, nopEvents{})

	seed := []Equipment{
		{Name: "A", SerialNumber: "A-1", Category: "camera", Status: StatusAvailable},
		{Name: "B", SerialNumber: "B-1", Category: "camera", Status: StatusCheckedOut},
		{Name: "C", SerialNumber: "C-1", Category: "audio", Status: StatusCheckedOut},
		{Name: "D", SerialNumber: "D-1", Category: "lighting", Status: StatusDamaged},
	}
	for i := range seed {
		if err := svc.Create(context.Background(), &seed[i]); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() failed: %v", err)
	}
	if stats.Total != 4 || stats.Available != 1 {
		t.Errorf("total=%d available=%d, want 4 and 1", stats.Total, stats.Available)
	}
	if stats.Utilization != 75 {
		t.Errorf("utilization = %d, want 75", stats.Utilization)
	}
	if stats.ByCategory["camera"] != 2 {
		t.Errorf("camera count = %d, want 2", stats.ByCategory["camera"])
	}
}
