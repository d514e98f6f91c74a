package insight

import (
	"testing"

	common_models "gearbook/internal/common/models"
)

func TestTriggerForEvent(t *testing.T) {
	tests := []struct {
		name  string
		event common_models.Event
		want  Trigger
	}{
		{"booking created", common_models.Event{Type: "booking.created"}, TriggerBookingCreated},
		{"booking overdue", common_models.Event{Type: "booking.overdue"}, TriggerBookingOverdue},
		{
			"equipment damaged",
			common_models.Event{Type: "equipment.status", Data: map[string]interface{}{"status": "damaged"}},
			TriggerEquipmentDamaged,
		},
		{
			"equipment repaired",
			common_models.Event{Type: "equipment.status", Data: map[string]interface{}{"status": "available"}},
			"",
		},
		{"own output ignored", common_models.Event{Type: "insight.generated"}, ""},
		{"unrelated", common_models.Event{Type: "booking.deleted"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := triggerForEvent(tt.event); got != tt.want {
				t.Errorf("triggerForEvent(%s) = %q, want %q", tt.event.Type, got, tt.want)
			}
		})
	}
}

func TestTopCategory(t *testing.T) {
	name, count := topCategory(map[string]int64{"camera": 5, "audio": 2, "lighting": 5})
	if name != "camera" || count != 5 {
		t.Errorf("topCategory() = %s/%d, want camera/5 (ties break alphabetically)", name, count)
	}

	if name, _ := topCategory(nil); name != "" {
		t.Errorf("topCategory(nil) = %q, want empty", name)
	}
}
