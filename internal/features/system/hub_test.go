package system

import (
	"encoding/json"
	"testing"

	common_models "gearbook/internal/common/models"

	"go.uber.org/zap"
)

func TestHubDeliversToAllClients(t *testing.T) {
	hub := NewEventHub(zap.NewNop())

	a := hub.register()
	b := hub.register()
	if hub.ClientCount() != 2 {
		t.Fatalf("ClientCount() = %d, want 2", hub.ClientCount())
	}

	hub.Publish(common_models.Event{Type: "booking.created", RecordID: "abc"})

	for _, ch := range []chan []byte{a, b} {
		select {
		case raw := <-ch:
			var event common_models.Event
			if err := json.Unmarshal(raw, &event); err != nil {
				t.Fatalf("payload is not valid JSON: %v", err)
			}
			if event.Type != "booking.created" || event.RecordID != "abc" {
				t.Errorf("got event %+v", event)
			}
			if event.Timestamp.IsZero() {
				t.Error("timestamp was not stamped")
			}
		default:
			t.Fatal("client did not receive the event")
		}
	}

	hub.unregister(a)
	hub.unregister(b)
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() after unregister = %d, want 0", hub.ClientCount())
	}
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewEventHub(zap.NewNop())
	slow := hub.register()

	// Fill the buffer and push one more
	for i := 0; i < cap(slow)+1; i++ {
		hub.Publish(common_models.Event{Type: "equipment.status"})
	}

	if hub.ClientCount() != 0 {
		t.Errorf("slow client should have been dropped, count = %d", hub.ClientCount())
	}

	// unregister after the drop must not panic
	hub.unregister(slow)
}
