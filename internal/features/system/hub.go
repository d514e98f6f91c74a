package system

import (
	"encoding/json"
	"sync"
	"time"

	common_models "gearbook/internal/common/models"

	"go.uber.org/zap"
)

// EventHub fans booking and equipment change events out to every connected
// websocket client. Slow clients are dropped rather than blocking the
// publisher.
type EventHub struct {
	mu        sync.Mutex
	clients   map[chan []byte]struct{}
	listeners []func(common_models.Event)
	logger    *zap.Logger
}

func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		clients: make(map[chan []byte]struct{}),
		logger:  logger,
	}
}

func (h *EventHub) register() chan []byte {
	send := make(chan []byte, 16)
	h.mu.Lock()
	h.clients[send] = struct{}{}
	h.mu.Unlock()
	return send
}

func (h *EventHub) unregister(send chan []byte) {
	h.mu.Lock()
	if _, ok := h.clients[send]; ok {
		delete(h.clients, send)
		close(send)
	}
	h.mu.Unlock()
}

// Subscribe registers an in-process listener invoked on every published
// event. Listeners may publish again; re-entrant events are delivered.
func (h *EventHub) Subscribe(fn func(common_models.Event)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Publish broadcasts one event to all connected clients and listeners.
func (h *EventHub) Publish(event common_models.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	for send := range h.clients {
		select {
		case send <- data:
		default:
			delete(h.clients, send)
			close(send)
		}
	}
	listeners := make([]func(common_models.Event), len(h.listeners))
	copy(listeners, h.listeners)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// ClientCount reports the number of connected feed clients.
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
