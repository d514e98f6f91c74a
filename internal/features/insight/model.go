package insight

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Insight is one generated observation for the dashboard feed.
type Insight struct {
	Kind        string    `json:"kind"` // utilization, overdue, category, rule
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Severity    string    `json:"severity"` // info, warning, critical
	Metric      float64   `json:"metric,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Trigger string

const (
	TriggerBookingCreated   Trigger = "booking_created"
	TriggerBookingOverdue   Trigger = "booking_overdue"
	TriggerEquipmentDamaged Trigger = "equipment_damaged"
	TriggerSnapshot         Trigger = "snapshot" // evaluated on every insights read
)

// InsightRule is a user-authored script evaluated against a stats snapshot.
// The script reads the injected "stats" map and sets "message" (and
// optionally "severity") to emit an insight; an empty message emits nothing.
type InsightRule struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Trigger   Trigger            `json:"trigger" bson:"trigger"`
	Script    string             `json:"script" bson:"script"`
	Enabled   bool               `json:"enabled" bson:"enabled"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
