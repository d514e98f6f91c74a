package booking

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusOverdue   Status = "overdue"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Booking reserves one equipment item for a date range.
type Booking struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	EquipmentID primitive.ObjectID  `json:"equipment_id" bson:"equipment_id"`
	UserID      primitive.ObjectID  `json:"user_id" bson:"user_id"`
	StartDate   time.Time           `json:"start_date" bson:"start_date"`
	EndDate     time.Time           `json:"end_date" bson:"end_date"`
	StartTime   string              `json:"start_time,omitempty" bson:"start_time,omitempty"` // "HH:MM", informational
	EndTime     string              `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Status      Status              `json:"status" bson:"status"`
	Purpose     string              `json:"purpose,omitempty" bson:"purpose,omitempty"`
	Notes       string              `json:"notes,omitempty" bson:"notes,omitempty"`
	Priority    Priority            `json:"priority" bson:"priority"`
	ApprovedBy  *primitive.ObjectID `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// CanTransition is the booking lifecycle matrix. Completed and cancelled
// are terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled || to == StatusOverdue
	case StatusOverdue:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// Stats summarizes booking counts for the dashboard.
type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	Upcoming int64            `json:"upcoming"` // pending or active with a future start
	Overdue  int64            `json:"overdue"`
}

// AvailabilityResult is the answer to an availability check.
type AvailabilityResult struct {
	Available bool      `json:"available"`
	Conflicts []Booking `json:"conflicts"`
}
