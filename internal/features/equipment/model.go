package equipment

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusCheckedOut  Status = "checked-out"
	StatusInCustody   Status = "in-custody"
	StatusMaintenance Status = "maintenance"
	StatusDamaged     Status = "damaged"
)

// ValidStatus reports whether s is a known equipment status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusCheckedOut, StatusInCustody, StatusMaintenance, StatusDamaged:
		return true
	}
	return false
}

// Equipment is a physical inventory item that can be booked.
type Equipment struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Category     string             `json:"category" bson:"category"`
	SerialNumber string             `json:"serial_number" bson:"serial_number"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	Location     string             `json:"location,omitempty" bson:"location,omitempty"`
	Condition    string             `json:"condition,omitempty" bson:"condition,omitempty"`
	DailyValue   float64            `json:"daily_value,omitempty" bson:"daily_value,omitempty"`
	Status       Status             `json:"status" bson:"status"`
	ImageURL     string             `json:"image_url,omitempty" bson:"image_url,omitempty"`
	QRCodeID     string             `json:"qr_code_id,omitempty" bson:"qr_code_id,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Stats is the aggregate snapshot the dashboard renders.
type Stats struct {
	Total       int64            `json:"total"`
	Available   int64            `json:"available"`
	Utilization int              `json:"utilization"` // percent
	ByStatus    map[string]int64 `json:"by_status"`
	ByCategory  map[string]int64 `json:"by_category"`
}
