package qr

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payload is the document encoded inside an equipment QR label.
type Payload struct {
	Version     int    `json:"v"`
	EquipmentID string `json:"equipment_id"`
	Serial      string `json:"serial"`
}

const PayloadVersion = 1

// ScanEvent records a QR code lookup.
type ScanEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"`
	EquipmentID primitive.ObjectID `bson:"equipment_id" json:"equipment_id"`
	ScannedBy   primitive.ObjectID `bson:"scanned_by,omitempty" json:"scanned_by,omitempty"`
	ScannedAt   time.Time          `bson:"scanned_at" json:"scanned_at"`
}
