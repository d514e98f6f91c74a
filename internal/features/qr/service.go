package qr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/features/audit"
	"gearbook/internal/features/equipment"

	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCode      = errors.New("invalid QR code")
	ErrEquipmentMissing = errors.New("equipment not found for this code")
)

type QRService interface {
	GenerateLabel(ctx context.Context, equipmentID primitive.ObjectID, size int) ([]byte, error)
	Scan(ctx context.Context, code string, scannedBy primitive.ObjectID) (*equipment.Equipment, error)
	History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ScanEvent, error)
}

type QRServiceImpl struct {
	scans         ScanRepository
	equipmentRepo equipment.EquipmentRepository
	auditService  audit.AuditService
	config        *config.Config
}

func NewQRService(scans ScanRepository, equipmentRepo equipment.EquipmentRepository, auditService audit.AuditService, cfg *config.Config) QRService {
	return &QRServiceImpl{
		scans:         scans,
		equipmentRepo: equipmentRepo,
		auditService:  auditService,
		config:        cfg,
	}
}

// EncodeCode packs a payload into the base64url token printed on labels.
func EncodeCode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCode unpacks a label token back into its payload.
func DecodeCode(code string) (*Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return nil, ErrInvalidCode
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrInvalidCode
	}
	if p.Version != PayloadVersion || p.EquipmentID == "" {
		return nil, ErrInvalidCode
	}
	return &p, nil
}

func (s *QRServiceImpl) GenerateLabel(ctx context.Context, equipmentID primitive.ObjectID, size int) ([]byte, error) {
	item, err := s.equipmentRepo.FindByID(ctx, equipmentID)
	if err != nil {
		return nil, equipment.ErrNotFound
	}

	code, err := EncodeCode(Payload{
		Version:     PayloadVersion,
		EquipmentID: item.ID.Hex(),
		Serial:      item.SerialNumber,
	})
	if err != nil {
		return nil, err
	}

	// Persist the code id so lookups can cross-check the label
	if item.QRCodeID != code {
		_ = s.equipmentRepo.Update(ctx, item.ID, bson.M{"qr_code_id": code})
	}

	if size <= 0 {
		size = 256
	}

	content := s.config.QRBaseURL + "/lookup?code=" + code
	return qrcode.Encode(content, qrcode.Medium, size)
}

func (s *QRServiceImpl) Scan(ctx context.Context, code string, scannedBy primitive.ObjectID) (*equipment.Equipment, error) {
	payload, err := DecodeCode(code)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(payload.EquipmentID)
	if err != nil {
		return nil, ErrInvalidCode
	}

	item, err := s.equipmentRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, ErrEquipmentMissing
	}

	_ = s.scans.Create(ctx, &ScanEvent{
		Code:        code,
		EquipmentID: item.ID,
		ScannedBy:   scannedBy,
	})
	_ = s.auditService.LogChange(ctx, common_models.AuditActionScan, "equipment", item.ID.Hex(), nil)

	return item, nil
}

func (s *QRServiceImpl) History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]ScanEvent, error) {
	if limit < 1 {
		limit = 50
	}
	scans, err := s.scans.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if scans == nil {
		scans = []ScanEvent{}
	}
	return scans, nil
}
