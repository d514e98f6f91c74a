package sync

import (
	"context"
	"database/sql"
	"fmt"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/features/audit"
	"gearbook/internal/features/equipment"
	"gearbook/pkg/utils"

	// SQL drivers for the legacy inventory databases.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"go.uber.org/zap"
)

// Result summarizes one import run.
type Result struct {
	Scanned  int      `json:"scanned"`
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

const legacyQuery = `SELECT name, category, serial_number, location, condition_note, daily_value FROM equipment`

type SyncService interface {
	ImportLegacy(ctx context.Context, driver, dsn string) (*Result, error)
}

type SyncServiceImpl struct {
	config        *config.Config
	equipmentRepo equipment.EquipmentRepository
	auditService  audit.AuditService
	logger        *zap.Logger
}

func NewSyncService(cfg *config.Config, equipmentRepo equipment.EquipmentRepository, auditService audit.AuditService, logger *zap.Logger) SyncService {
	return &SyncServiceImpl{
		config:        cfg,
		equipmentRepo: equipmentRepo,
		auditService:  auditService,
		logger:        logger,
	}
}

// ImportLegacy pulls inventory rows out of a legacy SQL database (postgres
// or mysql) and upserts them into the catalog keyed on serial number.
// Driver and DSN fall back to the configured defaults. Bad rows are counted
// and reported, not fatal.
func (s *SyncServiceImpl) ImportLegacy(ctx context.Context, driver, dsn string) (*Result, error) {
	if driver == "" {
		driver = s.config.SyncDriver
	}
	if dsn == "" {
		dsn = s.config.SyncDSN
	}
	if dsn == "" {
		return nil, fmt.Errorf("legacy sync is not configured")
	}
	switch driver {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("unsupported sync driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach legacy database: %w", err)
	}

	rows, err := db.QueryContext(ctx, legacyQuery)
	if err != nil {
		return nil, fmt.Errorf("legacy query failed: %w", err)
	}
	defer rows.Close()

	result := &Result{}
	for rows.Next() {
		result.Scanned++

		var name, category, serial string
		var location, condition sql.NullString
		var dailyValue sql.NullFloat64
		if err := rows.Scan(&name, &category, &serial, &location, &condition, &dailyValue); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		serial = utils.NormalizeSerial(serial)
		if name == "" || serial == "" {
			result.Skipped++
			continue
		}

		item := &equipment.Equipment{
			Name:         name,
			Category:     category,
			SerialNumber: serial,
			Location:     location.String,
			Condition:    condition.String,
			DailyValue:   dailyValue.Float64,
		}

		inserted, err := s.equipmentRepo.UpsertBySerial(ctx, item)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", serial, err))
			s.logger.Warn("legacy upsert failed",
				zap.String("serial", serial),
				zap.Error(err))
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("legacy row scan failed: %w", err)
	}

	_ = s.auditService.LogChange(ctx, common_models.AuditActionSync, "equipment", "", map[string]common_models.Change{
		"summary": {
			New: fmt.Sprintf("scanned=%d inserted=%d updated=%d skipped=%d",
				result.Scanned, result.Inserted, result.Updated, result.Skipped),
		},
	})

	s.logger.Info("legacy inventory sync finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	return result, nil
}
