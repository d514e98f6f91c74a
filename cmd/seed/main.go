package main

import (
	"context"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/database"
	"gearbook/internal/features/equipment"
	"gearbook/internal/features/user"
	"gearbook/internal/logger"
	"gearbook/pkg/utils"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var demoUsers = []struct {
	Username string
	Email    string
	Password string
	Role     string
}{
	{"admin", "admin@gearbook.local", "admin123", common_models.RoleAdmin},
	{"staff", "staff@gearbook.local", "staff123", common_models.RoleStaff},
	{"member", "member@gearbook.local", "member123", common_models.RoleMember},
}

var demoEquipment = []equipment.Equipment{
	{Name: "Sony FX6", Category: "camera", SerialNumber: "FX6-0001", Location: "Shelf A1", Condition: "good", DailyValue: 350},
	{Name: "Canon C70", Category: "camera", SerialNumber: "C70-0001", Location: "Shelf A2", Condition: "good", DailyValue: 250},
	{Name: "Aputure 600d", Category: "lighting", SerialNumber: "AP600D-0001", Location: "Shelf B1", Condition: "good", DailyValue: 120},
	{Name: "Sennheiser MKH 416", Category: "audio", SerialNumber: "MKH416-0001", Location: "Drawer C3", Condition: "fair", DailyValue: 60},
	{Name: "DJI RS 3 Pro", Category: "grip", SerialNumber: "RS3P-0001", Location: "Shelf B4", Condition: "good", DailyValue: 80},
}

// Seed runs the database seeding
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	userRepo user.UserRepository,
	equipmentRepo equipment.EquipmentRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("🌱 Starting database seeding...")

				for _, u := range demoUsers {
					if _, err := userRepo.FindByEmail(ctx, u.Email); err == nil {
						logger.Info("User exists, skipping", zap.String("email", u.Email))
						continue
					}

					hash, err := utils.HashPassword(u.Password, cfg.BcryptCost)
					if err != nil {
						logger.Fatal("Failed to hash password", zap.Error(err))
					}

					newUser := &common_models.User{
						Username: u.Username,
						Email:    u.Email,
						Password: hash,
						Role:     u.Role,
						Status:   common_models.UserStatusActive,
					}
					if err := userRepo.Create(ctx, newUser); err != nil {
						logger.Error("Failed to create user", zap.String("email", u.Email), zap.Error(err))
						continue
					}
					logger.Info("User created", zap.String("email", u.Email), zap.String("role", u.Role))
				}

				for i := range demoEquipment {
					item := demoEquipment[i]
					inserted, err := equipmentRepo.UpsertBySerial(ctx, &item)
					if err != nil {
						logger.Error("Failed to upsert equipment", zap.String("serial", item.SerialNumber), zap.Error(err))
						continue
					}
					if inserted {
						logger.Info("Equipment created", zap.String("serial", item.SerialNumber))
					} else {
						logger.Info("Equipment refreshed", zap.String("serial", item.SerialNumber))
					}
				}

				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			user.NewUserRepository,
			equipment.NewEquipmentRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
