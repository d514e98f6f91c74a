package main

import (
	"context"
	"fmt"
	common_api "gearbook/internal/common/api"
	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/database"
	"gearbook/internal/features/audit"
	"gearbook/internal/features/auth"
	"gearbook/internal/features/booking"
	"gearbook/internal/features/dashboard"
	"gearbook/internal/features/equipment"
	"gearbook/internal/features/insight"
	"gearbook/internal/features/notification"
	"gearbook/internal/features/qr"
	sync_feature "gearbook/internal/features/sync"
	"gearbook/internal/features/system"
	"gearbook/internal/features/user"
	"gearbook/internal/logger"
	"gearbook/internal/middleware"
	"gearbook/pkg/utils"
	"log"
	"time"

	_ "gearbook/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, userRepo user.UserRepository, equipmentRepo equipment.EquipmentRepository, bookingRepo booking.BookingRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := userRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure user indexes: %v", err)
				}
				if err := equipmentRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure equipment indexes: %v", err)
				}
				if err := bookingRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure booking indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           GearBook API
// @version         1.0
// @description     Film equipment booking and inventory backend.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			audit.NewAuditRepository,
			user.NewUserRepository,
			equipment.NewEquipmentRepository,
			booking.NewBookingRepository,
			notification.NewNotificationRepository,
			qr.NewScanRepository,
			insight.NewRuleRepository,

			audit.NewAuditService,
			auth.NewAuthService,
			user.NewUserService,
			equipment.NewEquipmentService,
			booking.NewBookingService,
			notification.NewNotificationService,
			qr.NewQRService,
			insight.NewInsightService,
			dashboard.NewDashboardService,
			sync_feature.NewSyncService,

			// Websocket event hub
			system.NewEventHub,

			// Overdue sweep scheduler
			booking.NewOverdueScheduler,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(r user.UserRepository) audit.UserFinder { return r },
			func(r booking.BookingRepository) equipment.BookingGuard { return r },
			func(s notification.NotificationService) booking.Notifier { return s },
			func(h *system.EventHub) equipment.EventPublisher { return h },
			func(h *system.EventHub) booking.EventPublisher { return h },
			func(h *system.EventHub) insight.EventPublisher { return h },

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			equipment.NewEquipmentController,
			booking.NewBookingController,
			notification.NewNotificationController,
			qr.NewQRController,
			audit.NewAuditController,
			insight.NewInsightController,
			dashboard.NewDashboardController,
			sync_feature.NewSyncController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(equipment.NewEquipmentApi),
			AsRoute(booking.NewBookingApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(qr.NewQRApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(insight.NewInsightApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(sync_feature.NewSyncApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) {
				utils.SetSecret(cfg.JWTSecret)
			},

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,

			// Start/stop the overdue sweep scheduler
			func(lc fx.Lifecycle, sweeper *booking.OverdueScheduler) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return sweeper.Start()
					},
					OnStop: func(ctx context.Context) error {
						return sweeper.Stop()
					},
				})
			},

			// Feed booking/equipment events into the insight rules
			func(hub *system.EventHub, insightService insight.InsightService) {
				hub.Subscribe(func(event common_models.Event) {
					ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
					defer cancel()
					insightService.HandleEvent(ctx, event)
				})
			},
		),
	)

	app.Run()
}
