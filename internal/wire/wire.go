// Package wire provides dependency injection for the garage application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/garage/internal/adapters/cli"
	"github.com/example/garage/internal/adapters/sqlite"
	"github.com/example/garage/internal/app"
	"github.com/example/garage/internal/config"
	"github.com/example/garage/internal/db"
	"github.com/example/garage/internal/logging"
	"github.com/example/garage/internal/ports/primary"
)

var (
	configPath string
	envFile    = ".env"

	cfg      *config.Config
	logger   *zap.Logger
	database *sql.DB
	baseOnce sync.Once

	branchService        primary.BranchService
	userService          primary.UserService
	catalogService       primary.CatalogService
	vehicleService       primary.VehicleService
	repairRequestService primary.RepairRequestService
	emergencyService     primary.EmergencyService
	repairOrderService   primary.RepairOrderService
	jobService           primary.JobService
	inspectionService    primary.InspectionService
	quotationService     primary.QuotationService
	promotionService     primary.PromotionService
	paymentService       primary.PaymentService
	feedbackService      primary.FeedbackService
	notificationService  primary.NotificationService
	auditService         primary.AuditService
	chatService          primary.ChatService
	webhookService       primary.WebhookService
	integrityService     primary.IntegrityService
	once                 sync.Once
)

// SetConfigPath selects the config file and env file read on first use.
// It has no effect once anything has been initialized.
func SetConfigPath(path, env string) {
	configPath = path
	envFile = env
}

// Config returns the loaded configuration.
func Config() *config.Config {
	baseOnce.Do(initBase)
	return cfg
}

// Logger returns the application logger.
func Logger() *zap.Logger {
	baseOnce.Do(initBase)
	return logger
}

// DB returns the shared database handle without applying migrations.
func DB() *sql.DB {
	baseOnce.Do(initBase)
	return database
}

// Migrator returns a migrator over the shared database.
func Migrator() *db.Migrator {
	baseOnce.Do(initBase)
	return db.NewMigrator(database, logger)
}

// Close flushes the logger and closes the database if they were opened.
func Close() {
	if logger != nil {
		_ = logger.Sync()
	}
	if database != nil {
		database.Close()
	}
}

// initBase loads configuration, builds the logger and opens the database.
func initBase() {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			log.Fatalf("failed to resolve config path: %v", err)
		}
	}

	var err error
	cfg, err = config.Load(path, envFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err = logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	database, err = db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
}

// initServices brings the schema up to date and builds every service.
// This is called once via sync.Once.
func initServices() {
	baseOnce.Do(initBase)

	if err := db.NewMigrator(database, logger).Up(context.Background()); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	branchRepo := sqlite.NewBranchRepository(database)
	userRepo := sqlite.NewUserRepository(database)
	technicianRepo := sqlite.NewTechnicianRepository(database)
	vehicleCatalogRepo := sqlite.NewVehicleCatalogRepository(database)
	serviceCatalogRepo := sqlite.NewServiceCatalogRepository(database)
	partRepo := sqlite.NewPartRepository(database)
	vehicleRepo := sqlite.NewVehicleRepository(database)
	requestRepo := sqlite.NewRepairRequestRepository(database)
	emergencyRepo := sqlite.NewEmergencyRepository(database)
	orderRepo := sqlite.NewRepairOrderRepository(database)
	jobRepo := sqlite.NewJobRepository(database)
	inspectionRepo := sqlite.NewInspectionRepository(database)
	quotationRepo := sqlite.NewQuotationRepository(database)
	promotionRepo := sqlite.NewPromotionRepository(database)
	paymentRepo := sqlite.NewPaymentRepository(database)
	feedbackRepo := sqlite.NewFeedbackRepository(database)
	notificationRepo := sqlite.NewNotificationRepository(database)
	auditRepo := sqlite.NewAuditRepository(database)
	chatRepo := sqlite.NewChatRepository(database)
	inboxRepo := sqlite.NewWebhookInboxRepository(database)
	integrityRepo := sqlite.NewIntegrityRepository(database)

	// Create services (primary ports implementation)
	branchService = app.NewBranchService(branchRepo)
	userService = app.NewUserService(userRepo, technicianRepo)
	catalogService = app.NewCatalogService(vehicleCatalogRepo, serviceCatalogRepo, partRepo)
	vehicleService = app.NewVehicleService(vehicleRepo)
	repairRequestService = app.NewRepairRequestService(requestRepo, serviceCatalogRepo, partRepo)
	emergencyService = app.NewEmergencyService(emergencyRepo, technicianRepo, cfg.Emergency.ResponseSLA, logger.Named("emergency"))
	repairOrderService = app.NewRepairOrderService(orderRepo, requestRepo, serviceCatalogRepo, partRepo, logger.Named("order"))
	jobService = app.NewJobService(jobRepo, orderRepo, technicianRepo, serviceCatalogRepo, partRepo, logger.Named("job"))
	inspectionService = app.NewInspectionService(inspectionRepo, orderRepo)
	quotationService = app.NewQuotationService(quotationRepo, promotionRepo, serviceCatalogRepo, partRepo, logger.Named("quotation"))
	promotionService = app.NewPromotionService(promotionRepo)
	paymentService = app.NewPaymentService(paymentRepo, orderRepo, logger.Named("payment"))
	feedbackService = app.NewFeedbackService(feedbackRepo, orderRepo)
	notificationService = app.NewNotificationService(notificationRepo)
	auditService = app.NewAuditService(auditRepo)
	chatService = app.NewChatService(chatRepo)
	webhookService = app.NewWebhookService(inboxRepo, logger.Named("webhook"))
	integrityService = app.NewIntegrityService(integrityRepo, auditRepo, logger.Named("integrity"))
}

// BranchService returns the singleton BranchService instance.
func BranchService() primary.BranchService {
	once.Do(initServices)
	return branchService
}

// UserService returns the singleton UserService instance.
func UserService() primary.UserService {
	once.Do(initServices)
	return userService
}

// CatalogService returns the singleton CatalogService instance.
func CatalogService() primary.CatalogService {
	once.Do(initServices)
	return catalogService
}

// VehicleService returns the singleton VehicleService instance.
func VehicleService() primary.VehicleService {
	once.Do(initServices)
	return vehicleService
}

// RepairRequestService returns the singleton RepairRequestService instance.
func RepairRequestService() primary.RepairRequestService {
	once.Do(initServices)
	return repairRequestService
}

// EmergencyService returns the singleton EmergencyService instance.
func EmergencyService() primary.EmergencyService {
	once.Do(initServices)
	return emergencyService
}

// RepairOrderService returns the singleton RepairOrderService instance.
func RepairOrderService() primary.RepairOrderService {
	once.Do(initServices)
	return repairOrderService
}

// JobService returns the singleton JobService instance.
func JobService() primary.JobService {
	once.Do(initServices)
	return jobService
}

// InspectionService returns the singleton InspectionService instance.
func InspectionService() primary.InspectionService {
	once.Do(initServices)
	return inspectionService
}

// QuotationService returns the singleton QuotationService instance.
func QuotationService() primary.QuotationService {
	once.Do(initServices)
	return quotationService
}

// PromotionService returns the singleton PromotionService instance.
func PromotionService() primary.PromotionService {
	once.Do(initServices)
	return promotionService
}

// PaymentService returns the singleton PaymentService instance.
func PaymentService() primary.PaymentService {
	once.Do(initServices)
	return paymentService
}

// FeedbackService returns the singleton FeedbackService instance.
func FeedbackService() primary.FeedbackService {
	once.Do(initServices)
	return feedbackService
}

// NotificationService returns the singleton NotificationService instance.
func NotificationService() primary.NotificationService {
	once.Do(initServices)
	return notificationService
}

// AuditService returns the singleton AuditService instance.
func AuditService() primary.AuditService {
	once.Do(initServices)
	return auditService
}

// ChatService returns the singleton ChatService instance.
func ChatService() primary.ChatService {
	once.Do(initServices)
	return chatService
}

// WebhookService returns the singleton WebhookService instance.
func WebhookService() primary.WebhookService {
	once.Do(initServices)
	return webhookService
}

// IntegrityService returns the singleton IntegrityService instance.
func IntegrityService() primary.IntegrityService {
	once.Do(initServices)
	return integrityService
}

// IntegrityAdapter returns a new IntegrityAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func IntegrityAdapter() *cliadapter.IntegrityAdapter {
	return IntegrityAdapterWithOutput(os.Stdout)
}

// IntegrityAdapterWithOutput returns a new IntegrityAdapter writing to the given output.
func IntegrityAdapterWithOutput(out io.Writer) *cliadapter.IntegrityAdapter {
	once.Do(initServices)
	return cliadapter.NewIntegrityAdapter(integrityService, out)
}

// OrderAdapter returns a new OrderAdapter writing to stdout.
func OrderAdapter() *cliadapter.OrderAdapter {
	return OrderAdapterWithOutput(os.Stdout)
}

// OrderAdapterWithOutput returns a new OrderAdapter writing to the given output.
func OrderAdapterWithOutput(out io.Writer) *cliadapter.OrderAdapter {
	once.Do(initServices)
	return cliadapter.NewOrderAdapter(repairOrderService, jobService, out)
}

// EmergencyAdapter returns a new EmergencyAdapter writing to stdout.
func EmergencyAdapter() *cliadapter.EmergencyAdapter {
	return EmergencyAdapterWithOutput(os.Stdout)
}

// EmergencyAdapterWithOutput returns a new EmergencyAdapter writing to the given output.
func EmergencyAdapterWithOutput(out io.Writer) *cliadapter.EmergencyAdapter {
	once.Do(initServices)
	return cliadapter.NewEmergencyAdapter(emergencyService, out)
}
