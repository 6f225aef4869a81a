package app

import (
	"database/sql"
	"time"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/adjustment"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/attendance"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/compensation"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/employee"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/messaging/kafka"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/middleware"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/payroll"
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/tax"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	taxClientTimeout = 3 * time.Second
	taxClientRPS     = 20
	previewCacheTTL  = 60 * time.Second
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg PayrollConfig,
) error {
	logger := zap.L()

	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	compensationRepo := compensation.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	adjustmentRepo := adjustment.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)

	// --- Collaborators ---
	resolver := compensation.NewResolver(compensationRepo, logger)

	// A missing TAX_SERVICE_URL means no tax authority is configured; every
	// withholding degrades to zero rather than blocking the run.
	var taxCalc tax.Calculator = tax.ZeroCalculator{}
	if cfg.TaxServiceURL != "" {
		taxCalc = tax.NewHTTPClient(cfg.TaxServiceURL, taxClientTimeout, taxClientRPS, logger)
	}
	deductionEngine := payroll.NewDeductionEngine(taxCalc, taxClientTimeout, logger)
	previewCache := payroll.NewPreviewCache(rdb, previewCacheTTL, logger)

	// --- Services ---
	adjustmentService := adjustment.NewService(adjustmentRepo, employeeRepo)
	payrollService := payroll.NewService(
		db,
		payrollRepo,
		outboxRepo,
		resolver,
		attendanceRepo,
		adjustmentService,
		deductionEngine,
		previewCache,
		payroll.Config{
			Parallelism:  cfg.Parallelism,
			AllowZeroNet: cfg.AllowZeroNet,
		},
		logger,
	)

	// --- Handlers ---
	adjustmentHandler := adjustment.NewHandler(adjustmentService)
	payrollHandler := payroll.NewHandler(payrollService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(middleware.RequestID(), middleware.TenantContext(), middleware.ContextLogger(logger))
	{
		adjustment.RegisterRoutes(api, adjustmentHandler)
		payroll.RegisterRoutes(api, payrollHandler, rdb)
	}

	return nil
}
