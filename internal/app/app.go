package app

import (
	"os"
	"strconv"

	"github.com/RushikJoshi/GT-HRMS-sub007/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure and registers all module routes on the
// given router.
func BuildApp(router *gin.Engine) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	return registerModules(router, sqlDB, gormDB, redisClient, loadPayrollConfig())
}

// PayrollConfig carries the env-driven calculation knobs.
type PayrollConfig struct {
	Parallelism   int
	AllowZeroNet  bool
	TaxServiceURL string
}

func loadPayrollConfig() PayrollConfig {
	cfg := PayrollConfig{
		AllowZeroNet:  true,
		TaxServiceURL: os.Getenv("TAX_SERVICE_URL"),
	}

	if v := os.Getenv("PAYROLL_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Parallelism = n
		}
	}
	if v := os.Getenv("PAYROLL_ALLOW_ZERO_NET"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowZeroNet = b
		}
	}
	return cfg
}
