package payroll

import (
	"github.com/RushikJoshi/GT-HRMS-sub007/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	runs := r.Group("/payroll/runs")
	{
		runs.GET("", handler.GetAllRuns)
		runs.GET("/:id", handler.GetRun)
		runs.GET("/:id/payslips", handler.GetPayslips)

		if redisClient != nil {
			runs.POST("", middleware.Idempotency(redisClient), handler.CreateRun)
			runs.POST("/:id/calculate", middleware.Idempotency(redisClient), handler.Calculate)
		} else {
			runs.POST("", handler.CreateRun)
			runs.POST("/:id/calculate", handler.Calculate)
		}
		runs.POST("/:id/approve", handler.Approve)
		runs.POST("/:id/mark-paid", handler.MarkPaid)
		runs.POST("/:id/cancel", handler.Cancel)
		runs.POST("/:id/reset", handler.Reset)
	}

	payslips := r.Group("/payroll/payslips")
	{
		payslips.GET("/:id", handler.GetPayslip)
	}

	r.GET("/payroll/preview", middleware.RateLimitByIP(5, 10), handler.Preview)
}
