package adjustment

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	adjustments := r.Group("/adjustments")
	{
		adjustments.GET("", handler.GetAll)
		adjustments.GET("/:id", handler.GetByID)
		adjustments.POST("", handler.Create)
		adjustments.POST("/:id/submit", handler.Submit)
		adjustments.POST("/:id/approve", handler.Approve)
		adjustments.POST("/:id/reject", handler.Reject)
		adjustments.POST("/:id/cancel", handler.Cancel)
	}
}
