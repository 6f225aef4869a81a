package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantContext reads the tenant and actor identity established by the
// upstream gateway. Every route is tenant-scoped, so a request without a
// company id is rejected before it reaches a handler.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.GetHeader("X-Company-ID")
		if _, err := uuid.Parse(companyID); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_TENANT",
				"message": "a valid X-Company-ID header is required",
			})
			return
		}
		c.Set("company_id", companyID)

		if actorID := c.GetHeader("X-Actor-ID"); actorID != "" {
			c.Set("employee_id", actorID)
		}

		c.Next()
	}
}
