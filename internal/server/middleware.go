package server

import (
	"crypto/subtle"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"github.com/postboxhq/postbox/pkg/tenantctx"
)

const tenantHeader = "X-Tenant-Id"

// TenantMiddleware resolves the tenant from the X-Tenant-Id header and
// stashes it on the request context for handlers and the logger.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(tenantHeader))
		if raw == "" {
			AbortWithError(c, tenantdomain.ErrInvalidTenant)
			return
		}

		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, tenantdomain.ErrInvalidTenant)
			return
		}

		c.Request = c.Request.WithContext(tenantctx.WithTenantID(c.Request.Context(), id))
		c.Next()
	}
}

func tenantIDFromRequest(c *gin.Context) (snowflake.ID, bool) {
	return tenantctx.TenantIDFromContext(c.Request.Context())
}

// CronAuthMiddleware guards the cron trigger with a shared bearer
// secret. An empty secret leaves the endpoint open for manual triggers
// in permissive deployments.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}
