package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	storagedomain "github.com/postboxhq/postbox/internal/storagecharge/domain"
	"go.uber.org/zap"
)

type storageFeesResponse struct {
	Success        bool                         `json:"success"`
	ChargesCreated int                          `json:"charges_created"`
	Errors         []storagedomain.PackageError `json:"errors"`
	ProcessedAt    time.Time                    `json:"processed_at"`
}

// RunStorageFees triggers the daily storage charge generation. The cron
// schedule and manual operator triggers both land here; idempotency in
// the generator makes racing triggers safe.
func (s *Server) RunStorageFees(c *gin.Context) {
	tenantID := c.Query("tenantId")

	report, err := s.storageSvc.GenerateDailyStorageCharges(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if len(report.Errors) > 0 {
		s.log.Warn("storage fee run reported package errors",
			zap.Int("charges_created", report.ChargesCreated),
			zap.Int("package_errors", len(report.Errors)),
		)
	}

	c.JSON(http.StatusOK, storageFeesResponse{
		Success:        true,
		ChargesCreated: report.ChargesCreated,
		Errors:         report.Errors,
		ProcessedAt:    s.clock.Now().UTC(),
	})
}
