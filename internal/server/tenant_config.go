package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
)

func (s *Server) GetFeeConfig(c *gin.Context) {
	tenantID, ok := tenantIDFromRequest(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenant, err := s.tenantSvc.Get(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fee_config": tenant.FeeConfig()})
}

func (s *Server) UpdateFeeConfig(c *gin.Context) {
	tenantID, ok := tenantIDFromRequest(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req tenantdomain.UpdateFeeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tenant, err := s.tenantSvc.UpdateFeeConfig(c.Request.Context(), tenantID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fee_config": tenant.FeeConfig()})
}
