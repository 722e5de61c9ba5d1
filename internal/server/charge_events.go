package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	chargedomain "github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/pkg/db/pagination"
)

type listChargeEventsQuery struct {
	pagination.Pagination

	CustomerID  string `form:"customer_id"`
	PackageID   string `form:"package_id"`
	ServiceType string `form:"service_type"`
	DayFrom     string `form:"day_from"`
	DayTo       string `form:"day_to"`
}

type listChargeEventsResponse struct {
	ChargeEvents []*chargedomain.ChargeEvent `json:"charge_events"`
	PageInfo     *pagination.PageInfo        `json:"page_info"`
}

func (s *Server) ListChargeEvents(c *gin.Context) {
	tenantID, ok := tenantIDFromRequest(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var query listChargeEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	filter := chargedomain.ListFilter{
		TenantID:    tenantID,
		ServiceType: chargedomain.ServiceType(query.ServiceType),
	}

	var err error
	if query.CustomerID != "" {
		if filter.CustomerID, err = snowflake.ParseString(query.CustomerID); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}
	if query.PackageID != "" {
		if filter.PackageID, err = snowflake.ParseString(query.PackageID); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}
	if query.DayFrom != "" {
		day, err := time.Parse("2006-01-02", query.DayFrom)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.DayFrom = &day
	}
	if query.DayTo != "" {
		day, err := time.Parse("2006-01-02", query.DayTo)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.DayTo = &day
	}

	events, pageInfo, err := s.chargeSvc.List(c.Request.Context(), filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listChargeEventsResponse{
		ChargeEvents: events,
		PageInfo:     pageInfo,
	})
}
