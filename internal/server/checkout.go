package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/postboxhq/postbox/internal/fees"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	"github.com/shopspring/decimal"
)

type calculateFeesRequest struct {
	PackageIDs []string `json:"package_ids" binding:"required"`
	CustomerID string   `json:"customer_id" binding:"required"`
	AddOnTotal string   `json:"add_on_total"`
}

type calculateFeesResponse struct {
	*fees.Result
	LineItems []fees.LineItem `json:"line_items"`
	Config    fees.Config     `json:"config"`
}

// CalculateCheckoutFees loads the customer's held packages, the tenant
// fee config and the month-to-date package count, then runs the
// calculator. Nothing is persisted; checkout commits separately.
func (s *Server) CalculateCheckoutFees(c *gin.Context) {
	tenantID, ok := tenantIDFromRequest(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req calculateFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	packageIDs := make([]snowflake.ID, 0, len(req.PackageIDs))
	for _, raw := range req.PackageIDs {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		packageIDs = append(packageIDs, id)
	}

	addOnTotal := decimal.Zero
	if req.AddOnTotal != "" {
		addOnTotal, err = decimal.NewFromString(req.AddOnTotal)
		if err != nil || addOnTotal.IsNegative() {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
	}

	ctx := c.Request.Context()
	tenant, err := s.tenantSvc.Get(ctx, tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	parcels, err := s.parcelRepo.FindHeldByIDs(ctx, tenantID, customerID, packageIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if len(parcels) == 0 {
		AbortWithError(c, parceldomain.ErrNoEligibleParcels)
		return
	}

	now := s.clock.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	priorCount, err := s.parcelRepo.CountCheckedInSince(ctx, tenantID, customerID, monthStart, packageIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	packages := make([]fees.Package, 0, len(parcels))
	for _, parcel := range parcels {
		packages = append(packages, parcel.ForFees())
	}

	cfg := tenant.FeeConfig()
	result, err := fees.CalculateFees(packages, cfg, int(priorCount), addOnTotal, now)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, calculateFeesResponse{
		Result:    result,
		LineItems: fees.BuildLineItems(result),
		Config:    cfg,
	})
}
