package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	chargedomain "github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/fees"
	"github.com/postboxhq/postbox/internal/observability/metrics"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	"github.com/postboxhq/postbox/internal/storagecharge/domain"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Tenants tenantdomain.Repository
	Parcels parceldomain.Repository
	Charges chargedomain.Repository
	Clock   clock.Clock
	GenID   *snowflake.Node
	Log     *zap.Logger
}

type service struct {
	tenants tenantdomain.Repository
	parcels parceldomain.Repository
	charges chargedomain.Repository
	clock   clock.Clock
	genID   *snowflake.Node
	log     *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		tenants: p.Tenants,
		parcels: p.Parcels,
		charges: p.Charges,
		clock:   p.Clock,
		genID:   p.GenID,
		log:     p.Log,
	}
}

func (s *service) GenerateDailyStorageCharges(ctx context.Context, tenantID string) (*domain.Report, error) {
	tenants, err := s.resolveTenants(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	today := chargedomain.Day(now)
	report := &domain.Report{
		TenantsScanned: len(tenants),
		Errors:         []domain.PackageError{},
	}

	for _, tenant := range tenants {
		if !tenant.StorageCountWeekends && fees.IsWeekend(today) {
			// Weekends accrue nothing for this tenant; the whole scan is
			// a no-op today.
			continue
		}

		cutoff := now.AddDate(0, 0, -tenant.StorageFreeDays)
		parcels, err := s.parcels.FindHeldCheckedInBefore(ctx, tenant.ID, cutoff)
		if err != nil {
			// One tenant's scan failing must not starve the rest of
			// the run.
			report.Errors = append(report.Errors, domain.PackageError{
				Message: fmt.Sprintf("failed to process tenant %s: %v", tenant.ID, err),
			})
			s.log.Warn("tenant storage scan failed",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err),
			)
			continue
		}

		var created, skipped, failed int
		for _, parcel := range parcels {
			ok, err := s.chargeParcel(ctx, tenant, parcel, today, now)
			if err != nil {
				failed++
				report.Errors = append(report.Errors, domain.PackageError{
					PackageID: parcel.ID.String(),
					Message:   fmt.Sprintf("failed to create storage charge: %v", err),
				})
				s.log.Warn("storage charge failed",
					zap.String("tenant_id", tenant.ID.String()),
					zap.String("package_id", parcel.ID.String()),
					zap.Error(err),
				)
				continue
			}
			if ok {
				created++
			} else {
				skipped++
			}
		}

		report.ChargesCreated += created
		report.ChargesSkipped += skipped
		metrics.Jobs().AddChargesCreated(tenant.ID.String(), created)
		metrics.Jobs().AddChargesSkipped(tenant.ID.String(), skipped)
		metrics.Jobs().AddPackageErrors(tenant.ID.String(), failed)
	}

	s.log.Info("daily storage charges generated",
		zap.Int("tenants_scanned", report.TenantsScanned),
		zap.Int("charges_created", report.ChargesCreated),
		zap.Int("charges_skipped", report.ChargesSkipped),
		zap.Int("package_errors", len(report.Errors)),
	)
	return report, nil
}

func (s *service) resolveTenants(ctx context.Context, tenantID string) ([]tenantdomain.Tenant, error) {
	if tenantID == "" {
		return s.tenants.ListActive(ctx)
	}

	id, err := snowflake.ParseString(tenantID)
	if err != nil {
		return nil, domain.ErrInvalidTenant
	}

	tenant, err := s.tenants.Get(ctx, id)
	if err != nil {
		if errors.Is(err, tenantdomain.ErrTenantNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if tenant.Status != tenantdomain.TenantActive {
		return nil, nil
	}
	return []tenantdomain.Tenant{*tenant}, nil
}

func (s *service) chargeParcel(ctx context.Context, tenant tenantdomain.Tenant, parcel parceldomain.Parcel, today, now time.Time) (bool, error) {
	amount := tenant.StorageRate.Round(2)

	label := parcel.TrackingNumber
	if label == "" {
		label = shortID(parcel.ID.String())
	}

	event := &chargedomain.ChargeEvent{
		ID:          s.genID.Generate(),
		TenantID:    tenant.ID,
		CustomerID:  parcel.CustomerID,
		PMBNumber:   parcel.PMBNumber,
		PackageID:   parcel.ID,
		ServiceType: chargedomain.ServiceStorage,
		ChargeDay:   today,
		Description: fmt.Sprintf("Daily storage fee — Package %s", label),
		Quantity:    1,
		UnitRate:    amount,
		Amount:      amount,
		Status:      chargedomain.ChargePending,
		Notes:       fmt.Sprintf("Auto-generated daily storage charge for %s", today.Format("2006-01-02")),
		CreatedAt:   now,
	}

	return s.charges.CreateIfAbsent(ctx, event)
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
