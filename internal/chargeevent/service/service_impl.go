package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/fees"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"github.com/postboxhq/postbox/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repo  domain.Repository
	Clock clock.Clock
	GenID *snowflake.Node
	Log   *zap.Logger
}

type service struct {
	repo  domain.Repository
	clock clock.Clock
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &service{repo: p.Repo, clock: p.Clock, genID: p.GenID, log: p.Log}
}

func (s *service) RecordReceiving(ctx context.Context, tenant *tenantdomain.Tenant, parcel *parceldomain.Parcel) (*domain.ChargeEvent, error) {
	if tenant == nil || parcel == nil {
		return nil, domain.ErrInvalidCharge
	}

	amount := parcel.ReceivingFee
	if amount.IsZero() {
		amount = tenant.ReceivingFeeRate
	}
	amount = amount.Round(2)

	event := &domain.ChargeEvent{
		ID:          s.genID.Generate(),
		TenantID:    tenant.ID,
		CustomerID:  parcel.CustomerID,
		PMBNumber:   parcel.PMBNumber,
		PackageID:   parcel.ID,
		ServiceType: domain.ServiceReceiving,
		ChargeDay:   domain.Day(parcel.CheckedInAt),
		Description: fmt.Sprintf("Package receiving — %s %s", parcel.Carrier, parcel.PackageType),
		Quantity:    1,
		UnitRate:    amount,
		Amount:      amount,
		Status:      domain.ChargePending,
		CreatedAt:   s.clock.Now(),
	}

	created, err := s.repo.CreateIfAbsent(ctx, event)
	if err != nil {
		return nil, err
	}
	if !created {
		// Check-in already charged; idempotent no-op.
		return nil, nil
	}

	s.log.Info("receiving charge recorded",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("package_id", parcel.ID.String()),
		zap.String("amount", amount.String()),
	)
	return event, nil
}

func (s *service) RecordCheckoutStorage(ctx context.Context, tenant *tenantdomain.Tenant, parcels []parceldomain.Parcel, breakdowns []fees.PackageBreakdown) ([]*domain.ChargeEvent, error) {
	if tenant == nil {
		return nil, domain.ErrInvalidCharge
	}

	byID := make(map[string]parceldomain.Parcel, len(parcels))
	for _, p := range parcels {
		byID[p.ID.String()] = p
	}

	now := s.clock.Now()
	events := make([]*domain.ChargeEvent, 0, len(breakdowns))
	for _, breakdown := range breakdowns {
		if breakdown.BillableDays <= 0 || !breakdown.StorageFee.IsPositive() {
			continue
		}
		parcel, ok := byID[breakdown.PackageID]
		if !ok {
			return nil, domain.ErrInvalidCharge
		}

		unitRate := decimal.Zero
		if breakdown.BillableDays > 0 {
			unitRate = breakdown.StorageFee.Div(decimal.NewFromInt(int64(breakdown.BillableDays))).Round(2)
		}

		event := &domain.ChargeEvent{
			ID:          s.genID.Generate(),
			TenantID:    tenant.ID,
			CustomerID:  parcel.CustomerID,
			PMBNumber:   parcel.PMBNumber,
			PackageID:   parcel.ID,
			ServiceType: domain.ServiceStorage,
			ChargeDay:   domain.Day(now),
			Description: fmt.Sprintf("Package storage — %d day(s) beyond free period", breakdown.BillableDays),
			Quantity:    breakdown.BillableDays,
			UnitRate:    unitRate,
			Amount:      breakdown.StorageFee,
			Status:      domain.ChargePending,
			CreatedAt:   now,
		}

		created, err := s.repo.CreateIfAbsent(ctx, event)
		if err != nil {
			return nil, err
		}
		if created {
			events = append(events, event)
		}
	}

	return events, nil
}

func (s *service) List(ctx context.Context, filter domain.ListFilter, page pagination.Pagination) ([]*domain.ChargeEvent, *pagination.PageInfo, error) {
	if filter.TenantID == 0 {
		return nil, nil, tenantdomain.ErrInvalidTenant
	}
	return s.repo.List(ctx, filter, page)
}
