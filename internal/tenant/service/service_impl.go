package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/tenant/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repo  domain.Repository
	Clock clock.Clock
	Log   *zap.Logger
}

type service struct {
	repo  domain.Repository
	clock clock.Clock
	log   *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &service{repo: p.Repo, clock: p.Clock, log: p.Log}
}

func (s *service) Get(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	if id == 0 {
		return nil, domain.ErrInvalidTenant
	}
	return s.repo.Get(ctx, id)
}

func (s *service) GetByIDString(ctx context.Context, id string) (*domain.Tenant, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidTenant
	}
	return s.Get(ctx, parsed)
}

func (s *service) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) UpdateFeeConfig(ctx context.Context, id snowflake.ID, req domain.UpdateFeeConfigRequest) (*domain.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyFeeConfig(tenant, req); err != nil {
		return nil, err
	}
	if err := tenant.FeeConfig().Validate(); err != nil {
		return nil, domain.ErrInvalidFeeRates
	}

	tenant.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateFeeConfig(ctx, tenant); err != nil {
		return nil, err
	}

	s.log.Info("tenant fee config updated",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("storage_rate", tenant.StorageRate.String()),
		zap.Int("storage_free_days", tenant.StorageFreeDays),
	)
	return tenant, nil
}

func applyFeeConfig(tenant *domain.Tenant, req domain.UpdateFeeConfigRequest) error {
	setRate := func(dst *decimal.Decimal, src *string) error {
		if src == nil {
			return nil
		}
		value, err := decimal.NewFromString(*src)
		if err != nil {
			return domain.ErrInvalidFeeRates
		}
		*dst = value
		return nil
	}

	if err := setRate(&tenant.StorageRate, req.StorageRate); err != nil {
		return err
	}
	if err := setRate(&tenant.ReceivingFeeRate, req.ReceivingFeeRate); err != nil {
		return err
	}
	if err := setRate(&tenant.PackageQuotaOverage, req.PackageQuotaOverage); err != nil {
		return err
	}
	if err := setRate(&tenant.TaxRate, req.TaxRate); err != nil {
		return err
	}
	if req.StorageFreeDays != nil {
		tenant.StorageFreeDays = *req.StorageFreeDays
	}
	if req.StorageCountWeekends != nil {
		tenant.StorageCountWeekends = *req.StorageCountWeekends
	}
	if req.PackageQuota != nil {
		tenant.PackageQuota = *req.PackageQuota
	}
	return nil
}
