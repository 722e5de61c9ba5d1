package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/tenant/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, tenant *domain.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *repository) Get(ctx context.Context, id snowflake.ID) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) ListActive(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.TenantActive).
		Order("created_at ASC").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repository) UpdateFeeConfig(ctx context.Context, tenant *domain.Tenant) error {
	return r.db.WithContext(ctx).Model(tenant).
		Select(
			"storage_rate",
			"storage_free_days",
			"storage_count_weekends",
			"receiving_fee_rate",
			"package_quota",
			"package_quota_overage",
			"tax_rate",
			"updated_at",
		).
		Updates(tenant).Error
}
