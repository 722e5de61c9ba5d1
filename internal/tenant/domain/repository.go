package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrTenantNotFound  = errors.New("tenant_not_found")
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidFeeRates = errors.New("invalid_fee_rates")
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, id snowflake.ID) (*Tenant, error)
	ListActive(ctx context.Context) ([]Tenant, error)
	UpdateFeeConfig(ctx context.Context, tenant *Tenant) error
}
