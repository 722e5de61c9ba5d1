package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Tenant, error)
	GetByIDString(ctx context.Context, id string) (*Tenant, error)
	ListActive(ctx context.Context) ([]Tenant, error)
	UpdateFeeConfig(ctx context.Context, id snowflake.ID, req UpdateFeeConfigRequest) (*Tenant, error)
}

type UpdateFeeConfigRequest struct {
	StorageRate          *string `json:"storage_rate"`
	StorageFreeDays      *int    `json:"storage_free_days"`
	StorageCountWeekends *bool   `json:"storage_count_weekends"`
	ReceivingFeeRate     *string `json:"receiving_fee_rate"`
	PackageQuota         *int    `json:"package_quota"`
	PackageQuotaOverage  *string `json:"package_quota_overage"`
	TaxRate              *string `json:"tax_rate"`
}
