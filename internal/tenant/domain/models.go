// Package domain contains persistence models for the tenant service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/fees"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
)

// Tenant represents one postal store. Fee configuration lives directly
// on the tenant row; the calculator consumes it through FeeConfig.
type Tenant struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	Name   string       `gorm:"type:text;not null" json:"name"`
	Slug   string       `gorm:"type:text;not null;uniqueIndex:ux_tenants_slug" json:"slug"`
	Status TenantStatus `gorm:"type:text;not null;default:'active'" json:"status"`

	StorageRate          decimal.Decimal `gorm:"type:decimal(10,4);not null;default:1.0" json:"storage_rate"`
	StorageFreeDays      int             `gorm:"not null;default:30" json:"storage_free_days"`
	StorageCountWeekends bool            `gorm:"not null;default:true" json:"storage_count_weekends"`
	ReceivingFeeRate     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:3.0" json:"receiving_fee_rate"`
	PackageQuota         int             `gorm:"not null;default:0" json:"package_quota"`
	PackageQuotaOverage  decimal.Decimal `gorm:"type:decimal(10,4);not null;default:2.0" json:"package_quota_overage"`
	TaxRate              decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"tax_rate"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }

// FeeConfig projects the tenant's fee columns into the calculator input.
func (t Tenant) FeeConfig() fees.Config {
	return fees.Config{
		StorageRate:          t.StorageRate,
		StorageFreeDays:      t.StorageFreeDays,
		StorageCountWeekends: t.StorageCountWeekends,
		ReceivingFeeRate:     t.ReceivingFeeRate,
		PackageQuota:         t.PackageQuota,
		PackageQuotaOverage:  t.PackageQuotaOverage,
		TaxRate:              t.TaxRate,
	}
}
