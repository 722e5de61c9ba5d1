// Package seed bootstraps a demo tenant for development environments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/fees"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoTenantName = "Main Street Postal"
	demoTenantSlug = "main-street-postal"
)

// EnsureDemoTenant seeds the default tenant with the stock fee
// configuration. Idempotent: an existing tenant with the demo slug is
// left untouched.
func EnsureDemoTenant(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tenantdomain.Tenant
		err := tx.First(&existing, "slug = ?", demoTenantSlug).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cfg := fees.DefaultConfig()
		now := time.Now().UTC()
		tenant := tenantdomain.Tenant{
			ID:                   node.Generate(),
			Name:                 demoTenantName,
			Slug:                 demoTenantSlug,
			Status:               tenantdomain.TenantActive,
			StorageRate:          cfg.StorageRate,
			StorageFreeDays:      cfg.StorageFreeDays,
			StorageCountWeekends: cfg.StorageCountWeekends,
			ReceivingFeeRate:     cfg.ReceivingFeeRate,
			PackageQuota:         cfg.PackageQuota,
			PackageQuotaOverage:  cfg.PackageQuotaOverage,
			TaxRate:              cfg.TaxRate,
			Metadata:             datatypes.JSONMap{},
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		return tx.Create(&tenant).Error
	})
}
