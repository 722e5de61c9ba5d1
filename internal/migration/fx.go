// Package migration runs schema migrations and optional demo seeding at
// startup.
package migration

import (
	chargedomain "github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/internal/config"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	"github.com/postboxhq/postbox/internal/seed"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			return seed.EnsureDemoTenant(conn)
		}
		return nil
	}),
)

// RunMigrations applies the schema for every persisted model.
func RunMigrations(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&parceldomain.Parcel{},
		&chargedomain.ChargeEvent{},
	)
}
