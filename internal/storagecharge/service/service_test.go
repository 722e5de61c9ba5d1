package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	chargedomain "github.com/postboxhq/postbox/internal/chargeevent/domain"
	chargerepo "github.com/postboxhq/postbox/internal/chargeevent/repository"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/observability/metrics"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	parcelrepo "github.com/postboxhq/postbox/internal/parcel/repository"
	"github.com/postboxhq/postbox/internal/storagecharge/domain"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	tenantrepo "github.com/postboxhq/postbox/internal/tenant/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    domain.Service
	clock  *clock.FakeClock
	node   *snowflake.Node
	tenant *tenantdomain.Tenant
}

func setup(t *testing.T) *fixture {
	t.Helper()
	metrics.ResetJobMetricsForTest()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&parceldomain.Parcel{},
		&chargedomain.ChargeEvent{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	// Monday.
	fake := clock.NewFakeClock(time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC))

	tenant := &tenantdomain.Tenant{
		ID:                   node.Generate(),
		Name:                 "Main Street Postal",
		Slug:                 "main-street-postal",
		Status:               tenantdomain.TenantActive,
		StorageRate:          decimal.NewFromFloat(1.00),
		StorageFreeDays:      30,
		StorageCountWeekends: true,
		ReceivingFeeRate:     decimal.NewFromFloat(3.00),
		PackageQuotaOverage:  decimal.NewFromFloat(2.00),
		TaxRate:              decimal.NewFromFloat(0.0875),
		Metadata:             datatypes.JSONMap{},
		CreatedAt:            fake.Now(),
		UpdatedAt:            fake.Now(),
	}
	require.NoError(t, conn.Create(tenant).Error)

	svc := NewService(ServiceParam{
		Tenants: tenantrepo.NewRepository(conn),
		Parcels: parcelrepo.NewRepository(conn),
		Charges: chargerepo.NewRepository(conn),
		Clock:   fake,
		GenID:   node,
		Log:     zap.NewNop(),
	})

	return &fixture{db: conn, svc: svc, clock: fake, node: node, tenant: tenant}
}

func (f *fixture) addParcel(t *testing.T, status parceldomain.ParcelStatus, daysAgo int) *parceldomain.Parcel {
	t.Helper()
	parcel := &parceldomain.Parcel{
		ID:           f.node.Generate(),
		TenantID:     f.tenant.ID,
		CustomerID:   f.node.Generate(),
		PMBNumber:    "104",
		Carrier:      "ups",
		PackageType:  "parcel",
		Status:       status,
		CheckedInAt:  f.clock.Now().AddDate(0, 0, -daysAgo),
		ReceivingFee: decimal.NewFromFloat(3.00),
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.db.Create(parcel).Error)
	return parcel
}

func countEvents(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, conn.Model(&chargedomain.ChargeEvent{}).Count(&count).Error)
	return count
}

func TestGenerate_Idempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.addParcel(t, parceldomain.StatusCheckedIn, 35)
	f.addParcel(t, parceldomain.StatusNotified, 40)
	f.addParcel(t, parceldomain.StatusReady, 31)

	report, err := f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, report.ChargesCreated)
	assert.Empty(t, report.Errors)
	assert.EqualValues(t, 3, countEvents(t, f.db))

	// Second run in the same day creates nothing.
	report, err = f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.ChargesCreated)
	assert.Equal(t, 3, report.ChargesSkipped)
	assert.EqualValues(t, 3, countEvents(t, f.db))

	// Next day the packages become chargeable again.
	f.clock.Advance(24 * time.Hour)
	report, err = f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, report.ChargesCreated)
	assert.EqualValues(t, 6, countEvents(t, f.db))
}

func TestGenerate_SkipsFreeWindowAndTerminal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.addParcel(t, parceldomain.StatusCheckedIn, 10) // within free window
	f.addParcel(t, parceldomain.StatusReleased, 45)  // terminal
	f.addParcel(t, parceldomain.StatusReturned, 45)  // terminal
	eligible := f.addParcel(t, parceldomain.StatusCheckedIn, 45)

	report, err := f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChargesCreated)

	var event chargedomain.ChargeEvent
	require.NoError(t, f.db.First(&event).Error)
	assert.Equal(t, eligible.ID, event.PackageID)
	assert.Equal(t, chargedomain.ServiceStorage, event.ServiceType)
	assert.True(t, event.Amount.Equal(decimal.NewFromFloat(1.00)))
	assert.Contains(t, event.Description, "Daily storage fee")
}

func TestGenerate_WeekendSkippedWhenNotCounted(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.tenant.StorageCountWeekends = false
	require.NoError(t, f.db.Save(f.tenant).Error)
	f.addParcel(t, parceldomain.StatusCheckedIn, 45)

	// Saturday.
	f.clock.Set(time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC))
	report, err := f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 0, report.ChargesCreated)
	assert.EqualValues(t, 0, countEvents(t, f.db))

	// Monday.
	f.clock.Set(time.Date(2026, 3, 16, 6, 0, 0, 0, time.UTC))
	report, err = f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChargesCreated)
}

func TestGenerate_TenantScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.addParcel(t, parceldomain.StatusCheckedIn, 45)

	other := &tenantdomain.Tenant{
		ID:              f.node.Generate(),
		Name:            "Harbor Mail Center",
		Slug:            "harbor-mail-center",
		Status:          tenantdomain.TenantActive,
		StorageRate:     decimal.NewFromFloat(2.00),
		StorageFreeDays: 0,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       f.clock.Now(),
		UpdatedAt:       f.clock.Now(),
	}
	require.NoError(t, f.db.Create(other).Error)

	// Scoped to the first tenant only.
	report, err := f.svc.GenerateDailyStorageCharges(ctx, f.tenant.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, report.TenantsScanned)
	assert.Equal(t, 1, report.ChargesCreated)

	// Unknown tenant resolves to an empty scope, not an error.
	report, err = f.svc.GenerateDailyStorageCharges(ctx, f.node.Generate().String())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TenantsScanned)
	assert.Equal(t, 0, report.ChargesCreated)

	// Malformed tenant ID fails before any work.
	_, err = f.svc.GenerateDailyStorageCharges(ctx, "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)

	// Suspended tenants are excluded from the all-tenant scan.
	f.tenant.Status = tenantdomain.TenantSuspended
	require.NoError(t, f.db.Save(f.tenant).Error)
	report, err = f.svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.TenantsScanned)
	assert.Equal(t, 0, report.ChargesCreated)
}

// flakyChargeRepo fails the conditional insert for a single package and
// delegates everything else.
type flakyChargeRepo struct {
	chargedomain.Repository
	failFor snowflake.ID
}

func (r *flakyChargeRepo) CreateIfAbsent(ctx context.Context, event *chargedomain.ChargeEvent) (bool, error) {
	if event.PackageID == r.failFor {
		return false, errors.New("connection reset by peer")
	}
	return r.Repository.CreateIfAbsent(ctx, event)
}

func TestGenerate_PackageFailureDoesNotStopBatch(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.addParcel(t, parceldomain.StatusCheckedIn, 45)
	bad := f.addParcel(t, parceldomain.StatusCheckedIn, 40)
	f.addParcel(t, parceldomain.StatusCheckedIn, 35)

	svc := NewService(ServiceParam{
		Tenants: tenantrepo.NewRepository(f.db),
		Parcels: parcelrepo.NewRepository(f.db),
		Charges: &flakyChargeRepo{Repository: chargerepo.NewRepository(f.db), failFor: bad.ID},
		Clock:   f.clock,
		GenID:   f.node,
		Log:     zap.NewNop(),
	})

	report, err := svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.ChargesCreated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, bad.ID.String(), report.Errors[0].PackageID)
	assert.Contains(t, report.Errors[0].Message, "failed to create storage charge")
	assert.EqualValues(t, 2, countEvents(t, f.db))
}

// brokenScanParcelRepo fails the held-parcel scan for one tenant only.
type brokenScanParcelRepo struct {
	parceldomain.Repository
	failFor snowflake.ID
}

func (r *brokenScanParcelRepo) FindHeldCheckedInBefore(ctx context.Context, tenantID snowflake.ID, cutoff time.Time) ([]parceldomain.Parcel, error) {
	if tenantID == r.failFor {
		return nil, errors.New("database is locked")
	}
	return r.Repository.FindHeldCheckedInBefore(ctx, tenantID, cutoff)
}

func TestGenerate_TenantScanFailureDoesNotStopRun(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other := &tenantdomain.Tenant{
		ID:              f.node.Generate(),
		Name:            "Harbor Mail Center",
		Slug:            "harbor-mail-center",
		Status:          tenantdomain.TenantActive,
		StorageRate:     decimal.NewFromFloat(2.00),
		StorageFreeDays: 0,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       f.clock.Now(),
		UpdatedAt:       f.clock.Now(),
	}
	require.NoError(t, f.db.Create(other).Error)

	f.addParcel(t, parceldomain.StatusCheckedIn, 45)

	svc := NewService(ServiceParam{
		Tenants: tenantrepo.NewRepository(f.db),
		Parcels: &brokenScanParcelRepo{Repository: parcelrepo.NewRepository(f.db), failFor: other.ID},
		Charges: chargerepo.NewRepository(f.db),
		Clock:   f.clock,
		GenID:   f.node,
		Log:     zap.NewNop(),
	})

	report, err := svc.GenerateDailyStorageCharges(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.TenantsScanned)
	assert.Equal(t, 1, report.ChargesCreated)
	require.Len(t, report.Errors, 1)
	assert.Empty(t, report.Errors[0].PackageID)
	assert.Contains(t, report.Errors[0].Message, "failed to process tenant")
	assert.EqualValues(t, 1, countEvents(t, f.db))
}
