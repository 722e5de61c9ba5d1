package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/internal/chargeevent/repository"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/fees"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.ChargeEvent{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		Repo:  repository.NewRepository(conn),
		Clock: fake,
		GenID: node,
		Log:   zap.NewNop(),
	})
	return svc, conn, node, fake
}

func testTenant(node *snowflake.Node) *tenantdomain.Tenant {
	return &tenantdomain.Tenant{
		ID:               node.Generate(),
		Name:             "Main Street Postal",
		Status:           tenantdomain.TenantActive,
		StorageRate:      decimal.NewFromFloat(1.00),
		ReceivingFeeRate: decimal.NewFromFloat(3.00),
	}
}

func TestRecordReceiving(t *testing.T) {
	svc, conn, node, fake := setup(t)
	ctx := context.Background()
	tenant := testTenant(node)

	parcel := &parceldomain.Parcel{
		ID:          node.Generate(),
		TenantID:    tenant.ID,
		CustomerID:  node.Generate(),
		PMBNumber:   "104",
		Carrier:     "fedex",
		PackageType: "box",
		Status:      parceldomain.StatusCheckedIn,
		CheckedInAt: fake.Now(),
	}

	event, err := svc.RecordReceiving(ctx, tenant, parcel)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, domain.ServiceReceiving, event.ServiceType)
	// Parcel has no receiving fee set; tenant rate applies.
	assert.True(t, event.Amount.Equal(decimal.NewFromFloat(3.00)))
	assert.Contains(t, event.Description, "fedex")

	// Second record for the same check-in is a no-op.
	event, err = svc.RecordReceiving(ctx, tenant, parcel)
	require.NoError(t, err)
	assert.Nil(t, event)

	var count int64
	require.NoError(t, conn.Model(&domain.ChargeEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordReceiving_ParcelFeeWins(t *testing.T) {
	svc, _, node, fake := setup(t)
	tenant := testTenant(node)

	parcel := &parceldomain.Parcel{
		ID:           node.Generate(),
		TenantID:     tenant.ID,
		CustomerID:   node.Generate(),
		Carrier:      "ups",
		PackageType:  "parcel",
		CheckedInAt:  fake.Now(),
		ReceivingFee: decimal.NewFromFloat(4.50),
	}

	event, err := svc.RecordReceiving(context.Background(), tenant, parcel)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.True(t, event.Amount.Equal(decimal.NewFromFloat(4.50)))
}

func TestRecordCheckoutStorage(t *testing.T) {
	svc, conn, node, fake := setup(t)
	ctx := context.Background()
	tenant := testTenant(node)

	stored := parceldomain.Parcel{
		ID:          node.Generate(),
		TenantID:    tenant.ID,
		CustomerID:  node.Generate(),
		PMBNumber:   "104",
		CheckedInAt: fake.Now().AddDate(0, 0, -35),
	}
	fresh := parceldomain.Parcel{
		ID:          node.Generate(),
		TenantID:    tenant.ID,
		CustomerID:  stored.CustomerID,
		PMBNumber:   "104",
		CheckedInAt: fake.Now(),
	}

	breakdowns := []fees.PackageBreakdown{
		{
			PackageID:    stored.ID.String(),
			DaysStored:   35,
			BillableDays: 5,
			StorageFee:   decimal.NewFromFloat(5.00),
		},
		{
			PackageID:    fresh.ID.String(),
			DaysStored:   0,
			BillableDays: 0,
			StorageFee:   decimal.Zero,
		},
	}

	events, err := svc.RecordCheckoutStorage(ctx, tenant, []parceldomain.Parcel{stored, fresh}, breakdowns)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, stored.ID, events[0].PackageID)
	assert.Equal(t, 5, events[0].Quantity)
	assert.True(t, events[0].Amount.Equal(decimal.NewFromFloat(5.00)))
	assert.True(t, events[0].UnitRate.Equal(decimal.NewFromFloat(1.00)))

	var count int64
	require.NoError(t, conn.Model(&domain.ChargeEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
