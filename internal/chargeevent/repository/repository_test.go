package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.ChargeEvent{}))
	return conn
}

func newEvent(node *snowflake.Node, tenantID, packageID snowflake.ID, day time.Time) *domain.ChargeEvent {
	return &domain.ChargeEvent{
		ID:          node.Generate(),
		TenantID:    tenantID,
		CustomerID:  node.Generate(),
		PackageID:   packageID,
		ServiceType: domain.ServiceStorage,
		ChargeDay:   day,
		Description: "Daily storage fee",
		Quantity:    1,
		UnitRate:    decimal.NewFromFloat(1.00),
		Amount:      decimal.NewFromFloat(1.00),
		Status:      domain.ChargePending,
		CreatedAt:   day,
	}
}

func TestCreateIfAbsent_Conflict(t *testing.T) {
	conn := setupDB(t)
	repo := NewRepository(conn)
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	tenantID := node.Generate()
	packageID := node.Generate()
	day := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	created, err := repo.CreateIfAbsent(ctx, newEvent(node, tenantID, packageID, day))
	require.NoError(t, err)
	assert.True(t, created)

	// Same package, same day, different event ID: must be a no-op.
	created, err = repo.CreateIfAbsent(ctx, newEvent(node, tenantID, packageID, day.Add(5*time.Hour)))
	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.CountForDay(ctx, tenantID, day)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Next day is a fresh idempotency key.
	created, err = repo.CreateIfAbsent(ctx, newEvent(node, tenantID, packageID, day.AddDate(0, 0, 1)))
	require.NoError(t, err)
	assert.True(t, created)

	// A receiving charge on the same day does not collide with storage.
	receiving := newEvent(node, tenantID, packageID, day)
	receiving.ServiceType = domain.ServiceReceiving
	created, err = repo.CreateIfAbsent(ctx, receiving)
	require.NoError(t, err)
	assert.True(t, created)
}

func TestList_FiltersAndPagination(t *testing.T) {
	conn := setupDB(t)
	repo := NewRepository(conn)
	node, _ := snowflake.NewNode(1)
	ctx := context.Background()

	tenantID := node.Generate()
	otherTenant := node.Generate()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := repo.CreateIfAbsent(ctx, newEvent(node, tenantID, node.Generate(), day.AddDate(0, 0, i)))
		require.NoError(t, err)
	}
	_, err := repo.CreateIfAbsent(ctx, newEvent(node, otherTenant, node.Generate(), day))
	require.NoError(t, err)

	events, info, err := repo.List(ctx, domain.ListFilter{TenantID: tenantID}, pagination.Pagination{PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.True(t, info.HasMore)
	require.NotEmpty(t, info.NextPageToken)

	events, info, err = repo.List(ctx, domain.ListFilter{TenantID: tenantID}, pagination.Pagination{PageSize: 3, PageToken: info.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.False(t, info.HasMore)

	from := day.AddDate(0, 0, 3)
	events, _, err = repo.List(ctx, domain.ListFilter{TenantID: tenantID, DayFrom: &from}, pagination.Pagination{})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, _, err = repo.List(ctx, domain.ListFilter{TenantID: tenantID, ServiceType: domain.ServiceReceiving}, pagination.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, events)
}
