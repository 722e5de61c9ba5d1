package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrChargeNotFound = errors.New("charge_event_not_found")
	ErrInvalidCharge  = errors.New("invalid_charge_event")
)

// ListFilter narrows a tenant-scoped charge-event listing.
type ListFilter struct {
	TenantID    snowflake.ID
	CustomerID  snowflake.ID
	PackageID   snowflake.ID
	ServiceType ServiceType
	DayFrom     *time.Time
	DayTo       *time.Time
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// CreateIfAbsent inserts the event unless a row with the same
	// (package_id, service_type, charge_day) already exists. Returns
	// true when a row was written. The check-and-insert is a single
	// conditional statement, safe under concurrent invocation.
	CreateIfAbsent(ctx context.Context, event *ChargeEvent) (bool, error)

	List(ctx context.Context, filter ListFilter, page pagination.Pagination) ([]*ChargeEvent, *pagination.PageInfo, error)
	CountForDay(ctx context.Context, tenantID snowflake.ID, day time.Time) (int64, error)
}
