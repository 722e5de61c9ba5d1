package domain

import (
	"context"

	"github.com/postboxhq/postbox/internal/fees"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"github.com/postboxhq/postbox/pkg/db/pagination"
)

type Service interface {
	// RecordReceiving writes the one-time receiving charge at check-in.
	// The amount falls back to the tenant's receiving rate when the
	// parcel carries none. Re-recording the same check-in is a no-op.
	RecordReceiving(ctx context.Context, tenant *tenantdomain.Tenant, parcel *parceldomain.Parcel) (*ChargeEvent, error)

	// RecordCheckoutStorage writes storage charges for the packages in a
	// checkout batch that accrued billable days.
	RecordCheckoutStorage(ctx context.Context, tenant *tenantdomain.Tenant, parcels []parceldomain.Parcel, breakdowns []fees.PackageBreakdown) ([]*ChargeEvent, error)

	List(ctx context.Context, filter ListFilter, page pagination.Pagination) ([]*ChargeEvent, *pagination.PageInfo, error)
}
