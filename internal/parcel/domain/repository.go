package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrParcelNotFound    = errors.New("parcel_not_found")
	ErrNoEligibleParcels = errors.New("no_eligible_parcels")
	ErrNotHeld           = errors.New("parcel_not_held")
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, parcel *Parcel) error
	Get(ctx context.Context, tenantID, id snowflake.ID) (*Parcel, error)

	// FindHeldByIDs returns the held parcels among ids that belong to the
	// given customer. Parcels in a terminal status are silently omitted.
	FindHeldByIDs(ctx context.Context, tenantID, customerID snowflake.ID, ids []snowflake.ID) ([]Parcel, error)

	// CountCheckedInSince counts a customer's parcels checked in at or
	// after the given instant, excluding the given batch. Feeds the
	// monthly quota window.
	CountCheckedInSince(ctx context.Context, tenantID, customerID snowflake.ID, since time.Time, excludeIDs []snowflake.ID) (int64, error)

	// FindHeldCheckedInBefore returns every held parcel for the tenant
	// whose check-in predates the cutoff. Backs the daily storage scan.
	FindHeldCheckedInBefore(ctx context.Context, tenantID snowflake.ID, cutoff time.Time) ([]Parcel, error)

	UpdateStatus(ctx context.Context, tenantID, id snowflake.ID, status ParcelStatus, at time.Time) error
}
