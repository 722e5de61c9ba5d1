// Package domain defines the daily storage charge generator contract.
package domain

import (
	"context"
	"errors"
)

var ErrInvalidTenant = errors.New("invalid_tenant")

// PackageError records one package the generator could not charge. The
// batch continues past it.
type PackageError struct {
	PackageID string `json:"package_id"`
	Message   string `json:"message"`
}

// Report summarizes one generator run.
type Report struct {
	ChargesCreated int            `json:"charges_created"`
	ChargesSkipped int            `json:"charges_skipped"`
	TenantsScanned int            `json:"tenants_scanned"`
	Errors         []PackageError `json:"errors"`
}

type Service interface {
	// GenerateDailyStorageCharges ensures exactly one storage charge
	// event exists per held, past-free-window package for the current
	// UTC calendar day. tenantID scopes the run to one tenant; empty
	// means all active tenants. Running it twice on the same day creates
	// nothing new the second time.
	GenerateDailyStorageCharges(ctx context.Context, tenantID string) (*Report, error)
}
