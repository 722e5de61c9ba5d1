// Package fees computes checkout fee breakdowns for held packages.
//
// The calculator is pure: every input, including the reference instant,
// is an explicit argument, so two calls with the same arguments always
// produce the same result.
package fees

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNoPackages    = errors.New("no_packages")
	ErrFutureCheckIn = errors.New("future_check_in")
	ErrInvalidConfig = errors.New("invalid_fee_config")
)

// Package is the read-only projection the calculator consumes. Carrier,
// tracking number and package type are pass-through for line-item labels.
type Package struct {
	ID             string
	CheckedInAt    time.Time
	ReceivingFee   decimal.Decimal
	StorageFee     decimal.Decimal
	Carrier        string
	TrackingNumber string
	PackageType    string
}

// Config is a tenant's fee configuration. PackageQuota of 0 means
// unlimited packages per month.
type Config struct {
	StorageRate          decimal.Decimal
	StorageFreeDays      int
	StorageCountWeekends bool
	ReceivingFeeRate     decimal.Decimal
	PackageQuota         int
	PackageQuotaOverage  decimal.Decimal
	TaxRate              decimal.Decimal
}

// DefaultConfig returns the stock fee configuration new tenants start
// with: $1/day storage after 30 free days, $3 receiving, unlimited
// monthly quota, 8.75% tax.
func DefaultConfig() Config {
	return Config{
		StorageRate:          decimal.NewFromFloat(1.0),
		StorageFreeDays:      30,
		StorageCountWeekends: true,
		ReceivingFeeRate:     decimal.NewFromFloat(3.0),
		PackageQuota:         0,
		PackageQuotaOverage:  decimal.NewFromFloat(2.0),
		TaxRate:              decimal.NewFromFloat(0.0875),
	}
}

// Validate rejects configurations with negative rates or quota.
func (c Config) Validate() error {
	if c.StorageRate.IsNegative() ||
		c.ReceivingFeeRate.IsNegative() ||
		c.PackageQuotaOverage.IsNegative() ||
		c.TaxRate.IsNegative() {
		return ErrInvalidConfig
	}
	if c.StorageFreeDays < 0 || c.PackageQuota < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// PackageBreakdown is the per-package portion of a calculation result.
type PackageBreakdown struct {
	PackageID      string          `json:"package_id"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	DaysStored     int             `json:"days_stored"`
	BillableDays   int             `json:"billable_days"`
	StorageFee     decimal.Decimal `json:"storage_fee"`
	ReceivingFee   decimal.Decimal `json:"receiving_fee"`
	OverageFee     decimal.Decimal `json:"overage_fee"`
	Total          decimal.Decimal `json:"total"`
}

// Result is an immutable fee calculation outcome.
type Result struct {
	Packages          []PackageBreakdown `json:"packages"`
	StorageFeeTotal   decimal.Decimal    `json:"storage_fee_total"`
	ReceivingFeeTotal decimal.Decimal    `json:"receiving_fee_total"`
	OverageFeeTotal   decimal.Decimal    `json:"overage_fee_total"`
	AddOnTotal        decimal.Decimal    `json:"add_on_total"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	TaxAmount         decimal.Decimal    `json:"tax_amount"`
	GrandTotal        decimal.Decimal    `json:"grand_total"`

	QuotaUsed         int `json:"quota_used"`
	QuotaLimit        int `json:"quota_limit"`
	PackagesOverQuota int `json:"packages_over_quota"`
}

// CalculateFees computes the fee breakdown for one checkout batch.
//
// priorMonthlyCount is the number of packages already checked in for this
// customer in the current calendar month, excluding the batch itself; it
// anchors quota numbering. now is the reference instant for day counting.
func CalculateFees(packages []Package, cfg Config, priorMonthlyCount int, addOnTotal decimal.Decimal, now time.Time) (*Result, error) {
	if len(packages) == 0 {
		return nil, ErrNoPackages
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if priorMonthlyCount < 0 || addOnTotal.IsNegative() {
		return nil, ErrInvalidConfig
	}
	for _, pkg := range packages {
		if pkg.CheckedInAt.After(now) {
			return nil, ErrFutureCheckIn
		}
	}

	result := &Result{
		Packages:   make([]PackageBreakdown, 0, len(packages)),
		AddOnTotal: addOnTotal.Round(2),
		QuotaUsed:  priorMonthlyCount + len(packages),
		QuotaLimit: cfg.PackageQuota,
	}

	storageTotal := decimal.Zero
	receivingTotal := decimal.Zero
	overageTotal := decimal.Zero

	for i, pkg := range packages {
		daysStored := DaysStored(pkg.CheckedInAt, now)
		billableDays := BillableDays(pkg.CheckedInAt, now, cfg.StorageFreeDays, cfg.StorageCountWeekends)

		storageFee := cfg.StorageRate.Mul(decimal.NewFromInt(int64(billableDays))).Round(2)
		receivingFee := pkg.ReceivingFee.Round(2)

		overageFee := decimal.Zero
		// Packages are numbered in the combined monthly sequence; quota 0
		// means unlimited.
		seq := priorMonthlyCount + i + 1
		if cfg.PackageQuota > 0 && seq > cfg.PackageQuota {
			overageFee = cfg.PackageQuotaOverage.Round(2)
			result.PackagesOverQuota++
		}

		breakdown := PackageBreakdown{
			PackageID:      pkg.ID,
			TrackingNumber: pkg.TrackingNumber,
			DaysStored:     daysStored,
			BillableDays:   billableDays,
			StorageFee:     storageFee,
			ReceivingFee:   receivingFee,
			OverageFee:     overageFee,
			Total:          storageFee.Add(receivingFee).Add(overageFee).Round(2),
		}
		result.Packages = append(result.Packages, breakdown)

		storageTotal = storageTotal.Add(storageFee)
		receivingTotal = receivingTotal.Add(receivingFee)
		overageTotal = overageTotal.Add(overageFee)
	}

	// Rounding points are fixed per summation stage so the outcome does
	// not depend on evaluation order.
	result.StorageFeeTotal = storageTotal.Round(2)
	result.ReceivingFeeTotal = receivingTotal.Round(2)
	result.OverageFeeTotal = overageTotal.Round(2)
	result.Subtotal = result.StorageFeeTotal.
		Add(result.ReceivingFeeTotal).
		Add(result.OverageFeeTotal).
		Add(result.AddOnTotal).
		Round(2)
	result.TaxAmount = result.Subtotal.Mul(cfg.TaxRate).Round(2)
	result.GrandTotal = result.Subtotal.Add(result.TaxAmount).Round(2)

	return result, nil
}

// DaysStored counts calendar days between check-in and now, rounding any
// fractional remainder up. A package checked in moments ago counts 0 days
// only when the timestamps coincide exactly.
func DaysStored(checkedInAt, now time.Time) int {
	elapsed := now.Sub(checkedInAt)
	if elapsed <= 0 {
		return 0
	}
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// BillableDays counts the days past the free window that accrue storage
// fees. When countWeekends is false the window is walked day by day and
// Saturdays and Sundays are excluded.
func BillableDays(checkedInAt, now time.Time, freeDays int, countWeekends bool) int {
	daysStored := DaysStored(checkedInAt, now)
	billable := daysStored - freeDays
	if billable <= 0 {
		return 0
	}
	if countWeekends {
		return billable
	}

	count := 0
	day := checkedInAt.AddDate(0, 0, freeDays)
	for i := 0; i < billable; i++ {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
