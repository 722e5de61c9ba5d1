package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is a display-ready receipt line.
type LineItem struct {
	Label     string          `json:"label"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// BuildLineItems projects a calculation result into an ordered receipt:
// one line per package with a storage fee, an aggregate receiving line,
// an overage line and add-on line when non-zero, then tax and total.
func BuildLineItems(result *Result) []LineItem {
	items := make([]LineItem, 0, len(result.Packages)+4)

	for _, pkg := range result.Packages {
		if !pkg.StorageFee.IsPositive() {
			continue
		}
		items = append(items, LineItem{
			Label:     fmt.Sprintf("Storage fee — %d days held (Package %s)", pkg.BillableDays, shortID(pkg.PackageID)),
			Qty:       1,
			UnitPrice: pkg.StorageFee,
			Total:     pkg.StorageFee,
		})
	}

	if result.ReceivingFeeTotal.IsPositive() {
		unit := decimal.Zero
		if len(result.Packages) > 0 {
			unit = result.Packages[0].ReceivingFee
		}
		items = append(items, LineItem{
			Label:     "Package receiving/handling fee",
			Qty:       len(result.Packages),
			UnitPrice: unit,
			Total:     result.ReceivingFeeTotal,
		})
	}

	if result.OverageFeeTotal.IsPositive() {
		unit := decimal.Zero
		for _, pkg := range result.Packages {
			if pkg.OverageFee.IsPositive() {
				unit = pkg.OverageFee
				break
			}
		}
		items = append(items, LineItem{
			Label:     fmt.Sprintf("Monthly quota overage (%d over limit of %d)", result.PackagesOverQuota, result.QuotaLimit),
			Qty:       result.PackagesOverQuota,
			UnitPrice: unit,
			Total:     result.OverageFeeTotal,
		})
	}

	if result.AddOnTotal.IsPositive() {
		items = append(items, LineItem{
			Label:     "Add-on services",
			Qty:       1,
			UnitPrice: result.AddOnTotal,
			Total:     result.AddOnTotal,
		})
	}

	items = append(items, LineItem{
		Label:     "Tax",
		Qty:       1,
		UnitPrice: result.TaxAmount,
		Total:     result.TaxAmount,
	})
	items = append(items, LineItem{
		Label:     "Total",
		Qty:       1,
		UnitPrice: result.GrandTotal,
		Total:     result.GrandTotal,
	})

	return items
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
