// Package domain contains persistence models for the parcel service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/postboxhq/postbox/internal/fees"
	"github.com/shopspring/decimal"
)

type ParcelStatus string

const (
	StatusCheckedIn ParcelStatus = "checked_in"
	StatusNotified  ParcelStatus = "notified"
	StatusReady     ParcelStatus = "ready"
	StatusReleased  ParcelStatus = "released"
	StatusReturned  ParcelStatus = "returned"
)

// HeldStatuses are the statuses under which a parcel still occupies
// shelf space and accrues storage fees. Released and returned parcels
// are terminal for charging.
var HeldStatuses = []ParcelStatus{StatusCheckedIn, StatusNotified, StatusReady}

// Parcel is one package held for a customer's private mailbox.
type Parcel struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index:ix_parcels_tenant_status,priority:1" json:"tenant_id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	PMBNumber  string       `gorm:"type:text;not null" json:"pmb_number"`

	Carrier        string       `gorm:"type:text;not null" json:"carrier"`
	TrackingNumber string       `gorm:"type:text" json:"tracking_number"`
	PackageType    string       `gorm:"type:text;not null;default:'parcel'" json:"package_type"`
	Status         ParcelStatus `gorm:"type:text;not null;index:ix_parcels_tenant_status,priority:2" json:"status"`

	CheckedInAt  time.Time       `gorm:"not null;index" json:"checked_in_at"`
	ReleasedAt   *time.Time      `json:"released_at,omitempty"`
	ReceivingFee decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"receiving_fee"`
	StorageFee   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"storage_fee"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Parcel) TableName() string { return "parcels" }

// Held reports whether the parcel is still in inventory.
func (p Parcel) Held() bool {
	switch p.Status {
	case StatusCheckedIn, StatusNotified, StatusReady:
		return true
	}
	return false
}

// ForFees projects the parcel into the calculator's input shape.
func (p Parcel) ForFees() fees.Package {
	return fees.Package{
		ID:             p.ID.String(),
		CheckedInAt:    p.CheckedInAt,
		ReceivingFee:   p.ReceivingFee,
		StorageFee:     p.StorageFee,
		Carrier:        p.Carrier,
		TrackingNumber: p.TrackingNumber,
		PackageType:    p.PackageType,
	}
}
