// Package domain contains persistence models for charge events.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceReceiving ServiceType = "receiving"
	ServiceStorage   ServiceType = "storage"
)

type ChargeStatus string

const (
	ChargePending  ChargeStatus = "pending"
	ChargeInvoiced ChargeStatus = "invoiced"
	ChargeVoided   ChargeStatus = "voided"
)

// ChargeEvent is one billable occurrence for one package. The unique
// index on (package_id, service_type, charge_day) is the idempotency
// key: a row is created once and never mutated afterwards.
type ChargeEvent struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null;index:ix_charge_events_tenant_day,priority:1" json:"tenant_id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	PMBNumber  string       `gorm:"type:text" json:"pmb_number"`

	PackageID   snowflake.ID `gorm:"not null;uniqueIndex:ux_charge_events_package_day,priority:1" json:"package_id"`
	ServiceType ServiceType  `gorm:"type:text;not null;uniqueIndex:ux_charge_events_package_day,priority:2" json:"service_type"`
	ChargeDay   time.Time    `gorm:"type:date;not null;uniqueIndex:ux_charge_events_package_day,priority:3;index:ix_charge_events_tenant_day,priority:2" json:"charge_day"`

	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    int             `gorm:"not null;default:1" json:"quantity"`
	UnitRate    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount"`

	Status    ChargeStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	Notes     string       `gorm:"type:text" json:"notes"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ChargeEvent) TableName() string { return "charge_events" }

// Day truncates t to its UTC calendar day, the granularity charge
// events are keyed on.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
