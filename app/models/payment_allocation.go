package models

import "time"

// PaymentAllocation applies part or all of a payment to a charge. Rows are
// created atomically in batches and are immutable afterwards; corrections are
// new allocations or a compensating cancellation, never an update.
type PaymentAllocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;index" json:"tenant_id"`
	PaymentID uint      `gorm:"not null;index" json:"payment_id"`
	Payment   Payment   `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	ChargeID  uint      `gorm:"not null;index" json:"charge_id"`
	Charge    Charge    `gorm:"foreignKey:ChargeID" json:"charge,omitempty"`
	Amount    int64     `gorm:"type:bigint;not null" json:"amount"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
