package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChargeStatusPending  = "pending"
	ChargeStatusPartial  = "partial"
	ChargeStatusPaid     = "paid"
	ChargeStatusCanceled = "canceled"
)

const (
	ChargeTypeMaintenance   = "maintenance"
	ChargeTypeReserveFund   = "reserve_fund"
	ChargeTypeExtraordinary = "extraordinary"
	ChargeTypePenalty       = "penalty"
	ChargeTypeOther         = "other"
)

// Charge is a billable obligation on a unit for a period. Amount is in minor
// currency units (cents). Status is derived from the allocation sum and is
// never set directly except for the explicit cancel transition.
type Charge struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UUID       string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	TenantID   uint           `gorm:"not null;index" json:"tenant_id"`
	BuildingID uint           `gorm:"not null;index" json:"building_id"`
	UnitID     uint           `gorm:"not null;index" json:"unit_id"`
	Period     string         `gorm:"type:char(7);not null;index" json:"period" validate:"required,len=7"` // YYYY-MM
	Type       string         `gorm:"type:varchar(50);not null;default:'maintenance'" json:"type" validate:"oneof=maintenance reserve_fund extraordinary penalty other"`
	Concept    string         `gorm:"type:varchar(255);not null" json:"concept" validate:"required,min=2,max=255"`
	Amount     int64          `gorm:"type:bigint;not null" json:"amount" validate:"required,gt=0"`
	Currency   string         `gorm:"type:char(3);not null;default:'USD'" json:"currency" validate:"required,len=3"`
	DueDate    time.Time      `gorm:"type:datetime;not null" json:"due_date"`
	Status     string         `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Charge) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = ChargeStatusPending
	}
	return nil
}

func (c *Charge) Validate() error {
	v := validator.New()

	return v.Struct(c)
}
