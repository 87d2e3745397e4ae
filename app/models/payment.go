package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentStatusSubmitted = "submitted"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
)

const (
	PaymentMethodTransfer = "transfer"
	PaymentMethodCash     = "cash"
	PaymentMethodCheck    = "check"
	PaymentMethodCard     = "card"
	PaymentMethodOther    = "other"
)

// Payment is a claimed remittance pending administrative review. The system
// records the claim and the review decision, never external settlement.
type Payment struct {
	ID                     uint           `gorm:"primaryKey" json:"id"`
	UUID                   string         `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	TenantID               uint           `gorm:"not null;index" json:"tenant_id"`
	BuildingID             uint           `gorm:"not null;index" json:"building_id"`
	UnitID                 uint           `gorm:"not null;index" json:"unit_id"`
	Amount                 int64          `gorm:"type:bigint;not null" json:"amount" validate:"required,gt=0"`
	Currency               string         `gorm:"type:char(3);not null;default:'USD'" json:"currency" validate:"required,len=3"`
	Method                 string         `gorm:"type:varchar(50);not null;default:'transfer'" json:"method" validate:"oneof=transfer cash check card other"`
	Status                 string         `gorm:"type:varchar(32);not null;default:'submitted';index" json:"status"`
	PaidAt                 *time.Time     `gorm:"type:datetime;default:null" json:"paid_at,omitempty"`
	Reference              string         `gorm:"type:varchar(255)" json:"reference" validate:"max=255"`
	ProofFileID            string         `gorm:"type:varchar(100);default:''" json:"proof_file_id,omitempty"`
	CreatedByUserID        uint           `gorm:"not null" json:"created_by_user_id"`
	ReviewedByMembershipID *uint          `json:"reviewed_by_membership_id,omitempty"`
	ReviewReason           string         `gorm:"type:text" json:"review_reason,omitempty"`
	CreatedAt              time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentStatusSubmitted
	}
	return nil
}

func (p *Payment) Validate() error {
	v := validator.New()

	return v.Struct(p)
}
