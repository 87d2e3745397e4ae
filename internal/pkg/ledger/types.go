package ledger

import (
	"time"

	"github.com/yabreu65/buildingOs-sub002/app/models"
)

// CreateChargeInput is the normalized input for creating a charge.
type CreateChargeInput struct {
	TenantID    uint
	BuildingID  uint
	UnitID      uint
	Period      string // YYYY-MM
	Type        string
	Concept     string
	Amount      int64 // minor currency units
	Currency    string
	DueDate     time.Time
	ActorUserID uint
}

// SubmitPaymentInput is the normalized input for a claimed payment.
type SubmitPaymentInput struct {
	TenantID        uint
	BuildingID      uint
	UnitID          uint
	Amount          int64
	Currency        string
	Method          string
	PaidAt          *time.Time
	Reference       string
	ProofFileID     string
	CreatedByUserID uint
}

// AllocationEntry names one charge and the amount applied to it.
type AllocationEntry struct {
	ChargeUUID string
	Amount     int64
}

// AllocateInput is an atomic batch of allocations from one payment.
type AllocateInput struct {
	TenantID    uint
	PaymentUUID string
	Entries     []AllocationEntry
	ActorUserID uint
}

// ChargeLine is a charge with its allocation figures for ledger views.
type ChargeLine struct {
	Charge      models.Charge `json:"charge"`
	Allocated   int64         `json:"allocated"`
	Outstanding int64         `json:"outstanding"`
}

// UnitLedger is the read-only per-unit projection: charges with allocated
// and outstanding amounts plus the unit's payments.
type UnitLedger struct {
	UnitID   uint             `json:"unit_id"`
	Charges  []ChargeLine     `json:"charges"`
	Payments []models.Payment `json:"payments"`
}

// BuildingSummary aggregates a building's financial position.
type BuildingSummary struct {
	BuildingID       uint  `json:"building_id"`
	TotalCharged     int64 `json:"total_charged"`
	TotalPaid        int64 `json:"total_paid"` // sum of all allocations
	TotalOutstanding int64 `json:"total_outstanding"`
	ChargeCount      int64 `json:"charge_count"`
	PaymentCount     int64 `json:"payment_count"`
}
