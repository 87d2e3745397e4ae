package ledger

import "github.com/yabreu65/buildingOs-sub002/app/models"

// DeriveChargeStatus computes the charge status from the allocated sum
// against the charge amount. The status column is a projection of this
// function at all times; nothing else may set it except the cancel
// transition.
func DeriveChargeStatus(allocated, amount int64) string {
	switch {
	case allocated <= 0:
		return models.ChargeStatusPending
	case allocated < amount:
		return models.ChargeStatusPartial
	default:
		return models.ChargeStatusPaid
	}
}

// chargeTransitions is the closed transition table for explicit charge
// status changes. Derived recomputation (pending/partial/paid) does not go
// through this table; only cancel does.
var chargeTransitions = map[string]map[string]bool{
	models.ChargeStatusPending: {models.ChargeStatusCanceled: true},
	models.ChargeStatusPartial: {models.ChargeStatusCanceled: true},
}

// CanTransitionCharge reports whether an explicit charge transition is legal.
func CanTransitionCharge(from, to string) bool {
	return chargeTransitions[from][to]
}

// paymentTransitions is the closed transition table for payment review.
var paymentTransitions = map[string]map[string]bool{
	models.PaymentStatusSubmitted: {
		models.PaymentStatusApproved: true,
		models.PaymentStatusRejected: true,
	},
}

// CanTransitionPayment reports whether a payment review transition is legal.
func CanTransitionPayment(from, to string) bool {
	return paymentTransitions[from][to]
}

// Outstanding returns the unpaid remainder of a charge, never negative.
func Outstanding(amount, allocated int64) int64 {
	if allocated >= amount {
		return 0
	}
	return amount - allocated
}
