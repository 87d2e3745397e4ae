package ledger

import (
	"testing"

	"github.com/yabreu65/buildingOs-sub002/app/models"
)

func TestDeriveChargeStatus(t *testing.T) {
	tests := []struct {
		allocated int64
		amount    int64
		want      string
	}{
		{allocated: 0, amount: 50000, want: models.ChargeStatusPending},
		{allocated: 1, amount: 50000, want: models.ChargeStatusPartial},
		{allocated: 30000, amount: 50000, want: models.ChargeStatusPartial},
		{allocated: 49999, amount: 50000, want: models.ChargeStatusPartial},
		{allocated: 50000, amount: 50000, want: models.ChargeStatusPaid},
		{allocated: 60000, amount: 50000, want: models.ChargeStatusPaid},
	}

	for _, tt := range tests {
		if got := DeriveChargeStatus(tt.allocated, tt.amount); got != tt.want {
			t.Fatalf("DeriveChargeStatus(%d, %d) = %q, want %q", tt.allocated, tt.amount, got, tt.want)
		}
	}
}

func TestChargeTransitionTotality(t *testing.T) {
	statuses := []string{
		models.ChargeStatusPending,
		models.ChargeStatusPartial,
		models.ChargeStatusPaid,
		models.ChargeStatusCanceled,
	}

	allowed := map[[2]string]bool{
		{models.ChargeStatusPending, models.ChargeStatusCanceled}: true,
		{models.ChargeStatusPartial, models.ChargeStatusCanceled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransitionCharge(from, to)
			if got != allowed[[2]string{from, to}] {
				t.Fatalf("CanTransitionCharge(%q, %q) = %v, want %v", from, to, got, !got)
			}
		}
	}
}

func TestPaymentTransitionTotality(t *testing.T) {
	statuses := []string{
		models.PaymentStatusSubmitted,
		models.PaymentStatusApproved,
		models.PaymentStatusRejected,
	}

	allowed := map[[2]string]bool{
		{models.PaymentStatusSubmitted, models.PaymentStatusApproved}: true,
		{models.PaymentStatusSubmitted, models.PaymentStatusRejected}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := CanTransitionPayment(from, to)
			if got != allowed[[2]string{from, to}] {
				t.Fatalf("CanTransitionPayment(%q, %q) = %v, want %v", from, to, got, !got)
			}
		}
	}
}

func TestOutstanding(t *testing.T) {
	if got := Outstanding(50000, 30000); got != 20000 {
		t.Fatalf("Outstanding(50000, 30000) = %d, want 20000", got)
	}
	if got := Outstanding(50000, 50000); got != 0 {
		t.Fatalf("Outstanding at full allocation = %d, want 0", got)
	}
	if got := Outstanding(50000, 60000); got != 0 {
		t.Fatalf("Outstanding must never go negative, got %d", got)
	}
}
