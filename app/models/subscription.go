package models

import "time"

const (
	SubscriptionStatusTrial    = "trial"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription holds the current plan per tenant (1:1). It is mutated only by
// the subscription lifecycle on plan-change approval; period rollover is an
// external scheduled job's responsibility.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	TenantID           uint       `gorm:"not null;uniqueIndex" json:"tenant_id"`
	PlanID             string     `gorm:"type:varchar(50);not null;default:'free';index" json:"plan_id"`
	Status             string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CurrentPeriodStart *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	TrialEndDate       *time.Time `gorm:"type:timestamp;default:null" json:"trial_end_date,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// RequiresPaymentConfirmation reports whether a plan change filed while the
// subscription is in this status needs a payment confirmation step.
func (s *Subscription) RequiresPaymentConfirmation() bool {
	return s.Status == SubscriptionStatusPastDue || s.Status == SubscriptionStatusCanceled
}
