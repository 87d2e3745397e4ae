package models

import "time"

const (
	SubscriptionEventPlanChangedManual = "plan_changed_manual"
)

// SubscriptionEvent is an append-only audit row recording plan transitions on
// a tenant's subscription. Written in the same transaction as the change.
type SubscriptionEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`
	PrevPlanID string    `gorm:"type:varchar(50);not null" json:"prev_plan_id"`
	NewPlanID  string    `gorm:"type:varchar(50);not null" json:"new_plan_id"`
	ActorID    uint      `gorm:"index" json:"actor_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
