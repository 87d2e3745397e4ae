package models

import "time"

// AuditLog is the storage row behind the default audit sink. Writes are
// best-effort and never part of the primary transaction.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    uint      `gorm:"not null;index" json:"tenant_id"`
	ActorUserID uint      `gorm:"index" json:"actor_user_id"`
	Action      string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Entity      string    `gorm:"type:varchar(100);not null" json:"entity"`
	EntityID    string    `gorm:"type:varchar(100);not null" json:"entity_id"`
	Metadata    *JSON     `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
