package models

import (
	"time"

	"gorm.io/gorm"
)

// Tenant membership roles. TENANT_OWNER and TENANT_ADMIN may manage the
// subscription; TENANT_MEMBER is a regular staff account.
const (
	MEMBERSHIP_ROLE_OWNER  = "tenant_owner"
	MEMBERSHIP_ROLE_ADMIN  = "tenant_admin"
	MEMBERSHIP_ROLE_MEMBER = "tenant_member"
)

// Membership links a user to a tenant with a role. Memberships are what the
// per-plan user quota counts.
type Membership struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  uint           `gorm:"not null;index:ux_memberships_tenant_user,unique,priority:1" json:"tenant_id"`
	UserID    uint           `gorm:"not null;index:ux_memberships_tenant_user,unique,priority:2" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      string         `gorm:"type:varchar(50);not null;default:'tenant_member'" json:"role" validate:"oneof=tenant_owner tenant_admin tenant_member"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CanManageSubscription reports whether the membership role may file or
// cancel plan-change requests.
func (m *Membership) CanManageSubscription() bool {
	return m.Role == MEMBERSHIP_ROLE_OWNER || m.Role == MEMBERSHIP_ROLE_ADMIN
}
