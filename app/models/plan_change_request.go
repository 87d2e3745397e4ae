package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanChangeStatusPending  = "pending"
	PlanChangeStatusApproved = "approved"
	PlanChangeStatusRejected = "rejected"
	PlanChangeStatusCanceled = "canceled"
)

// PlanChangeRequest is a tenant admin's request to upgrade the subscription
// plan, resolved only by a platform operator. At most one PENDING request may
// exist per tenant: PendingTenantID mirrors TenantID while the request is
// pending and is cleared on resolution, so the unique index on it enforces
// the rule at the database level (MySQL has no partial unique indexes).
type PlanChangeRequest struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	UUID                    string     `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	TenantID                uint       `gorm:"not null;index" json:"tenant_id"`
	PendingTenantID         *uint      `gorm:"uniqueIndex:ux_plan_change_requests_pending" json:"-"`
	RequestedPlanID         string     `gorm:"type:varchar(50);not null" json:"requested_plan_id"`
	Status                  string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	RequestedByMembershipID uint       `gorm:"not null" json:"requested_by_membership_id"`
	Note                    string     `gorm:"type:text" json:"note,omitempty"`
	ReviewedAt              *time.Time `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	ReviewedByUserID        *uint      `json:"reviewed_by_user_id,omitempty"`
	ReviewReason            string     `gorm:"type:text" json:"review_reason,omitempty"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *PlanChangeRequest) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = PlanChangeStatusPending
	}
	if r.Status == PlanChangeStatusPending && r.PendingTenantID == nil {
		tid := r.TenantID
		r.PendingTenantID = &tid
	}
	return nil
}

// IsTerminal reports whether the request status admits no further transition.
func (r *PlanChangeRequest) IsTerminal() bool {
	switch r.Status {
	case PlanChangeStatusApproved, PlanChangeStatusRejected, PlanChangeStatusCanceled:
		return true
	default:
		return false
	}
}
