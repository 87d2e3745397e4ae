package models

import "time"

// BillingPlan is an immutable catalog row seeded by migration. The in-code
// catalog (internal/pkg/plancatalog) is the source of truth for limits; the
// table exists so reporting queries and future admin tooling can join on it.
type BillingPlan struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PlanID            string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"plan_id"`
	Rank              int       `gorm:"not null" json:"rank"`
	MaxBuildings      int       `gorm:"not null" json:"max_buildings"`
	MaxUnits          int       `gorm:"not null" json:"max_units"`
	MaxUsers          int       `gorm:"not null" json:"max_users"`
	MaxOccupants      int       `gorm:"not null" json:"max_occupants"`
	CanExportReports  bool      `gorm:"default:false" json:"can_export_reports"`
	CanBulkOperations bool      `gorm:"default:false" json:"can_bulk_operations"`
	SupportLevel      string    `gorm:"type:varchar(50);not null;default:'community'" json:"support_level"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
