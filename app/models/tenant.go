package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Tenant is a property-management customer organization and the top-level
// data-isolation boundary. Every billable entity scopes to exactly one tenant.
type Tenant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Slug      string         `gorm:"type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"slug" validate:"required,min=2,max=200"`
	Status    string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active suspended"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Tenant) Validate() error {
	v := validator.New()

	return v.Struct(t)
}
