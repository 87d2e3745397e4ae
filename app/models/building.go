package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Building struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  uint           `gorm:"not null;index" json:"tenant_id"`
	Name      string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Address   string         `gorm:"type:varchar(255)" json:"address" validate:"max=255"`
	City      string         `gorm:"type:varchar(100)" json:"city" validate:"max=100"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Building) Validate() error {
	v := validator.New()

	return v.Struct(b)
}

type Unit struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TenantID   uint           `gorm:"not null;index" json:"tenant_id"`
	BuildingID uint           `gorm:"not null;index" json:"building_id"`
	Building   Building       `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Label      string         `gorm:"type:varchar(100);not null" json:"label" validate:"required,min=1,max=100"`
	Floor      int            `gorm:"type:int;default:0" json:"floor"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *Unit) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

type Occupant struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TenantID   uint           `gorm:"not null;index" json:"tenant_id"`
	BuildingID uint           `gorm:"not null;index" json:"building_id"`
	UnitID     uint           `gorm:"not null;index" json:"unit_id"`
	Unit       Unit           `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
	FullName   string         `gorm:"type:varchar(200);not null" json:"full_name" validate:"required,min=2,max=200"`
	Email      string         `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email,max=200"`
	Phone      string         `gorm:"type:varchar(50)" json:"phone" validate:"max=50"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Occupant) Validate() error {
	v := validator.New()

	return v.Struct(o)
}
