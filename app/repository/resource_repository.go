package repository

import (
	"errors"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/plancatalog"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/quota"
	"gorm.io/gorm"
)

// resourceRepository implements the ResourceRepository interface. Creations
// run the quota check and the insert in one transaction so concurrent
// requests cannot slip past the plan limit.
type resourceRepository struct {
	db       *gorm.DB
	enforcer *quota.Enforcer
}

// NewResourceRepository creates a new resource repository instance
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db, enforcer: quota.NewEnforcerFromDB()}
}

// CreateBuilding creates a building if the plan quota allows another one.
func (r *resourceRepository) CreateBuilding(building *models.Building) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.enforcer.CheckAndReserve(tx, building.TenantID, plancatalog.ResourceBuildings); err != nil {
			return err
		}
		return tx.Create(building).Error
	})
}

// GetBuilding retrieves a building scoped to its tenant
func (r *resourceRepository) GetBuilding(tenantID, id uint) (*models.Building, error) {
	var building models.Building
	err := r.db.Where("tenant_id = ?", tenantID).First(&building, id).Error
	if err != nil {
		return nil, err
	}
	return &building, nil
}

// ListBuildings retrieves all buildings of a tenant
func (r *resourceRepository) ListBuildings(tenantID uint) ([]models.Building, error) {
	var buildings []models.Building
	err := r.db.Where("tenant_id = ?", tenantID).Order("id ASC").Find(&buildings).Error
	return buildings, err
}

// CreateUnit creates a unit if the plan quota allows another one. The parent
// building must exist and belong to the same tenant.
func (r *resourceRepository) CreateUnit(unit *models.Unit) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var building models.Building
		if err := tx.Where("tenant_id = ?", unit.TenantID).First(&building, unit.BuildingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("building not found")
			}
			return err
		}
		if err := r.enforcer.CheckAndReserve(tx, unit.TenantID, plancatalog.ResourceUnits); err != nil {
			return err
		}
		return tx.Create(unit).Error
	})
}

// GetUnit retrieves a unit scoped to its tenant
func (r *resourceRepository) GetUnit(tenantID, id uint) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.Where("tenant_id = ?", tenantID).First(&unit, id).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// ListUnits retrieves the units of a building
func (r *resourceRepository) ListUnits(tenantID, buildingID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.Where("tenant_id = ? AND building_id = ?", tenantID, buildingID).
		Order("id ASC").Find(&units).Error
	return units, err
}

// CreateOccupant creates an occupant if the plan quota allows another one.
// The unit must exist and belong to the same tenant.
func (r *resourceRepository) CreateOccupant(occupant *models.Occupant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.Where("tenant_id = ?", occupant.TenantID).First(&unit, occupant.UnitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("unit not found")
			}
			return err
		}
		occupant.BuildingID = unit.BuildingID
		if err := r.enforcer.CheckAndReserve(tx, occupant.TenantID, plancatalog.ResourceOccupants); err != nil {
			return err
		}
		return tx.Create(occupant).Error
	})
}

// ListOccupants retrieves the occupants of a unit
func (r *resourceRepository) ListOccupants(tenantID, unitID uint) ([]models.Occupant, error) {
	var occupants []models.Occupant
	err := r.db.Where("tenant_id = ? AND unit_id = ?", tenantID, unitID).
		Order("id ASC").Find(&occupants).Error
	return occupants, err
}

// AddMember adds a user to a tenant if the plan quota allows another seat.
func (r *resourceRepository) AddMember(membership *models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.enforcer.CheckAndReserve(tx, membership.TenantID, plancatalog.ResourceUsers); err != nil {
			return err
		}
		return tx.Create(membership).Error
	})
}
