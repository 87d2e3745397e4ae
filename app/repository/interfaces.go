package repository

import (
	"github.com/yabreu65/buildingOs-sub002/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	TouchAPIKeyUsage(id uint) error
	Update(user *models.User) error
}

// TenantRepository defines the interface for tenant and membership operations
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetBySlug(slug string) (*models.Tenant, error)
	MembershipFor(tenantID, userID uint) (*models.Membership, error)
	ListMemberships(tenantID uint) ([]models.Membership, error)
}

// ResourceRepository defines the interface for the tenant-scoped inventory:
// buildings, units, occupants and memberships. Every Create is gated by the
// plan quota inside the insert transaction.
type ResourceRepository interface {
	CreateBuilding(building *models.Building) error
	GetBuilding(tenantID, id uint) (*models.Building, error)
	ListBuildings(tenantID uint) ([]models.Building, error)
	CreateUnit(unit *models.Unit) error
	GetUnit(tenantID, id uint) (*models.Unit, error)
	ListUnits(tenantID, buildingID uint) ([]models.Unit, error)
	CreateOccupant(occupant *models.Occupant) error
	ListOccupants(tenantID, unitID uint) ([]models.Occupant, error)
	AddMember(membership *models.Membership) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Tenant   TenantRepository
	Resource ResourceRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Tenant:   NewTenantRepository(db),
		Resource: NewResourceRepository(db),
	}
}
