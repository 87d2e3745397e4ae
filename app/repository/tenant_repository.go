package repository

import (
	"github.com/yabreu65/buildingOs-sub002/app/models"
	"gorm.io/gorm"
)

// tenantRepository implements the TenantRepository interface
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository instance
func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

// Create creates a new tenant with its default free subscription. The tenant
// row and the subscription row commit together.
func (r *tenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		sub := models.Subscription{
			TenantID: tenant.ID,
			PlanID:   "free",
			Status:   models.SubscriptionStatusActive,
		}
		return tx.Create(&sub).Error
	})
}

// GetByID retrieves a tenant by its ID
func (r *tenantRepository) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.First(&tenant, id).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetBySlug retrieves a tenant by its slug
func (r *tenantRepository) GetBySlug(slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.Where("slug = ?", slug).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// MembershipFor retrieves the membership of a user within a tenant
func (r *tenantRepository) MembershipFor(tenantID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// ListMemberships retrieves all memberships of a tenant
func (r *tenantRepository) ListMemberships(tenantID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("tenant_id = ?", tenantID).Find(&memberships).Error
	return memberships, err
}
