package quota

import (
	"errors"
	"fmt"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/plancatalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the reads the enforcer needs. Both calls run on the
// caller's transaction handle so the check and the subsequent insert share
// one transaction.
type Repository interface {
	// PlanForTenant loads the tenant's plan with the subscription row locked
	// FOR UPDATE, serializing concurrent creations per tenant.
	PlanForTenant(tx *gorm.DB, tenantID uint) (plancatalog.Plan, error)
	CountLive(tx *gorm.DB, tenantID uint, kind plancatalog.ResourceKind) (int64, error)
}

// Enforcer denies resource creation once the tenant's live count reaches the
// plan limit. CheckAndReserve must run inside the same transaction as the
// insert it gates; the subscription row lock closes the count-then-insert
// race between concurrent requests.
type Enforcer struct {
	repo Repository
}

// NewEnforcer creates a quota enforcer from an injected repository.
func NewEnforcer(repo Repository) *Enforcer {
	return &Enforcer{repo: repo}
}

// NewEnforcerFromDB creates a quota enforcer with the default repository.
func NewEnforcerFromDB() *Enforcer {
	return NewEnforcer(gormRepository{})
}

// CheckAndReserve fails when the tenant is at or over the plan limit for the
// resource kind. On success the caller performs the insert on the same tx.
func (e *Enforcer) CheckAndReserve(tx *gorm.DB, tenantID uint, kind plancatalog.ResourceKind) error {
	if !plancatalog.ValidResourceKind(kind) {
		return apperrors.Validation("unknown resource kind %q", kind)
	}

	plan, err := e.repo.PlanForTenant(tx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("no active subscription for tenant")
		}
		return err
	}

	limit := plancatalog.LimitFor(plan, kind)
	current, err := e.repo.CountLive(tx, tenantID, kind)
	if err != nil {
		return err
	}

	if current >= int64(limit) {
		return ExceededError(kind, current, limit)
	}
	return nil
}

// Usage reports current count vs limit for every resource kind.
func (e *Enforcer) Usage(tx *gorm.DB, tenantID uint) (map[plancatalog.ResourceKind][2]int64, error) {
	plan, err := e.repo.PlanForTenant(tx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no active subscription for tenant")
		}
		return nil, err
	}

	out := make(map[plancatalog.ResourceKind][2]int64, 4)
	for _, kind := range []plancatalog.ResourceKind{
		plancatalog.ResourceBuildings,
		plancatalog.ResourceUnits,
		plancatalog.ResourceUsers,
		plancatalog.ResourceOccupants,
	} {
		current, err := e.repo.CountLive(tx, tenantID, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = [2]int64{current, int64(plancatalog.LimitFor(plan, kind))}
	}
	return out, nil
}

// ExceededError builds the quota-exceeded conflict. The front end pattern
// matches on the PLAN_LIMIT_EXCEEDED token and the (current/limit) suffix;
// the format must not change.
func ExceededError(kind plancatalog.ResourceKind, current int64, limit int) *apperrors.Error {
	return apperrors.Conflict("PLAN_LIMIT_EXCEEDED: %s (%d/%d)", kind, current, limit)
}

type gormRepository struct{}

func (gormRepository) PlanForTenant(tx *gorm.DB, tenantID uint) (plancatalog.Plan, error) {
	var sub models.Subscription
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).First(&sub).Error; err != nil {
		return plancatalog.PlanFree, err
	}
	return plancatalog.Normalize(sub.PlanID), nil
}

func (gormRepository) CountLive(tx *gorm.DB, tenantID uint, kind plancatalog.ResourceKind) (int64, error) {
	var count int64
	var err error
	switch kind {
	case plancatalog.ResourceBuildings:
		err = tx.Model(&models.Building{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	case plancatalog.ResourceUnits:
		err = tx.Model(&models.Unit{}).
			Joins("JOIN buildings ON buildings.id = units.building_id").
			Where("buildings.tenant_id = ? AND buildings.deleted_at IS NULL", tenantID).
			Count(&count).Error
	case plancatalog.ResourceUsers:
		err = tx.Model(&models.Membership{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	case plancatalog.ResourceOccupants:
		err = tx.Model(&models.Occupant{}).
			Joins("JOIN buildings ON buildings.id = occupants.building_id").
			Where("buildings.tenant_id = ? AND buildings.deleted_at IS NULL", tenantID).
			Count(&count).Error
	default:
		err = fmt.Errorf("unknown resource kind %q", kind)
	}
	return count, err
}
