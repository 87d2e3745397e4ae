package capability

import (
	"errors"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"gorm.io/gorm"
)

// Capability is a typed grant resolved per (user, tenant) pair. The core
// consumes only Set.Has; it never inspects raw role strings.
type Capability string

const (
	CapTenantOwner      Capability = "tenant_owner"
	CapTenantAdmin      Capability = "tenant_admin"
	CapPlatformOperator Capability = "platform_operator"
)

// Set is the capabilities granted to one actor for one tenant.
type Set struct {
	caps         map[Capability]struct{}
	membershipID uint
}

// Has reports whether the set contains the capability.
func (s Set) Has(cap Capability) bool {
	_, ok := s.caps[cap]
	return ok
}

// CanManageSubscription reports owner-or-admin standing on the tenant.
func (s Set) CanManageSubscription() bool {
	return s.Has(CapTenantOwner) || s.Has(CapTenantAdmin)
}

// MembershipID returns the tenant membership backing the grants, 0 when the
// actor has no membership on the tenant.
func (s Set) MembershipID() uint {
	return s.membershipID
}

// NewSet builds a Set from explicit capabilities; used by tests.
func NewSet(membershipID uint, caps ...Capability) Set {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return Set{caps: m, membershipID: membershipID}
}

// Resolver resolves the capability set of a user on a tenant.
type Resolver interface {
	Capabilities(userID, tenantID uint) (Set, error)
}

type gormResolver struct {
	db *gorm.DB
}

// NewResolver creates the membership-table backed resolver.
func NewResolver(db *gorm.DB) Resolver {
	return &gormResolver{db: db}
}

func (r *gormResolver) Capabilities(userID, tenantID uint) (Set, error) {
	caps := make(map[Capability]struct{})
	var membershipID uint

	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Set{}, nil
		}
		return Set{}, err
	}
	if user.IsPlatformOperator() {
		caps[CapPlatformOperator] = struct{}{}
	}

	if tenantID != 0 {
		var membership models.Membership
		err := r.db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).First(&membership).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return Set{}, err
		}
		if err == nil {
			membershipID = membership.ID
			switch membership.Role {
			case models.MEMBERSHIP_ROLE_OWNER:
				caps[CapTenantOwner] = struct{}{}
			case models.MEMBERSHIP_ROLE_ADMIN:
				caps[CapTenantAdmin] = struct{}{}
			}
		}
	}

	return Set{caps: caps, membershipID: membershipID}, nil
}
