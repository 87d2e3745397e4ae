package subscription

import "github.com/yabreu65/buildingOs-sub002/internal/pkg/capability"

// CreateRequestInput is the normalized input for filing a plan change.
type CreateRequestInput struct {
	TenantID        uint
	RequestedPlanID string
	Note            string
	ActorUserID     uint
	Actor           capability.Set
}

// ReviewInput identifies a platform operator resolving a request.
type ReviewInput struct {
	RequestUUID string
	ActorUserID uint
	Actor       capability.Set
	Reason      string
}
