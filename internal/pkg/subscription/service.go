package subscription

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/audit"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/capability"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/plancatalog"
	"gorm.io/gorm"
)

// Service owns the Subscription record per tenant and the PlanChangeRequest
// workflow. Upgrades only: downgrade and lateral changes are rejected.
type Service struct {
	repo Repository
	sink audit.Sink
}

// NewService creates a lifecycle service from an injected repository.
func NewService(repo Repository, sink audit.Sink) *Service {
	return &Service{repo: repo, sink: sink}
}

// NewServiceFromDB creates a lifecycle service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, sink audit.Sink) *Service {
	return NewService(NewRepository(db), sink)
}

// CreateRequest files a plan upgrade request for a tenant.
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.PlanChangeRequest, error) {
	if !in.Actor.CanManageSubscription() {
		return nil, apperrors.Forbidden("managing the subscription requires tenant owner or admin role")
	}

	requestedPlan := strings.ToLower(strings.TrimSpace(in.RequestedPlanID))
	if !plancatalog.IsKnown(requestedPlan) {
		return nil, apperrors.Validation("unknown plan %q", in.RequestedPlanID)
	}

	sub, err := s.repo.SubscriptionByTenant(ctx, in.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no active subscription for tenant")
		}
		return nil, err
	}

	current := plancatalog.Normalize(sub.PlanID)
	if plancatalog.Rank(current) >= plancatalog.Rank(plancatalog.Plan(requestedPlan)) {
		return nil, apperrors.Validation("plan change from %s to %s is not an upgrade; downgrades are not supported", current, requestedPlan)
	}

	req := &models.PlanChangeRequest{
		TenantID:                in.TenantID,
		RequestedPlanID:         requestedPlan,
		Status:                  models.PlanChangeStatusPending,
		RequestedByMembershipID: in.Actor.MembershipID(),
		Note:                    strings.TrimSpace(in.Note),
	}
	if err := s.repo.CreatePendingRequest(ctx, req); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no active subscription for tenant")
		}
		return nil, err
	}

	s.sink.Record(in.TenantID, in.ActorUserID, audit.ActionPlanChangeRequested, "plan_change_request", req.UUID, map[string]interface{}{
		"requested_plan":                requestedPlan,
		"note":                          req.Note,
		"requires_payment_confirmation": sub.RequiresPaymentConfirmation(),
	})
	return req, nil
}

// CancelRequest cancels a tenant's own pending request.
func (s *Service) CancelRequest(ctx context.Context, tenantID uint, requestUUID string, actorUserID uint, actor capability.Set) (*models.PlanChangeRequest, error) {
	if !actor.CanManageSubscription() {
		return nil, apperrors.Forbidden("managing the subscription requires tenant owner or admin role")
	}

	req, err := s.tenantRequest(ctx, tenantID, requestUUID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.repo.CancelRequest(ctx, req.ID, actorUserID)
	if err != nil {
		return nil, err
	}

	s.sink.Record(tenantID, actorUserID, audit.ActionPlanChangeRequestCanceled, "plan_change_request", resolved.UUID, nil)
	return resolved, nil
}

// Approve applies a pending request: platform operators only. The subscription
// update, the subscription event and the request resolution commit atomically.
func (s *Service) Approve(ctx context.Context, in ReviewInput) (*models.PlanChangeRequest, error) {
	if !in.Actor.Has(capability.CapPlatformOperator) {
		return nil, apperrors.Forbidden("approving plan changes requires platform operator capability")
	}

	req, err := s.repo.RequestByUUID(ctx, in.RequestUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan change request not found")
		}
		return nil, err
	}

	approved, prevPlan, err := s.repo.ApproveRequest(ctx, req.ID, in.ActorUserID)
	if err != nil {
		return nil, err
	}

	s.sink.Record(approved.TenantID, in.ActorUserID, audit.ActionPlanChangeApproved, "plan_change_request", approved.UUID, map[string]interface{}{
		"prev_plan": prevPlan,
		"new_plan":  approved.RequestedPlanID,
	})
	return approved, nil
}

// Reject resolves a pending request as rejected with a reason.
func (s *Service) Reject(ctx context.Context, in ReviewInput) (*models.PlanChangeRequest, error) {
	if !in.Actor.Has(capability.CapPlatformOperator) {
		return nil, apperrors.Forbidden("rejecting plan changes requires platform operator capability")
	}

	req, err := s.repo.RequestByUUID(ctx, in.RequestUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan change request not found")
		}
		return nil, err
	}

	rejected, err := s.repo.RejectRequest(ctx, req.ID, in.ActorUserID, strings.TrimSpace(in.Reason))
	if err != nil {
		return nil, err
	}

	s.sink.Record(rejected.TenantID, in.ActorUserID, audit.ActionPlanChangeRejected, "plan_change_request", rejected.UUID, map[string]interface{}{
		"reason": rejected.ReviewReason,
	})
	return rejected, nil
}

// ListRequests returns a tenant's plan change requests, newest first.
func (s *Service) ListRequests(ctx context.Context, tenantID uint) ([]models.PlanChangeRequest, error) {
	return s.repo.ListRequestsByTenant(ctx, tenantID)
}

// ListPending returns the platform-wide operator review queue.
func (s *Service) ListPending(ctx context.Context, actor capability.Set) ([]models.PlanChangeRequest, error) {
	if !actor.Has(capability.CapPlatformOperator) {
		return nil, apperrors.Forbidden("the review queue requires platform operator capability")
	}
	return s.repo.ListPendingRequests(ctx)
}

// Subscription returns the tenant's subscription row.
func (s *Service) Subscription(ctx context.Context, tenantID uint) (*models.Subscription, error) {
	sub, err := s.repo.SubscriptionByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("no active subscription for tenant " + strconv.FormatUint(uint64(tenantID), 10))
		}
		return nil, err
	}
	return sub, nil
}

// tenantRequest loads a request and hides cross-tenant rows behind NotFound
// so tenants cannot discover other tenants' request ids.
func (s *Service) tenantRequest(ctx context.Context, tenantID uint, requestUUID string) (*models.PlanChangeRequest, error) {
	req, err := s.repo.RequestByUUID(ctx, requestUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan change request not found")
		}
		return nil, err
	}
	if req.TenantID != tenantID {
		return nil, apperrors.NotFound("plan change request not found")
	}
	return req, nil
}
