package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/plancatalog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the subscription lifecycle.
type Repository interface {
	SubscriptionByTenant(ctx context.Context, tenantID uint) (*models.Subscription, error)
	RequestByUUID(ctx context.Context, uuid string) (*models.PlanChangeRequest, error)
	ListRequestsByTenant(ctx context.Context, tenantID uint) ([]models.PlanChangeRequest, error)
	ListPendingRequests(ctx context.Context) ([]models.PlanChangeRequest, error)
	CreatePendingRequest(ctx context.Context, req *models.PlanChangeRequest) error
	CancelRequest(ctx context.Context, requestID uint, reviewerUserID uint) (*models.PlanChangeRequest, error)
	RejectRequest(ctx context.Context, requestID uint, reviewerUserID uint, reason string) (*models.PlanChangeRequest, error)
	ApproveRequest(ctx context.Context, requestID uint, reviewerUserID uint) (*models.PlanChangeRequest, string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) SubscriptionByTenant(ctx context.Context, tenantID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) RequestByUUID(ctx context.Context, uuid string) (*models.PlanChangeRequest, error) {
	var req models.PlanChangeRequest
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) ListRequestsByTenant(ctx context.Context, tenantID uint) ([]models.PlanChangeRequest, error) {
	var reqs []models.PlanChangeRequest
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) ListPendingRequests(ctx context.Context) ([]models.PlanChangeRequest, error) {
	var reqs []models.PlanChangeRequest
	err := r.db.WithContext(ctx).Where("status = ?", models.PlanChangeStatusPending).Order("created_at ASC").Find(&reqs).Error
	return reqs, err
}

// CreatePendingRequest inserts a new PENDING request. The check-then-insert
// runs in one transaction with the tenant's subscription row locked, and the
// unique index on pending_tenant_id backs the single-pending rule even if a
// concurrent writer slips past the check.
func (r *gormRepository) CreatePendingRequest(ctx context.Context, req *models.PlanChangeRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ?", req.TenantID).First(&sub).Error; err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.PlanChangeRequest{}).
			Where("tenant_id = ? AND status = ?", req.TenantID, models.PlanChangeStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return apperrors.Conflict("a pending plan change request already exists for this tenant")
		}

		return tx.Create(req).Error
	})
}

// CancelRequest moves a PENDING request to CANCELED and clears the pending
// marker. The status check repeats inside the transaction under a row lock.
func (r *gormRepository) CancelRequest(ctx context.Context, requestID uint, reviewerUserID uint) (*models.PlanChangeRequest, error) {
	return r.resolveRequest(ctx, requestID, reviewerUserID, models.PlanChangeStatusCanceled, "")
}

// RejectRequest moves a PENDING request to REJECTED with a review reason.
func (r *gormRepository) RejectRequest(ctx context.Context, requestID uint, reviewerUserID uint, reason string) (*models.PlanChangeRequest, error) {
	return r.resolveRequest(ctx, requestID, reviewerUserID, models.PlanChangeStatusRejected, reason)
}

func (r *gormRepository) resolveRequest(ctx context.Context, requestID uint, reviewerUserID uint, status string, reason string) (*models.PlanChangeRequest, error) {
	var req models.PlanChangeRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			return err
		}
		if req.Status != models.PlanChangeStatusPending {
			return apperrors.Conflict("plan change request is %s, only pending requests can transition", req.Status)
		}

		now := time.Now()
		req.Status = status
		req.PendingTenantID = nil
		req.ReviewedAt = &now
		req.ReviewedByUserID = &reviewerUserID
		if reason != "" {
			req.ReviewReason = reason
		}
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ApproveRequest atomically applies an approved plan change: subscription
// plan update, subscription event, request resolution. The upgrade rule is
// re-validated against the current plan inside the transaction because it
// may have changed since the request was filed.
func (r *gormRepository) ApproveRequest(ctx context.Context, requestID uint, reviewerUserID uint) (*models.PlanChangeRequest, string, error) {
	var req models.PlanChangeRequest
	var prevPlan string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			return err
		}
		if req.Status != models.PlanChangeStatusPending {
			return apperrors.Conflict("plan change request is %s, only pending requests can transition", req.Status)
		}

		var sub models.Subscription
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ?", req.TenantID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("no active subscription for tenant")
			}
			return err
		}

		current := plancatalog.Normalize(sub.PlanID)
		requested := plancatalog.Normalize(req.RequestedPlanID)
		if plancatalog.Rank(current) >= plancatalog.Rank(requested) {
			return apperrors.Validation("requested plan %s is no longer an upgrade from %s", requested, current)
		}
		prevPlan = string(current)

		sub.PlanID = string(requested)
		if err := tx.Save(&sub).Error; err != nil {
			return err
		}

		event := models.SubscriptionEvent{
			TenantID:   req.TenantID,
			Type:       models.SubscriptionEventPlanChangedManual,
			PrevPlanID: prevPlan,
			NewPlanID:  string(requested),
			ActorID:    reviewerUserID,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		now := time.Now()
		req.Status = models.PlanChangeStatusApproved
		req.PendingTenantID = nil
		req.ReviewedAt = &now
		req.ReviewedByUserID = &reviewerUserID
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &req, prevPlan, nil
}
