package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the ledger service. Multi-row
// mutations (allocation batches) are transactional inside the implementation.
type Repository interface {
	CreateCharge(ctx context.Context, c *models.Charge) error
	ChargeByUUID(ctx context.Context, tenantID uint, uuid string) (*models.Charge, error)
	CancelCharge(ctx context.Context, chargeID uint) (*models.Charge, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	PaymentByUUID(ctx context.Context, tenantID uint, uuid string) (*models.Payment, error)
	ReviewPayment(ctx context.Context, paymentID uint, status string, reviewerMembershipID uint, reason string, paidAt *time.Time) (*models.Payment, error)
	Allocate(ctx context.Context, tenantID uint, paymentUUID string, entries []AllocationEntry, allowUnapproved bool) ([]models.PaymentAllocation, error)
	UnitInBuilding(ctx context.Context, tenantID, buildingID, unitID uint) (bool, error)
	ListChargesByUnit(ctx context.Context, tenantID, unitID uint, fromPeriod, toPeriod string) ([]models.Charge, error)
	ListPaymentsByUnit(ctx context.Context, tenantID, unitID uint) ([]models.Payment, error)
	AllocatedSums(ctx context.Context, chargeIDs []uint) (map[uint]int64, error)
	BuildingSummary(ctx context.Context, tenantID, buildingID uint) (*BuildingSummary, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateCharge(ctx context.Context, c *models.Charge) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormRepository) ChargeByUUID(ctx context.Context, tenantID uint, uuid string) (*models.Charge, error) {
	var c models.Charge
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CancelCharge applies the only explicit charge transition. The status check
// repeats under a row lock because a concurrent allocation may move the
// charge to paid.
func (r *gormRepository) CancelCharge(ctx context.Context, chargeID uint) (*models.Charge, error) {
	var c models.Charge
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, chargeID).Error; err != nil {
			return err
		}
		if !CanTransitionCharge(c.Status, models.ChargeStatusCanceled) {
			return apperrors.Conflict("charge is %s and cannot be canceled", c.Status)
		}
		c.Status = models.ChargeStatusCanceled
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormRepository) PaymentByUUID(ctx context.Context, tenantID uint, uuid string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) ReviewPayment(ctx context.Context, paymentID uint, status string, reviewerMembershipID uint, reason string, paidAt *time.Time) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, paymentID).Error; err != nil {
			return err
		}
		if !CanTransitionPayment(p.Status, status) {
			return apperrors.Conflict("payment is %s, only submitted payments can be reviewed", p.Status)
		}
		p.Status = status
		p.ReviewedByMembershipID = &reviewerMembershipID
		if reason != "" {
			p.ReviewReason = reason
		}
		if status == models.PaymentStatusApproved && p.PaidAt == nil {
			if paidAt != nil {
				p.PaidAt = paidAt
			} else {
				now := time.Now()
				p.PaidAt = &now
			}
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Allocate persists an allocation batch in one transaction. Payment and all
// named charges are locked FOR UPDATE; either every row is written and every
// touched charge's derived status recomputed, or nothing is.
func (r *gormRepository) Allocate(ctx context.Context, tenantID uint, paymentUUID string, entries []AllocationEntry, allowUnapproved bool) ([]models.PaymentAllocation, error) {
	var created []models.PaymentAllocation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND uuid = ?", tenantID, paymentUUID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("payment not found")
			}
			return err
		}

		if payment.Status == models.PaymentStatusRejected {
			return apperrors.Conflict("rejected payments cannot be allocated")
		}
		if !allowUnapproved && payment.Status != models.PaymentStatusApproved {
			return apperrors.Conflict("payment is %s, allocation requires an approved payment", payment.Status)
		}

		var paymentAllocated int64
		if err := tx.Model(&models.PaymentAllocation{}).
			Where("payment_id = ?", payment.ID).
			Select("COALESCE(SUM(amount), 0)").Scan(&paymentAllocated).Error; err != nil {
			return err
		}

		var batchTotal int64
		for _, entry := range entries {
			batchTotal += entry.Amount
		}
		if paymentAllocated+batchTotal > payment.Amount {
			return apperrors.Validation("over-allocation: payment has %d unallocated, batch needs %d",
				payment.Amount-paymentAllocated, batchTotal)
		}

		for _, entry := range entries {
			var charge models.Charge
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("tenant_id = ? AND uuid = ?", tenantID, entry.ChargeUUID).
				First(&charge).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound("charge %s not found", entry.ChargeUUID)
				}
				return err
			}
			if charge.Status == models.ChargeStatusCanceled {
				return apperrors.Conflict("charge %s is canceled and cannot receive allocations", entry.ChargeUUID)
			}

			var chargeAllocated int64
			if err := tx.Model(&models.PaymentAllocation{}).
				Where("charge_id = ?", charge.ID).
				Select("COALESCE(SUM(amount), 0)").Scan(&chargeAllocated).Error; err != nil {
				return err
			}
			if chargeAllocated+entry.Amount > charge.Amount {
				return apperrors.Validation("over-allocation: charge %s has %d outstanding, entry is %d",
					entry.ChargeUUID, charge.Amount-chargeAllocated, entry.Amount)
			}

			alloc := models.PaymentAllocation{
				TenantID:  tenantID,
				PaymentID: payment.ID,
				ChargeID:  charge.ID,
				Amount:    entry.Amount,
			}
			if err := tx.Create(&alloc).Error; err != nil {
				return err
			}
			created = append(created, alloc)

			charge.Status = DeriveChargeStatus(chargeAllocated+entry.Amount, charge.Amount)
			if err := tx.Save(&charge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *gormRepository) UnitInBuilding(ctx context.Context, tenantID, buildingID, unitID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Unit{}).
		Where("id = ? AND tenant_id = ? AND building_id = ?", unitID, tenantID, buildingID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) ListChargesByUnit(ctx context.Context, tenantID, unitID uint, fromPeriod, toPeriod string) ([]models.Charge, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ? AND unit_id = ?", tenantID, unitID)
	if fromPeriod != "" {
		q = q.Where("period >= ?", fromPeriod)
	}
	if toPeriod != "" {
		q = q.Where("period <= ?", toPeriod)
	}
	var charges []models.Charge
	err := q.Order("due_date ASC").Find(&charges).Error
	return charges, err
}

func (r *gormRepository) ListPaymentsByUnit(ctx context.Context, tenantID, unitID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Where("tenant_id = ? AND unit_id = ?", tenantID, unitID).
		Order("paid_at ASC, created_at ASC").Find(&payments).Error
	return payments, err
}

func (r *gormRepository) AllocatedSums(ctx context.Context, chargeIDs []uint) (map[uint]int64, error) {
	sums := make(map[uint]int64, len(chargeIDs))
	if len(chargeIDs) == 0 {
		return sums, nil
	}
	type row struct {
		ChargeID uint
		Total    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.PaymentAllocation{}).
		Select("charge_id, COALESCE(SUM(amount), 0) AS total").
		Where("charge_id IN ?", chargeIDs).
		Group("charge_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		sums[r.ChargeID] = r.Total
	}
	return sums, nil
}

func (r *gormRepository) BuildingSummary(ctx context.Context, tenantID, buildingID uint) (*BuildingSummary, error) {
	summary := &BuildingSummary{BuildingID: buildingID}

	db := r.db.WithContext(ctx)
	err := db.Model(&models.Charge{}).
		Where("tenant_id = ? AND building_id = ? AND status <> ?", tenantID, buildingID, models.ChargeStatusCanceled).
		Select("COALESCE(SUM(amount), 0)").Scan(&summary.TotalCharged).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.PaymentAllocation{}).
		Joins("JOIN charges ON charges.id = payment_allocations.charge_id").
		Where("charges.tenant_id = ? AND charges.building_id = ? AND charges.deleted_at IS NULL", tenantID, buildingID).
		Select("COALESCE(SUM(payment_allocations.amount), 0)").Scan(&summary.TotalPaid).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Charge{}).
		Where("tenant_id = ? AND building_id = ? AND status <> ?", tenantID, buildingID, models.ChargeStatusCanceled).
		Count(&summary.ChargeCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Payment{}).
		Where("tenant_id = ? AND building_id = ?", tenantID, buildingID).
		Count(&summary.PaymentCount).Error
	if err != nil {
		return nil, err
	}

	summary.TotalOutstanding = Outstanding(summary.TotalCharged, summary.TotalPaid)
	return summary, nil
}
