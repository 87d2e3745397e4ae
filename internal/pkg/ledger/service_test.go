package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/audit"
)

// fakeLedgerRepo mirrors the transactional repository semantics in memory,
// enforcing the same conservation checks as the GORM implementation.
type fakeLedgerRepo struct {
	charges     map[string]*models.Charge
	payments    map[string]*models.Payment
	allocations []models.PaymentAllocation
	units       map[[3]uint]bool // {tenant, building, unit}
	nextID      uint
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		charges:  make(map[string]*models.Charge),
		payments: make(map[string]*models.Payment),
		units:    make(map[[3]uint]bool),
	}
}

func (f *fakeLedgerRepo) addUnit(tenantID, buildingID, unitID uint) {
	f.units[[3]uint{tenantID, buildingID, unitID}] = true
}

func (f *fakeLedgerRepo) CreateCharge(_ context.Context, c *models.Charge) error {
	f.nextID++
	c.ID = f.nextID
	if c.UUID == "" {
		c.UUID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = models.ChargeStatusPending
	}
	cp := *c
	f.charges[c.UUID] = &cp
	return nil
}

func (f *fakeLedgerRepo) ChargeByUUID(_ context.Context, tenantID uint, id string) (*models.Charge, error) {
	c, ok := f.charges[id]
	if !ok || c.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeLedgerRepo) CancelCharge(_ context.Context, chargeID uint) (*models.Charge, error) {
	for _, c := range f.charges {
		if c.ID == chargeID {
			if !CanTransitionCharge(c.Status, models.ChargeStatusCanceled) {
				return nil, apperrors.Conflict("charge is %s and cannot be canceled", c.Status)
			}
			c.Status = models.ChargeStatusCanceled
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	f.nextID++
	p.ID = f.nextID
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.PaymentStatusSubmitted
	}
	cp := *p
	f.payments[p.UUID] = &cp
	return nil
}

func (f *fakeLedgerRepo) PaymentByUUID(_ context.Context, tenantID uint, id string) (*models.Payment, error) {
	p, ok := f.payments[id]
	if !ok || p.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeLedgerRepo) ReviewPayment(_ context.Context, paymentID uint, status string, reviewerMembershipID uint, reason string, paidAt *time.Time) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.ID == paymentID {
			if !CanTransitionPayment(p.Status, status) {
				return nil, apperrors.Conflict("payment is %s, only submitted payments can be reviewed", p.Status)
			}
			p.Status = status
			p.ReviewedByMembershipID = &reviewerMembershipID
			p.ReviewReason = reason
			if status == models.PaymentStatusApproved && p.PaidAt == nil {
				now := time.Now()
				p.PaidAt = &now
			}
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLedgerRepo) paymentAllocated(paymentID uint) int64 {
	var sum int64
	for _, a := range f.allocations {
		if a.PaymentID == paymentID {
			sum += a.Amount
		}
	}
	return sum
}

func (f *fakeLedgerRepo) chargeAllocated(chargeID uint) int64 {
	var sum int64
	for _, a := range f.allocations {
		if a.ChargeID == chargeID {
			sum += a.Amount
		}
	}
	return sum
}

func (f *fakeLedgerRepo) Allocate(_ context.Context, tenantID uint, paymentUUID string, entries []AllocationEntry, allowUnapproved bool) ([]models.PaymentAllocation, error) {
	payment, ok := f.payments[paymentUUID]
	if !ok || payment.TenantID != tenantID {
		return nil, apperrors.NotFound("payment not found")
	}
	if payment.Status == models.PaymentStatusRejected {
		return nil, apperrors.Conflict("rejected payments cannot be allocated")
	}
	if !allowUnapproved && payment.Status != models.PaymentStatusApproved {
		return nil, apperrors.Conflict("payment is %s, allocation requires an approved payment", payment.Status)
	}

	var batchTotal int64
	for _, e := range entries {
		batchTotal += e.Amount
	}
	if f.paymentAllocated(payment.ID)+batchTotal > payment.Amount {
		return nil, apperrors.Validation("over-allocation: payment exceeded")
	}

	// Validate everything before writing anything: all-or-nothing.
	for _, e := range entries {
		charge, ok := f.charges[e.ChargeUUID]
		if !ok || charge.TenantID != tenantID {
			return nil, apperrors.NotFound("charge %s not found", e.ChargeUUID)
		}
		if charge.Status == models.ChargeStatusCanceled {
			return nil, apperrors.Conflict("charge %s is canceled and cannot receive allocations", e.ChargeUUID)
		}
		if f.chargeAllocated(charge.ID)+e.Amount > charge.Amount {
			return nil, apperrors.Validation("over-allocation: charge exceeded")
		}
	}

	var created []models.PaymentAllocation
	for _, e := range entries {
		charge := f.charges[e.ChargeUUID]
		f.nextID++
		alloc := models.PaymentAllocation{
			ID:        f.nextID,
			TenantID:  tenantID,
			PaymentID: payment.ID,
			ChargeID:  charge.ID,
			Amount:    e.Amount,
		}
		f.allocations = append(f.allocations, alloc)
		created = append(created, alloc)
		charge.Status = DeriveChargeStatus(f.chargeAllocated(charge.ID), charge.Amount)
	}
	return created, nil
}

func (f *fakeLedgerRepo) UnitInBuilding(_ context.Context, tenantID, buildingID, unitID uint) (bool, error) {
	return f.units[[3]uint{tenantID, buildingID, unitID}], nil
}

func (f *fakeLedgerRepo) ListChargesByUnit(_ context.Context, tenantID, unitID uint, fromPeriod, toPeriod string) ([]models.Charge, error) {
	var out []models.Charge
	for _, c := range f.charges {
		if c.TenantID != tenantID || c.UnitID != unitID {
			continue
		}
		if fromPeriod != "" && c.Period < fromPeriod {
			continue
		}
		if toPeriod != "" && c.Period > toPeriod {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListPaymentsByUnit(_ context.Context, tenantID, unitID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.TenantID == tenantID && p.UnitID == unitID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) AllocatedSums(_ context.Context, chargeIDs []uint) (map[uint]int64, error) {
	sums := make(map[uint]int64, len(chargeIDs))
	for _, id := range chargeIDs {
		sums[id] = f.chargeAllocated(id)
	}
	return sums, nil
}

func (f *fakeLedgerRepo) BuildingSummary(_ context.Context, tenantID, buildingID uint) (*BuildingSummary, error) {
	summary := &BuildingSummary{BuildingID: buildingID}
	chargeBuildings := make(map[uint]uint)
	for _, c := range f.charges {
		if c.TenantID == tenantID && c.BuildingID == buildingID {
			chargeBuildings[c.ID] = buildingID
			if c.Status != models.ChargeStatusCanceled {
				summary.TotalCharged += c.Amount
				summary.ChargeCount++
			}
		}
	}
	for _, a := range f.allocations {
		if _, ok := chargeBuildings[a.ChargeID]; ok {
			summary.TotalPaid += a.Amount
		}
	}
	for _, p := range f.payments {
		if p.TenantID == tenantID && p.BuildingID == buildingID {
			summary.PaymentCount++
		}
	}
	summary.TotalOutstanding = Outstanding(summary.TotalCharged, summary.TotalPaid)
	return summary, nil
}

func newLedgerService(repo Repository, allowUnapproved bool) *Service {
	return NewService(repo, audit.Noop{}, nil, allowUnapproved)
}

func seedChargeAndPayment(t *testing.T, repo *fakeLedgerRepo, svc *Service, chargeAmount, paymentAmount int64) (*models.Charge, *models.Payment) {
	t.Helper()
	repo.addUnit(1, 10, 100)

	charge, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "2026-08", Concept: "monthly maintenance",
		Amount: chargeAmount, DueDate: time.Now(),
	})
	require.NoError(t, err)

	payment, err := svc.SubmitPayment(context.Background(), SubmitPaymentInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Amount: paymentAmount, CreatedByUserID: 7,
	})
	require.NoError(t, err)
	return charge, payment
}

func TestCreateCharge_Validation(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.addUnit(1, 10, 100)
	svc := newLedgerService(repo, true)

	_, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "08-2026", Concept: "maintenance", Amount: 1000, DueDate: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "2026-08", Concept: "maintenance", Amount: 0, DueDate: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 999,
		Period: "2026-08", Concept: "maintenance", Amount: 1000, DueDate: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAllocate_PartialThenPaidThenOverAllocation(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	charge, payment := seedChargeAndPayment(t, repo, svc, 50000, 60000)

	// First allocation: 30000 of 50000 leaves the charge partial.
	_, err := svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 30000}},
	})
	require.NoError(t, err)

	ledger, err := svc.UnitLedger(context.Background(), 1, 100, "", "")
	require.NoError(t, err)
	require.Len(t, ledger.Charges, 1)
	assert.Equal(t, models.ChargeStatusPartial, ledger.Charges[0].Charge.Status)
	assert.Equal(t, int64(30000), ledger.Charges[0].Allocated)
	assert.Equal(t, int64(20000), ledger.Charges[0].Outstanding)

	// Remaining 20000 completes the charge.
	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 20000}},
	})
	require.NoError(t, err)

	ledger, err = svc.UnitLedger(context.Background(), 1, 100, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ChargeStatusPaid, ledger.Charges[0].Charge.Status)
	assert.Equal(t, int64(0), ledger.Charges[0].Outstanding)

	// Any further allocation to the charge over-allocates.
	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAllocate_PaymentSideConservation(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	charge, payment := seedChargeAndPayment(t, repo, svc, 100000, 30000)

	_, err := svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 30001}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Nothing was written: the charge is still untouched.
	ledger, err := svc.UnitLedger(context.Background(), 1, 100, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ledger.Charges[0].Allocated)
	assert.Equal(t, models.ChargeStatusPending, ledger.Charges[0].Charge.Status)
}

func TestAllocate_BatchIsAtomic(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	repo.addUnit(1, 10, 100)

	good, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "2026-08", Concept: "maintenance", Amount: 10000, DueDate: time.Now(),
	})
	require.NoError(t, err)
	small, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "2026-08", Concept: "penalty", Amount: 500, DueDate: time.Now(),
	})
	require.NoError(t, err)

	payment, err := svc.SubmitPayment(context.Background(), SubmitPaymentInput{
		TenantID: 1, BuildingID: 10, UnitID: 100, Amount: 50000, CreatedByUserID: 7,
	})
	require.NoError(t, err)

	// Second entry over-allocates its charge; the whole batch must fail.
	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{
			{ChargeUUID: good.UUID, Amount: 10000},
			{ChargeUUID: small.UUID, Amount: 600},
		},
	})
	require.Error(t, err)

	ledger, err := svc.UnitLedger(context.Background(), 1, 100, "", "")
	require.NoError(t, err)
	for _, line := range ledger.Charges {
		assert.Equal(t, int64(0), line.Allocated, "no partial application on batch failure")
	}
	assert.Empty(t, repo.allocations)
}

func TestAllocate_InputValidation(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	charge, payment := seedChargeAndPayment(t, repo, svc, 10000, 10000)

	_, err := svc.Allocate(context.Background(), AllocateInput{TenantID: 1, PaymentUUID: payment.UUID})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: -5}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{
			{ChargeUUID: charge.UUID, Amount: 100},
			{ChargeUUID: charge.UUID, Amount: 100},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAllocate_PolicyRequiresApprovedPayment(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, false)
	charge, payment := seedChargeAndPayment(t, repo, svc, 10000, 10000)

	_, err := svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 1000}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = svc.ApprovePayment(context.Background(), 1, payment.UUID, 5)
	require.NoError(t, err)

	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 1000}},
	})
	require.NoError(t, err)
}

func TestAllocate_RejectedPaymentNeverAllocatable(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	charge, payment := seedChargeAndPayment(t, repo, svc, 10000, 10000)

	_, err := svc.RejectPayment(context.Background(), 1, payment.UUID, 5, "no proof")
	require.NoError(t, err)

	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 1000}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestPaymentReview_Transitions(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	_, payment := seedChargeAndPayment(t, repo, svc, 10000, 10000)

	approved, err := svc.ApprovePayment(context.Background(), 1, payment.UUID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, approved.Status)
	assert.NotNil(t, approved.PaidAt)
	require.NotNil(t, approved.ReviewedByMembershipID)
	assert.Equal(t, uint(5), *approved.ReviewedByMembershipID)

	// Reviewing a resolved payment is an invalid transition.
	_, err = svc.RejectPayment(context.Background(), 1, payment.UUID, 5, "late")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCancelCharge_Transitions(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	charge, payment := seedChargeAndPayment(t, repo, svc, 10000, 10000)

	// Pending charge cancels fine.
	canceled, err := svc.CancelCharge(context.Background(), 1, charge.UUID)
	require.NoError(t, err)
	assert.Equal(t, models.ChargeStatusCanceled, canceled.Status)

	// A paid charge cannot be canceled.
	paid, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "2026-09", Concept: "maintenance", Amount: 1000, DueDate: time.Now(),
	})
	require.NoError(t, err)
	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: paid.UUID, Amount: 1000}},
	})
	require.NoError(t, err)

	_, err = svc.CancelCharge(context.Background(), 1, paid.UUID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	// A canceled charge cannot receive allocations.
	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID,
		Entries: []AllocationEntry{{ChargeUUID: charge.UUID, Amount: 100}},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestCrossTenantLookupsAreNotFound(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	charge, payment := seedChargeAndPayment(t, repo, svc, 10000, 10000)

	_, err := svc.CancelCharge(context.Background(), 2, charge.UUID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, err = svc.ApprovePayment(context.Background(), 2, payment.UUID, 5)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSummaryRoundTrip(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	repo.addUnit(1, 10, 100)
	repo.addUnit(1, 10, 101)

	c1, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 100,
		Period: "2026-08", Concept: "maintenance", Amount: 50000, DueDate: time.Now(),
	})
	require.NoError(t, err)
	c2, err := svc.CreateCharge(context.Background(), CreateChargeInput{
		TenantID: 1, BuildingID: 10, UnitID: 101,
		Period: "2026-08", Concept: "maintenance", Amount: 30000, DueDate: time.Now(),
	})
	require.NoError(t, err)

	p1, err := svc.SubmitPayment(context.Background(), SubmitPaymentInput{
		TenantID: 1, BuildingID: 10, UnitID: 100, Amount: 45000, CreatedByUserID: 7,
	})
	require.NoError(t, err)
	p2, err := svc.SubmitPayment(context.Background(), SubmitPaymentInput{
		TenantID: 1, BuildingID: 10, UnitID: 101, Amount: 20000, CreatedByUserID: 7,
	})
	require.NoError(t, err)

	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: p1.UUID,
		Entries: []AllocationEntry{{ChargeUUID: c1.UUID, Amount: 45000}},
	})
	require.NoError(t, err)
	_, err = svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: p2.UUID,
		Entries: []AllocationEntry{{ChargeUUID: c2.UUID, Amount: 20000}},
	})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), summary.TotalCharged)

	// totalPaid must equal the sum of all allocations for the building.
	var allocSum int64
	for _, a := range repo.allocations {
		allocSum += a.Amount
	}
	assert.Equal(t, allocSum, summary.TotalPaid)
	assert.Equal(t, int64(80000-65000), summary.TotalOutstanding)
	assert.Equal(t, int64(2), summary.ChargeCount)
	assert.Equal(t, int64(2), summary.PaymentCount)
}

func TestUnitLedger_PeriodFilter(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	repo.addUnit(1, 10, 100)

	for _, period := range []string{"2026-06", "2026-07", "2026-08"} {
		_, err := svc.CreateCharge(context.Background(), CreateChargeInput{
			TenantID: 1, BuildingID: 10, UnitID: 100,
			Period: period, Concept: "maintenance", Amount: 1000, DueDate: time.Now(),
		})
		require.NoError(t, err)
	}

	ledger, err := svc.UnitLedger(context.Background(), 1, 100, "2026-07", "2026-08")
	require.NoError(t, err)
	assert.Len(t, ledger.Charges, 2)

	_, err = svc.UnitLedger(context.Background(), 1, 100, "july", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestAllocate_ProcessesChargesInStableOrder(t *testing.T) {
	repo := newFakeLedgerRepo()
	svc := newLedgerService(repo, true)
	repo.addUnit(1, 10, 100)

	payment, err := svc.SubmitPayment(context.Background(), SubmitPaymentInput{
		TenantID: 1, BuildingID: 10, UnitID: 100, Amount: 90000, CreatedByUserID: 7,
	})
	require.NoError(t, err)

	uuids := make([]string, 3)
	for i := range uuids {
		charge, err := svc.CreateCharge(context.Background(), CreateChargeInput{
			TenantID: 1, BuildingID: 10, UnitID: 100,
			Period: "2026-08", Concept: "monthly maintenance",
			Amount: 10000, DueDate: time.Now(),
		})
		require.NoError(t, err)
		uuids[i] = charge.UUID
	}

	want := append([]string(nil), uuids...)
	sort.Strings(want)

	// Hand the batch over in the reverse of the lock order.
	entries := make([]AllocationEntry, 0, len(want))
	for i := len(want) - 1; i >= 0; i-- {
		entries = append(entries, AllocationEntry{ChargeUUID: want[i], Amount: 10000})
	}

	created, err := svc.Allocate(context.Background(), AllocateInput{
		TenantID: 1, PaymentUUID: payment.UUID, Entries: entries,
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	got := make([]string, 0, len(created))
	for _, a := range created {
		got = append(got, chargeUUIDByID(repo, a.ChargeID))
	}
	assert.Equal(t, want, got, "concurrent batches must lock charges in one stable order")

	// The caller's slice is not reordered.
	assert.Equal(t, want[2], entries[0].ChargeUUID)
}

func chargeUUIDByID(repo *fakeLedgerRepo, id uint) string {
	for u, c := range repo.charges {
		if c.ID == id {
			return u
		}
	}
	return ""
}
