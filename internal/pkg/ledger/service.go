package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/audit"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/cache"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/env"
	"gorm.io/gorm"
)

const summaryCacheTTL = 60 * time.Second

// SummaryCache caches building summaries. Nil disables caching.
type SummaryCache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
	Delete(key string)
}

type redisSummaryCache struct{}

func (redisSummaryCache) Get(key string) (string, bool) {
	val, err := cache.Get(key)
	if err != nil {
		return "", false
	}
	return val, true
}

func (redisSummaryCache) Set(key, value string, ttl time.Duration) {
	if err := cache.Set(key, value, ttl); err != nil {
		log.Printf("ledger: failed to cache %s: %v", key, err)
	}
}

func (redisSummaryCache) Delete(key string) {
	if err := cache.Delete(key); err != nil {
		log.Printf("ledger: failed to invalidate %s: %v", key, err)
	}
}

// Service owns charges, payments and allocations. All amounts are integer
// minor currency units; every mutating operation fully commits or fully
// fails.
type Service struct {
	repo            Repository
	sink            audit.Sink
	summaries       SummaryCache
	allowUnapproved bool
}

// NewService creates a ledger service from an injected repository.
func NewService(repo Repository, sink audit.Sink, summaries SummaryCache, allowUnapproved bool) *Service {
	return &Service{repo: repo, sink: sink, summaries: summaries, allowUnapproved: allowUnapproved}
}

// NewServiceFromDB creates a ledger service with the default repository,
// redis summary cache and the allocation policy read from the environment.
func NewServiceFromDB(db *gorm.DB, sink audit.Sink) *Service {
	return NewService(
		NewRepository(db),
		sink,
		redisSummaryCache{},
		env.GetBool("LEDGER_ALLOW_UNAPPROVED_ALLOCATION", true),
	)
}

// CreateCharge validates and persists a new charge in PENDING status.
func (s *Service) CreateCharge(ctx context.Context, in CreateChargeInput) (*models.Charge, error) {
	if err := validatePeriod(in.Period); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, apperrors.Validation("charge amount must be positive minor units")
	}

	ok, err := s.repo.UnitInBuilding(ctx, in.TenantID, in.BuildingID, in.UnitID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("unit not found in building")
	}

	charge := &models.Charge{
		TenantID:   in.TenantID,
		BuildingID: in.BuildingID,
		UnitID:     in.UnitID,
		Period:     in.Period,
		Type:       defaultString(in.Type, models.ChargeTypeMaintenance),
		Concept:    strings.TrimSpace(in.Concept),
		Amount:     in.Amount,
		Currency:   strings.ToUpper(defaultString(in.Currency, "USD")),
		DueDate:    in.DueDate,
		Status:     models.ChargeStatusPending,
	}
	if err := charge.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "invalid charge: "+err.Error())
	}
	if err := s.repo.CreateCharge(ctx, charge); err != nil {
		return nil, err
	}
	s.invalidateSummary(in.TenantID, in.BuildingID)
	return charge, nil
}

// CancelCharge moves a pending or partial charge to CANCELED. A fully paid
// charge cannot be canceled without a compensating reversal.
func (s *Service) CancelCharge(ctx context.Context, tenantID uint, chargeUUID string) (*models.Charge, error) {
	charge, err := s.repo.ChargeByUUID(ctx, tenantID, chargeUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("charge not found")
		}
		return nil, err
	}

	canceled, err := s.repo.CancelCharge(ctx, charge.ID)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(tenantID, canceled.BuildingID)
	return canceled, nil
}

// SubmitPayment records a claimed payment in SUBMITTED status.
func (s *Service) SubmitPayment(ctx context.Context, in SubmitPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, apperrors.Validation("payment amount must be positive minor units")
	}

	ok, err := s.repo.UnitInBuilding(ctx, in.TenantID, in.BuildingID, in.UnitID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("unit not found in building")
	}

	payment := &models.Payment{
		TenantID:        in.TenantID,
		BuildingID:      in.BuildingID,
		UnitID:          in.UnitID,
		Amount:          in.Amount,
		Currency:        strings.ToUpper(defaultString(in.Currency, "USD")),
		Method:          defaultString(in.Method, models.PaymentMethodTransfer),
		Status:          models.PaymentStatusSubmitted,
		PaidAt:          in.PaidAt,
		Reference:       strings.TrimSpace(in.Reference),
		ProofFileID:     in.ProofFileID,
		CreatedByUserID: in.CreatedByUserID,
	}
	if err := payment.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindValidation, "invalid payment: "+err.Error())
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.invalidateSummary(in.TenantID, in.BuildingID)
	return payment, nil
}

// ApprovePayment resolves a submitted payment as approved.
func (s *Service) ApprovePayment(ctx context.Context, tenantID uint, paymentUUID string, reviewerMembershipID uint) (*models.Payment, error) {
	return s.reviewPayment(ctx, tenantID, paymentUUID, models.PaymentStatusApproved, reviewerMembershipID, "")
}

// RejectPayment resolves a submitted payment as rejected with a reason.
func (s *Service) RejectPayment(ctx context.Context, tenantID uint, paymentUUID string, reviewerMembershipID uint, reason string) (*models.Payment, error) {
	return s.reviewPayment(ctx, tenantID, paymentUUID, models.PaymentStatusRejected, reviewerMembershipID, reason)
}

func (s *Service) reviewPayment(ctx context.Context, tenantID uint, paymentUUID, status string, reviewerMembershipID uint, reason string) (*models.Payment, error) {
	payment, err := s.repo.PaymentByUUID(ctx, tenantID, paymentUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("payment not found")
		}
		return nil, err
	}
	return s.repo.ReviewPayment(ctx, payment.ID, status, reviewerMembershipID, strings.TrimSpace(reason), nil)
}

// Allocate applies an atomic batch of allocations from one payment to one or
// more charges. Conservation: the payment's allocation sum never exceeds its
// amount, and no charge's allocation sum exceeds its amount.
func (s *Service) Allocate(ctx context.Context, in AllocateInput) ([]models.PaymentAllocation, error) {
	if len(in.Entries) == 0 {
		return nil, apperrors.Validation("allocation batch must name at least one charge")
	}
	seen := make(map[string]struct{}, len(in.Entries))
	for _, entry := range in.Entries {
		if entry.Amount <= 0 {
			return nil, apperrors.Validation("allocation amount must be positive minor units")
		}
		if entry.ChargeUUID == "" {
			return nil, apperrors.Validation("allocation entry is missing charge id")
		}
		if _, dup := seen[entry.ChargeUUID]; dup {
			return nil, apperrors.Validation("duplicate charge %s in allocation batch", entry.ChargeUUID)
		}
		seen[entry.ChargeUUID] = struct{}{}
	}

	// Lock charges in a stable order so concurrent batches naming the same
	// charges cannot deadlock each other.
	entries := make([]AllocationEntry, len(in.Entries))
	copy(entries, in.Entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ChargeUUID < entries[j].ChargeUUID })

	created, err := s.repo.Allocate(ctx, in.TenantID, in.PaymentUUID, entries, s.allowUnapproved)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.PaymentByUUID(ctx, in.TenantID, in.PaymentUUID)
	if err == nil {
		s.invalidateSummary(in.TenantID, payment.BuildingID)
		s.sink.Record(in.TenantID, in.ActorUserID, audit.ActionPaymentAllocated, "payment", payment.UUID, map[string]interface{}{
			"entries": len(created),
		})
	}
	return created, nil
}

// UnitLedger returns the read-only per-unit projection for an optional
// period range (inclusive YYYY-MM tokens).
func (s *Service) UnitLedger(ctx context.Context, tenantID, unitID uint, fromPeriod, toPeriod string) (*UnitLedger, error) {
	if fromPeriod != "" {
		if err := validatePeriod(fromPeriod); err != nil {
			return nil, err
		}
	}
	if toPeriod != "" {
		if err := validatePeriod(toPeriod); err != nil {
			return nil, err
		}
	}

	charges, err := s.repo.ListChargesByUnit(ctx, tenantID, unitID, fromPeriod, toPeriod)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(charges))
	for _, c := range charges {
		ids = append(ids, c.ID)
	}
	sums, err := s.repo.AllocatedSums(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]ChargeLine, 0, len(charges))
	for _, c := range charges {
		allocated := sums[c.ID]
		lines = append(lines, ChargeLine{
			Charge:      c,
			Allocated:   allocated,
			Outstanding: Outstanding(c.Amount, allocated),
		})
	}

	payments, err := s.repo.ListPaymentsByUnit(ctx, tenantID, unitID)
	if err != nil {
		return nil, err
	}

	return &UnitLedger{UnitID: unitID, Charges: lines, Payments: payments}, nil
}

// Summary returns the building-level financial summary, cached briefly.
func (s *Service) Summary(ctx context.Context, tenantID, buildingID uint) (*BuildingSummary, error) {
	key := summaryCacheKey(tenantID, buildingID)
	if s.summaries != nil {
		if raw, ok := s.summaries.Get(key); ok {
			var cached BuildingSummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	summary, err := s.repo.BuildingSummary(ctx, tenantID, buildingID)
	if err != nil {
		return nil, err
	}

	if s.summaries != nil {
		if raw, err := json.Marshal(summary); err == nil {
			s.summaries.Set(key, string(raw), summaryCacheTTL)
		}
	}
	return summary, nil
}

func (s *Service) invalidateSummary(tenantID, buildingID uint) {
	if s.summaries != nil {
		s.summaries.Delete(summaryCacheKey(tenantID, buildingID))
	}
}

func summaryCacheKey(tenantID, buildingID uint) string {
	return fmt.Sprintf("ledger:summary:%d:%d", tenantID, buildingID)
}

func validatePeriod(period string) error {
	if _, err := time.Parse("2006-01", period); err != nil {
		return apperrors.Validation("invalid period %q, expected YYYY-MM", period)
	}
	return nil
}

func defaultString(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return strings.TrimSpace(val)
}
