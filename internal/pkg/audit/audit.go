package audit

import (
	"encoding/json"
	"log"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"gorm.io/gorm"
)

// Audit actions emitted by the subscription/ledger core.
const (
	ActionPlanChangeRequested       = "PLAN_CHANGE_REQUESTED"
	ActionPlanChangeRequestCanceled = "PLAN_CHANGE_REQUEST_CANCELED"
	ActionPlanChangeApproved        = "PLAN_CHANGE_APPROVED"
	ActionPlanChangeRejected        = "PLAN_CHANGE_REJECTED"
	ActionPaymentAllocated          = "PAYMENT_ALLOCATED"
)

// Sink records audit events. Implementations must be fire-and-forget: a
// failing sink must never fail or roll back the primary mutation.
type Sink interface {
	Record(tenantID, actorUserID uint, action, entity, entityID string, metadata map[string]interface{})
}

type gormSink struct {
	db *gorm.DB
}

// NewSink creates the default database-backed audit sink.
func NewSink(db *gorm.DB) Sink {
	return &gormSink{db: db}
}

func (s *gormSink) Record(tenantID, actorUserID uint, action, entity, entityID string, metadata map[string]interface{}) {
	var meta *models.JSON
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("audit: failed to marshal metadata for %s: %v", action, err)
		} else {
			j := models.JSON(raw)
			meta = &j
		}
	}

	row := models.AuditLog{
		TenantID:    tenantID,
		ActorUserID: actorUserID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		Metadata:    meta,
	}
	if err := s.db.Create(&row).Error; err != nil {
		// Best-effort only. The record of what happened must not become a
		// single point of failure for the ledger.
		log.Printf("audit: failed to record %s on %s/%s: %v", action, entity, entityID, err)
	}
}

// Noop discards all events; used by tests.
type Noop struct{}

func (Noop) Record(tenantID, actorUserID uint, action, entity, entityID string, metadata map[string]interface{}) {
}
