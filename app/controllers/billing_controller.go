package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yabreu65/buildingOs-sub002/internal/pkg/audit"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/database"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/ledger"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/plancatalog"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/quota"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/subscription"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/tenantcontext"
)

// Service instances used by the handlers. InitServices wires them at
// startup; tests assign them directly.
var (
	subscriptionService *subscription.Service
	ledgerService       *ledger.Service
	quotaEnforcer       *quota.Enforcer
)

// InitServices wires the controller layer to its backing services.
func InitServices(db *gorm.DB) {
	sink := audit.NewSink(db)
	subscriptionService = subscription.NewServiceFromDB(db, sink)
	ledgerService = ledger.NewServiceFromDB(db, sink)
	quotaEnforcer = quota.NewEnforcerFromDB()
}

// HandleGetSubscription returns the tenant's subscription and current plan
// limits.
func HandleGetSubscription(c *fiber.Ctx) error {
	tenantID := paramUint(c, "tenantID")

	sub, err := subscriptionService.Subscription(c.Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}

	plan := plancatalog.Normalize(sub.PlanID)
	return c.JSON(fiber.Map{
		"subscription": sub,
		"limits":       plancatalog.LimitsFor(plan),
	})
}

// HandleGetQuotaUsage returns current resource counts against the plan
// limits for every resource kind.
func HandleGetQuotaUsage(c *fiber.Ctx) error {
	tenantID := paramUint(c, "tenantID")

	usage, err := quotaEnforcer.Usage(database.GetDB(), tenantID)
	if err != nil {
		return respondError(c, err)
	}

	out := fiber.Map{}
	for kind, pair := range usage {
		out[string(kind)] = fiber.Map{"current": pair[0], "limit": pair[1]}
	}
	return c.JSON(fiber.Map{"usage": out})
}

type planChangeRequestBody struct {
	RequestedPlanID string `json:"requested_plan_id"`
	Note            string `json:"note"`
}

// HandleCreatePlanChangeRequest files a plan upgrade request for the tenant.
func HandleCreatePlanChangeRequest(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	var body planChangeRequestBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	req, err := subscriptionService.CreateRequest(c.Context(), subscription.CreateRequestInput{
		TenantID:        ctx.TenantID,
		RequestedPlanID: body.RequestedPlanID,
		Note:            body.Note,
		ActorUserID:     ctx.UserID,
		Actor:           ctx.Capabilities,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

// HandleListPlanChangeRequests returns the tenant's plan change requests,
// newest first.
func HandleListPlanChangeRequests(c *fiber.Ctx) error {
	tenantID := paramUint(c, "tenantID")

	requests, err := subscriptionService.ListRequests(c.Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// HandleCancelPlanChangeRequest cancels the tenant's own pending request.
func HandleCancelPlanChangeRequest(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	requestUUID := c.Params("requestID")

	req, err := subscriptionService.CancelRequest(c.Context(), ctx.TenantID, requestUUID, ctx.UserID, ctx.Capabilities)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}
