package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yabreu65/buildingOs-sub002/internal/pkg/ledger"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/tenantcontext"
)

type chargeBody struct {
	Period   string `json:"period"` // YYYY-MM
	Type     string `json:"type"`
	Concept  string `json:"concept"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	DueDate  string `json:"due_date"` // YYYY-MM-DD
}

// HandleCreateCharge issues a new charge against a unit. Tenant admin or
// owner standing required.
func HandleCreateCharge(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body chargeBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	dueDate, err := time.Parse("2006-01-02", body.DueDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid due_date, expected YYYY-MM-DD"})
	}

	charge, err := ledgerService.CreateCharge(c.Context(), ledger.CreateChargeInput{
		TenantID:    ctx.TenantID,
		BuildingID:  paramUint(c, "buildingID"),
		UnitID:      paramUint(c, "unitID"),
		Period:      body.Period,
		Type:        body.Type,
		Concept:     body.Concept,
		Amount:      body.Amount,
		Currency:    body.Currency,
		DueDate:     dueDate,
		ActorUserID: ctx.UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(charge)
}

// HandleCancelCharge cancels a pending or partially paid charge.
func HandleCancelCharge(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	charge, err := ledgerService.CancelCharge(c.Context(), ctx.TenantID, c.Params("chargeID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(charge)
}

type paymentBody struct {
	Amount      int64  `json:"amount"` // minor currency units
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	PaidAt      string `json:"paid_at"` // RFC 3339, optional
	Reference   string `json:"reference"`
	ProofFileID string `json:"proof_file_id"`
}

// HandleSubmitPayment records a claimed payment against a unit. Any member
// of the tenant may submit one.
func HandleSubmitPayment(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	var body paymentBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	var paidAt *time.Time
	if body.PaidAt != "" {
		t, err := time.Parse(time.RFC3339, body.PaidAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid paid_at, expected RFC 3339"})
		}
		paidAt = &t
	}

	payment, err := ledgerService.SubmitPayment(c.Context(), ledger.SubmitPaymentInput{
		TenantID:        ctx.TenantID,
		BuildingID:      paramUint(c, "buildingID"),
		UnitID:          paramUint(c, "unitID"),
		Amount:          body.Amount,
		Currency:        body.Currency,
		Method:          body.Method,
		PaidAt:          paidAt,
		Reference:       body.Reference,
		ProofFileID:     body.ProofFileID,
		CreatedByUserID: ctx.UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// HandleApprovePayment resolves a submitted payment as approved.
func HandleApprovePayment(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	payment, err := ledgerService.ApprovePayment(c.Context(), ctx.TenantID, c.Params("paymentID"), ctx.Capabilities.MembershipID())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

// HandleRejectPayment resolves a submitted payment as rejected.
func HandleRejectPayment(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	payment, err := ledgerService.RejectPayment(c.Context(), ctx.TenantID, c.Params("paymentID"), ctx.Capabilities.MembershipID(), body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(payment)
}

type allocationBody struct {
	Entries []struct {
		ChargeID string `json:"charge_id"`
		Amount   int64  `json:"amount"`
	} `json:"entries"`
}

// HandleAllocatePayment applies an atomic batch of allocations from one
// payment to one or more charges.
func HandleAllocatePayment(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body allocationBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	entries := make([]ledger.AllocationEntry, 0, len(body.Entries))
	for _, e := range body.Entries {
		entries = append(entries, ledger.AllocationEntry{ChargeUUID: e.ChargeID, Amount: e.Amount})
	}

	allocations, err := ledgerService.Allocate(c.Context(), ledger.AllocateInput{
		TenantID:    ctx.TenantID,
		PaymentUUID: c.Params("paymentID"),
		Entries:     entries,
		ActorUserID: ctx.UserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"allocations": allocations})
}

// HandleGetUnitLedger returns the per-unit statement: charges with allocated
// and outstanding amounts plus the unit's payments. Optional from/to query
// parameters bound the period range (inclusive, YYYY-MM).
func HandleGetUnitLedger(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	statement, err := ledgerService.UnitLedger(c.Context(), ctx.TenantID, paramUint(c, "unitID"), c.Query("from"), c.Query("to"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(statement)
}

// HandleGetBuildingSummary returns the building's aggregate financial
// position.
func HandleGetBuildingSummary(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	summary, err := ledgerService.Summary(c.Context(), ctx.TenantID, paramUint(c, "buildingID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
