package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yabreu65/buildingOs-sub002/internal/pkg/subscription"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/tenantcontext"
)

// HandleListPendingPlanChangeRequests returns the platform-wide review queue
// of pending plan change requests, oldest first.
func HandleListPendingPlanChangeRequests(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	requests, err := subscriptionService.ListPending(c.Context(), ctx.Capabilities)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// HandleApprovePlanChangeRequest applies a pending plan change request.
func HandleApprovePlanChangeRequest(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	req, err := subscriptionService.Approve(c.Context(), subscription.ReviewInput{
		RequestUUID: c.Params("requestID"),
		ActorUserID: ctx.UserID,
		Actor:       ctx.Capabilities,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}

type reviewBody struct {
	Reason string `json:"reason"`
}

// HandleRejectPlanChangeRequest resolves a pending request as rejected.
func HandleRejectPlanChangeRequest(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	var body reviewBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	req, err := subscriptionService.Reject(c.Context(), subscription.ReviewInput{
		RequestUUID: c.Params("requestID"),
		ActorUserID: ctx.UserID,
		Actor:       ctx.Capabilities,
		Reason:      body.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(req)
}
