package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/yabreu65/buildingOs-sub002/app/controllers"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())

	// Platform operator review queue
	platform := v1.Group("/platform", middleware.RequireOperator())
	platform.Get("/plan-change-requests", controllers.HandleListPendingPlanChangeRequests)
	platform.Post("/plan-change-requests/:requestID/approve", controllers.HandleApprovePlanChangeRequest)
	platform.Post("/plan-change-requests/:requestID/reject", controllers.HandleRejectPlanChangeRequest)

	// Tenant-scoped routes. TenantScope must sit on this group: its prefix
	// declares :tenantID, which middleware mounted on /v1 cannot see.
	tenant := v1.Group("/tenants/:tenantID", middleware.TenantScope(), middleware.RequireTenantMember())

	// Subscription and plan changes
	tenant.Get("/subscription", controllers.HandleGetSubscription)
	tenant.Get("/quota", controllers.HandleGetQuotaUsage)
	tenant.Post("/plan-change-requests", controllers.HandleCreatePlanChangeRequest)
	tenant.Get("/plan-change-requests", controllers.HandleListPlanChangeRequests)
	tenant.Post("/plan-change-requests/:requestID/cancel", controllers.HandleCancelPlanChangeRequest)

	// Inventory
	tenant.Post("/buildings", controllers.HandleCreateBuilding)
	tenant.Get("/buildings", controllers.HandleListBuildings)
	tenant.Post("/buildings/:buildingID/units", controllers.HandleCreateUnit)
	tenant.Get("/buildings/:buildingID/units", controllers.HandleListUnits)
	tenant.Post("/units/:unitID/occupants", controllers.HandleCreateOccupant)
	tenant.Get("/units/:unitID/occupants", controllers.HandleListOccupants)
	tenant.Post("/members", controllers.HandleAddMember)

	// Financial ledger
	tenant.Post("/buildings/:buildingID/units/:unitID/charges", controllers.HandleCreateCharge)
	tenant.Post("/charges/:chargeID/cancel", controllers.HandleCancelCharge)
	tenant.Post("/buildings/:buildingID/units/:unitID/payments", controllers.HandleSubmitPayment)
	tenant.Post("/payments/:paymentID/approve", controllers.HandleApprovePayment)
	tenant.Post("/payments/:paymentID/reject", controllers.HandleRejectPayment)
	tenant.Post("/payments/:paymentID/allocations", controllers.HandleAllocatePayment)
	tenant.Get("/units/:unitID/ledger", controllers.HandleGetUnitLedger)
	tenant.Get("/buildings/:buildingID/summary", controllers.HandleGetBuildingSummary)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
