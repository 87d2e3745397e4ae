package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/app/repository"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/tenantcontext"
)

type buildingBody struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// HandleCreateBuilding creates a building for the tenant. Fails with
// PLAN_LIMIT_EXCEEDED once the plan's building quota is reached.
func HandleCreateBuilding(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body buildingBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	building := models.Building{
		TenantID: ctx.TenantID,
		Name:     body.Name,
		Address:  body.Address,
		City:     body.City,
	}
	if err := building.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	if err := repository.GetGlobalFactory().GetResourceRepository().CreateBuilding(&building); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(building)
}

// HandleListBuildings returns all buildings of the tenant.
func HandleListBuildings(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	buildings, err := repository.GetGlobalFactory().GetResourceRepository().ListBuildings(ctx.TenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"buildings": buildings})
}

type unitBody struct {
	Label string `json:"label"`
	Floor int    `json:"floor"`
}

// HandleCreateUnit creates a unit inside a building, quota permitting.
func HandleCreateUnit(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body unitBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	unit := models.Unit{
		TenantID:   ctx.TenantID,
		BuildingID: paramUint(c, "buildingID"),
		Label:      body.Label,
		Floor:      body.Floor,
	}
	if err := unit.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	if err := repository.GetGlobalFactory().GetResourceRepository().CreateUnit(&unit); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(unit)
}

// HandleListUnits returns the units of a building.
func HandleListUnits(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	units, err := repository.GetGlobalFactory().GetResourceRepository().ListUnits(ctx.TenantID, paramUint(c, "buildingID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"units": units})
}

type occupantBody struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// HandleCreateOccupant registers an occupant on a unit, quota permitting.
func HandleCreateOccupant(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body occupantBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	occupant := models.Occupant{
		TenantID: ctx.TenantID,
		UnitID:   paramUint(c, "unitID"),
		FullName: body.FullName,
		Email:    body.Email,
		Phone:    body.Phone,
	}
	if err := occupant.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
	}

	if err := repository.GetGlobalFactory().GetResourceRepository().CreateOccupant(&occupant); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(occupant)
}

// HandleListOccupants returns the occupants of a unit.
func HandleListOccupants(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)

	occupants, err := repository.GetGlobalFactory().GetResourceRepository().ListOccupants(ctx.TenantID, paramUint(c, "unitID"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"occupants": occupants})
}

type memberBody struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleAddMember adds an existing user to the tenant, seat quota permitting.
func HandleAddMember(c *fiber.Ctx) error {
	ctx := tenantcontext.Get(c)
	if !ctx.Capabilities.CanManageSubscription() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Tenant admin role required"})
	}

	var body memberBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Invalid request body"})
	}

	role := body.Role
	if role == "" {
		role = models.MEMBERSHIP_ROLE_MEMBER
	}
	if role != models.MEMBERSHIP_ROLE_OWNER && role != models.MEMBERSHIP_ROLE_ADMIN && role != models.MEMBERSHIP_ROLE_MEMBER {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": "Unknown membership role"})
	}

	repos := repository.GetGlobalFactory().GetRepositories()
	user, err := repos.User.GetByEmail(body.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return respondError(c, err)
	}

	membership := models.Membership{
		TenantID: ctx.TenantID,
		UserID:   user.ID,
		Role:     role,
	}
	if err := repos.Resource.AddMember(&membership); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(membership)
}
