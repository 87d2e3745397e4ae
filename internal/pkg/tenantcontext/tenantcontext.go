package tenantcontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yabreu65/buildingOs-sub002/internal/pkg/capability"
)

const contextKey = "TENANT_CONTEXT"

// TenantContext represents the complete actor context for a request: the
// authenticated user plus their standing on the tenant addressed by the URL.
type TenantContext struct {
	UserID       uint
	UserName     string
	TenantID     uint
	Capabilities capability.Set
	IsLoggedIn   bool
}

// Set stores the tenant context in the fiber request locals.
func Set(c *fiber.Ctx, ctx TenantContext) {
	c.Locals(contextKey, ctx)
}

// Get retrieves the tenant context from fiber context.
// Returns a default anonymous context if none is set.
func Get(c *fiber.Ctx) TenantContext {
	if ctx := c.Locals(contextKey); ctx != nil {
		return ctx.(TenantContext)
	}
	return TenantContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current request carries an authenticated user.
func IsLoggedIn(c *fiber.Ctx) bool {
	return Get(c).IsLoggedIn
}

// GetUserID returns the current user's ID, or 0 if not logged in.
func GetUserID(c *fiber.Ctx) uint {
	return Get(c).UserID
}

// GetTenantID returns the tenant addressed by the request, or 0.
func GetTenantID(c *fiber.Ctx) uint {
	return Get(c).TenantID
}

// GetCapabilities returns the actor's capability set for the tenant.
func GetCapabilities(c *fiber.Ctx) capability.Set {
	return Get(c).Capabilities
}

// IsOperator checks if the current user is a platform operator.
func IsOperator(c *fiber.Ctx) bool {
	return Get(c).Capabilities.Has(capability.CapPlatformOperator)
}
