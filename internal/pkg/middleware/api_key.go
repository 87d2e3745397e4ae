package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/app/repository"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/capability"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/database"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/tenantcontext"
)

// Auth is the credential backend behind the API key middleware.
type Auth interface {
	UserByAPIKeyHash(hash string) (*models.User, error)
	TouchAPIKeyUsage(userID uint) error
}

type repositoryAuth struct{}

func (repositoryAuth) UserByAPIKeyHash(hash string) (*models.User, error) {
	return repository.GetGlobalFactory().GetUserRepository().GetByAPIKeyHash(hash)
}

func (repositoryAuth) TouchAPIKeyUsage(userID uint) error {
	return repository.GetGlobalFactory().GetUserRepository().TouchAPIKeyUsage(userID)
}

var (
	authBackend Auth = repositoryAuth{}
	resolver    capability.Resolver
)

// SetAuth overrides the credential backend; nil restores the repository-backed
// default. Used by tests.
func SetAuth(a Auth) {
	if a == nil {
		a = repositoryAuth{}
	}
	authBackend = a
}

// SetResolver overrides the capability resolver; nil restores the
// database-backed default. Used by tests.
func SetResolver(r capability.Resolver) {
	resolver = r
}

func capabilities(userID, tenantID uint) (capability.Set, error) {
	r := resolver
	if r == nil {
		db := database.GetDB()
		if db == nil {
			return capability.Set{}, errors.New("database unavailable")
		}
		r = capability.NewResolver(db)
	}
	return r.Capabilities(userID, tenantID)
}

// APIKeyAuthMiddleware authenticates requests carrying a user API key header.
// It resolves platform-level grants only; tenant standing comes from
// TenantScope on the tenant route group.
func APIKeyAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		user, err := authBackend.UserByAPIKeyHash(models.HashAPIKey(apiKey))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
			log.Printf("api key lookup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "API key verification failed"})
		}

		if user.Status != models.STATUS_ACTIVE {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "User inactive"})
		}

		// Refresh last-used timestamp best-effort.
		if err := authBackend.TouchAPIKeyUsage(user.ID); err != nil {
			log.Printf("failed to update api key usage timestamp for user %d: %v", user.ID, err)
		}

		caps, err := capabilities(user.ID, 0)
		if err != nil {
			log.Printf("capability resolution failed for user %d: %v", user.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Authorization check failed"})
		}

		tenantcontext.Set(c, tenantcontext.TenantContext{
			UserID:       user.ID,
			UserName:     user.Name,
			Capabilities: caps,
			IsLoggedIn:   true,
		})

		return c.Next()
	}
}

// TenantScope resolves the actor's capabilities on the tenant addressed by
// the route. It must be mounted on the group whose prefix declares the
// :tenantID parameter; middleware mounted higher up never sees that param.
func TenantScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := tenantcontext.Get(c)
		if !ctx.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
		}

		id, err := c.ParamsInt("tenantID")
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Tenant not found"})
		}

		caps, err := capabilities(ctx.UserID, uint(id))
		if err != nil {
			log.Printf("capability resolution failed for user %d on tenant %d: %v", ctx.UserID, id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Authorization check failed"})
		}

		ctx.TenantID = uint(id)
		ctx.Capabilities = caps
		tenantcontext.Set(c, ctx)
		return c.Next()
	}
}

// RequireTenantMember rejects requests whose actor has no standing on the
// tenant: neither a membership nor the platform operator role.
func RequireTenantMember() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := tenantcontext.Get(c)
		if !ctx.IsLoggedIn {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Authentication required"})
		}
		if ctx.Capabilities.MembershipID() == 0 && !ctx.Capabilities.Has(capability.CapPlatformOperator) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Tenant not found"})
		}
		return c.Next()
	}
}

// RequireOperator rejects requests from non-operators.
func RequireOperator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !tenantcontext.IsOperator(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Platform operator role required"})
		}
		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
