package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yabreu65/buildingOs-sub002/app/controllers"
	"github.com/yabreu65/buildingOs-sub002/app/models"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/apperrors"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/audit"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/capability"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/middleware"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/router"
	"github.com/yabreu65/buildingOs-sub002/internal/pkg/subscription"
)

var errConflictingRequest = apperrors.Conflict("a pending plan change request already exists for this tenant")

// routedSubRepo is the minimal in-memory subscription repository the routed
// tests need: one subscription per tenant, single pending request rule.
type routedSubRepo struct {
	subs     map[uint]*models.Subscription
	requests []*models.PlanChangeRequest
}

func (r *routedSubRepo) SubscriptionByTenant(_ context.Context, tenantID uint) (*models.Subscription, error) {
	sub, ok := r.subs[tenantID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *routedSubRepo) RequestByUUID(_ context.Context, id string) (*models.PlanChangeRequest, error) {
	for _, req := range r.requests {
		if req.UUID == id {
			cp := *req
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *routedSubRepo) ListRequestsByTenant(_ context.Context, tenantID uint) ([]models.PlanChangeRequest, error) {
	var out []models.PlanChangeRequest
	for _, req := range r.requests {
		if req.TenantID == tenantID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *routedSubRepo) ListPendingRequests(_ context.Context) ([]models.PlanChangeRequest, error) {
	var out []models.PlanChangeRequest
	for _, req := range r.requests {
		if req.Status == models.PlanChangeStatusPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *routedSubRepo) CreatePendingRequest(_ context.Context, req *models.PlanChangeRequest) error {
	if _, ok := r.subs[req.TenantID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, existing := range r.requests {
		if existing.TenantID == req.TenantID && existing.Status == models.PlanChangeStatusPending {
			return errConflictingRequest
		}
	}
	req.ID = uint(len(r.requests) + 1)
	if req.UUID == "" {
		req.UUID = uuid.New().String()
	}
	cp := *req
	r.requests = append(r.requests, &cp)
	return nil
}

func (r *routedSubRepo) CancelRequest(_ context.Context, requestID uint, reviewerUserID uint) (*models.PlanChangeRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *routedSubRepo) RejectRequest(_ context.Context, requestID uint, reviewerUserID uint, reason string) (*models.PlanChangeRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *routedSubRepo) ApproveRequest(_ context.Context, requestID uint, reviewerUserID uint) (*models.PlanChangeRequest, string, error) {
	return nil, "", gorm.ErrRecordNotFound
}

type routedAuth struct {
	users map[string]*models.User
}

func (r routedAuth) UserByAPIKeyHash(hash string) (*models.User, error) {
	u, ok := r.users[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r routedAuth) TouchAPIKeyUsage(userID uint) error { return nil }

type routedResolver struct {
	memberships map[uint]map[uint]capability.Set // userID -> tenantID -> set
}

func (r routedResolver) Capabilities(userID, tenantID uint) (capability.Set, error) {
	if byTenant, ok := r.memberships[userID]; ok {
		if set, ok := byTenant[tenantID]; ok {
			return set, nil
		}
	}
	return capability.NewSet(0), nil
}

// newRoutedApp installs the full production router behind fake auth,
// capability and repository backends. User 7 is an admin member of tenant 1
// with the API key "key-tenant-admin" and nothing else.
func newRoutedApp(t *testing.T) (*fiber.App, *routedSubRepo) {
	t.Helper()

	middleware.SetAuth(routedAuth{users: map[string]*models.User{
		models.HashAPIKey("key-tenant-admin"): {ID: 7, Name: "Admin", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE},
	}})
	middleware.SetResolver(routedResolver{memberships: map[uint]map[uint]capability.Set{
		7: {1: capability.NewSet(31, capability.CapTenantAdmin)},
	}})
	t.Cleanup(func() {
		middleware.SetAuth(nil)
		middleware.SetResolver(nil)
	})

	repo := &routedSubRepo{subs: map[uint]*models.Subscription{
		1: {ID: 1, TenantID: 1, PlanID: "free", Status: models.SubscriptionStatusActive},
	}}
	controllers.SetSubscriptionService(subscription.NewService(repo, audit.Noop{}))

	app := fiber.New()
	router.InstallRouter(app)
	return app, repo
}

func TestRoutedSubscriptionUsesPathTenant(t *testing.T) {
	app, _ := newRoutedApp(t)

	req := httptest.NewRequest("GET", "/api/v1/tenants/1/subscription", nil)
	req.Header.Set("X-API-Key", "key-tenant-admin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Subscription models.Subscription    `json:"subscription"`
		Limits       map[string]interface{} `json:"limits"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, uint(1), body.Subscription.TenantID)
	assert.Equal(t, "free", body.Subscription.PlanID)
	assert.NotEmpty(t, body.Limits)

	// The same key has no standing on tenant 2.
	req = httptest.NewRequest("GET", "/api/v1/tenants/2/subscription", nil)
	req.Header.Set("X-API-Key", "key-tenant-admin")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// No key at all never reaches the tenant scope.
	req = httptest.NewRequest("GET", "/api/v1/tenants/1/subscription", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRoutedPlanChangeRequestCreate(t *testing.T) {
	app, repo := newRoutedApp(t)

	payload, err := json.Marshal(map[string]string{"requested_plan_id": "pro", "note": "need more buildings"})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/v1/tenants/1/plan-change-requests", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "key-tenant-admin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.PlanChangeRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, uint(1), created.TenantID)
	assert.Equal(t, "pro", created.RequestedPlanID)
	assert.Equal(t, models.PlanChangeStatusPending, created.Status)

	require.Len(t, repo.requests, 1)
	assert.Equal(t, uint(31), repo.requests[0].RequestedByMembershipID)
}
