package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/crm"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	"github.com/spec-kit/support-desk/internal/service"
)

func newTestApp(t *testing.T, syncer crm.Syncer) *fiber.App {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 10,
		BcryptCost:            4,
		AllowedEmailDomain:    "company.com",
	}, service.AuthDependencies{Store: store, Logger: logger})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger, metrics)})
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("support-desk", "test", metrics, handlers.Dependency{Name: "store", Pinger: store}),
		Auth:   handlers.NewAuthHandler(authService),
		Customers: handlers.NewCustomersHandler(service.NewCustomerService(service.CustomerDependencies{
			Store: store, Syncer: syncer, Dispatcher: dispatcher, Logger: logger,
		})),
		Tickets: handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{
			Store: store, Syncer: syncer, Dispatcher: dispatcher, Logger: logger,
		})),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(store)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Repos().Users, authService.Revoker()),
	})
	return app
}

func refusedCRM(t *testing.T) crm.Syncer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()
	return crm.NewHTTPClient(base, time.Second)
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func login(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body, _ := call(t, app, http.MethodPost, "/api/register", "", map[string]any{
		"name": "Ada", "username": "ada", "email": "ada@company.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body, _ = call(t, app, http.MethodPost, "/api/login", "", map[string]any{
		"username": "ada", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status, body)
	token, ok := body["access_token"].(string)
	require.True(t, ok)
	return token
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t, crm.Disabled{})

	status, body, _ := call(t, app, http.MethodGet, "/api/view_customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body, _ = call(t, app, http.MethodPost, "/api/register", "", map[string]any{
		"username": "eve", "email": "eve@gmail.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	token := login(t, app)

	status, body, _ = call(t, app, http.MethodPost, "/api/register", "", map[string]any{
		"username": "ada", "email": "x@company.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body, _ = call(t, app, http.MethodGet, "/api/check_auth", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "Ada", body["name"])

	status, _, _ = call(t, app, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = call(t, app, http.MethodGet, "/api/check_auth", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _, _ = call(t, app, http.MethodPost, "/api/login", "", map[string]any{"username": "ada", "password": "nope12"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCustomerCreateWithCRMRefused(t *testing.T) {
	app := newTestApp(t, refusedCRM(t))
	token := login(t, app)

	status, body, _ := call(t, app, http.MethodPost, "/api/add_customers", token, map[string]any{
		"firstname": "Ada", "lastname": "Lovelace", "email": "ada@example.com", "company": "Acme",
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, true, body["saved_to_database"])
	assert.Equal(t, false, body["saved_to_hubspot"])
	assert.NotEmpty(t, body["warning"])
	assert.NotContains(t, body, "hubspot_contact_id")

	status, body, _ = call(t, app, http.MethodGet, "/api/get_customers/ada%20lovelace", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "Ada Lovelace", body["name"])
}

func TestCustomerValidationAndConflicts(t *testing.T) {
	app := newTestApp(t, crm.Disabled{})
	token := login(t, app)

	status, body, _ := call(t, app, http.MethodPost, "/api/add_customers", token, map[string]any{
		"firstname": "Ada1", "email": "ada@example.com", "company": "Acme",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	status, _, raw := call(t, app, http.MethodGet, "/api/view_customers", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	payload := map[string]any{"firstname": "Ada", "email": "ada@example.com", "company": "Acme"}
	status, body, _ = call(t, app, http.MethodPost, "/api/add_customers", token, payload)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, body["saved_to_hubspot"])
	assert.NotContains(t, body, "warning")
	customerID := body["id"]

	status, body, _ = call(t, app, http.MethodPost, "/api/add_customers", token, payload)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, _, _ = call(t, app, http.MethodPut, "/api/update_customers/Ada", token, map[string]any{"company": "Globex"})
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = call(t, app, http.MethodPut, "/api/update_customers/Nobody", token, map[string]any{"company": "Globex"})
	assert.Equal(t, http.StatusNotFound, status)

	status, body, _ = call(t, app, http.MethodPost, "/api/add_tickets", token, map[string]any{
		"title": "Broken", "customer_id": customerID,
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body, _ = call(t, app, http.MethodDelete, "/api/delete_customers/Ada", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "Cannot delete. Customer might have linked tickets.", body["error"].(map[string]any)["message"])

	status, body, _ = call(t, app, http.MethodGet, "/api/get_customers/Ada", token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Globex", body["company"])
}

func TestTicketLifecycle(t *testing.T) {
	app := newTestApp(t, crm.Disabled{})
	token := login(t, app)

	status, body, _ := call(t, app, http.MethodPost, "/api/add_tickets", token, map[string]any{"title": "x", "customer_id": 42})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body, _ = call(t, app, http.MethodPost, "/api/add_tickets", token, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body, _ = call(t, app, http.MethodPost, "/api/add_customers", token, map[string]any{
		"firstname": "Bob", "email": "bob@example.com", "company": "Acme",
	})
	require.Equal(t, http.StatusCreated, status)
	customerID := body["id"]

	for _, p := range []map[string]any{
		{"title": "one", "customer_id": customerID, "priority": "High"},
		{"title": "two", "customer_id": customerID, "status": "Closed"},
		{"title": "three", "customer_id": customerID},
	} {
		status, body, _ = call(t, app, http.MethodPost, "/api/add_tickets", token, p)
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, true, body["saved_to_database"])
	}

	status, _, first := call(t, app, http.MethodGet, "/api/view_tickets?status=Open,In%20Progress", token, nil)
	require.Equal(t, http.StatusOK, status)
	_, _, second := call(t, app, http.MethodGet, "/api/view_tickets?status=Open,In%20Progress", token, nil)
	assert.JSONEq(t, string(first), string(second))

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(first, &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Bob", listed[0]["customer_name"])
	assert.Equal(t, "bob@example.com", listed[0]["customer_email"])

	ticketID := int64(listed[0]["id"].(float64))
	path := "/api/tickets/" + jsonNumber(ticketID)

	status, body, _ = call(t, app, http.MethodPut, path, token, map[string]any{"status": "In Progress"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, false, body["synced_to_hubspot"])

	status, body, _ = call(t, app, http.MethodPut, path, token, map[string]any{"status": "Pending"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body, _ = call(t, app, http.MethodPost, path+"/assign", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["assigned_to_id"])

	status, body, _ = call(t, app, http.MethodGet, "/api/dashboard/stats", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(2), body["open"])
	assert.Equal(t, float64(1), body["closed"])
	assert.Equal(t, float64(1), body["high_priority"])

	status, _, _ = call(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _, _ = call(t, app, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = call(t, app, http.MethodDelete, "/api/tickets/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTicketListReverseLookups(t *testing.T) {
	app := newTestApp(t, crm.Disabled{})
	token := login(t, app)

	var customerIDs []any
	for _, email := range []string{"bob@example.com", "cy@example.com"} {
		status, body, _ := call(t, app, http.MethodPost, "/api/add_customers", token, map[string]any{
			"firstname": "Bob", "email": email, "company": "Acme",
		})
		require.Equal(t, http.StatusCreated, status, body)
		customerIDs = append(customerIDs, body["id"])
	}

	var ticketIDs []int64
	for _, customerID := range []any{customerIDs[0], customerIDs[0], customerIDs[1]} {
		status, body, _ := call(t, app, http.MethodPost, "/api/add_tickets", token, map[string]any{
			"title": "x", "customer_id": customerID,
		})
		require.Equal(t, http.StatusCreated, status, body)
		ticketIDs = append(ticketIDs, int64(body["id"].(float64)))
	}

	status, _, _ := call(t, app, http.MethodPost, "/api/tickets/"+jsonNumber(ticketIDs[1])+"/assign", token, nil)
	require.Equal(t, http.StatusOK, status)

	ids := func(path string) []int64 {
		t.Helper()
		status, _, raw := call(t, app, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, status, string(raw))
		var listed []map[string]any
		require.NoError(t, json.Unmarshal(raw, &listed))
		out := []int64{}
		for _, row := range listed {
			out = append(out, int64(row["id"].(float64)))
		}
		return out
	}

	firstCustomer := fmt.Sprintf("%v", customerIDs[0])
	assert.Equal(t, ticketIDs[:2], ids("/api/view_tickets?customer_id="+firstCustomer))
	assert.Equal(t, []int64{ticketIDs[1]}, ids("/api/view_tickets?assigned_to=me"))
	assert.Equal(t, []int64{ticketIDs[1]}, ids("/api/view_tickets?assigned_to=1&customer_id="+firstCustomer))
	assert.Equal(t, []int64{}, ids("/api/view_tickets?assigned_to=99"))
	assert.Equal(t, []int64{ticketIDs[1]}, ids("/api/view_tickets?limit=1&offset=1"))

	for _, bad := range []string{"customer_id=abc", "customer_id=0", "assigned_to=-3", "limit=-1", "offset=-2"} {
		status, body, _ := call(t, app, http.MethodGet, "/api/view_tickets?"+bad, token, nil)
		assert.Equal(t, http.StatusBadRequest, status, bad)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(body), bad)
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, crm.Disabled{})

	status, body, _ := call(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body, _ = call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body, _ = call(t, app, http.MethodGet, "/health/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	requests, ok := body["requests"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, requests, "/health/live|GET|200")
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

func TestMetricsKeysStayBoundedForUnknownPaths(t *testing.T) {
	app := newTestApp(t, crm.Disabled{})

	for i := 0; i < 40; i++ {
		status, _, _ := call(t, app, http.MethodGet, fmt.Sprintf("/nope/%d", i), "", nil)
		require.Equal(t, http.StatusNotFound, status)
		status, _, _ = call(t, app, http.MethodGet, fmt.Sprintf("/api/nope-%d", i), "", nil)
		require.Equal(t, http.StatusUnauthorized, status)
	}

	_, body, _ := call(t, app, http.MethodGet, "/health/metrics", "", nil)
	requests, ok := body["requests"].(map[string]any)
	require.True(t, ok)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)

	assert.Len(t, requests, 2)
	assert.EqualValues(t, 40, requests["unmatched|GET|404"])
	assert.EqualValues(t, 40, requests["unmatched|GET|401"])
	assert.Len(t, errs, 2)
	assert.EqualValues(t, 40, errs["unmatched|GET|NOT_FOUND"])
	assert.EqualValues(t, 40, errs["unmatched|GET|UNAUTHORIZED"])
}
