package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticketapp/internal/app"
	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/gate"
	"github.com/spec-kit/ticketapp/internal/service"
)

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{}
	cfg.App.Name = "ticketapp"
	cfg.Storage.Driver = config.StorageMemory
	cfg.Auth = config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		VerifyPassword:        true,
		PasswordHashing:       config.PasswordHashingBcrypt,
		BcryptCost:            bcrypt.MinCost,
	}

	a, err := app.New(context.Background(), cfg, zap.NewNop(), app.Options{})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return NewServer(a)
}

type response struct {
	status int
	body   map[string]any
	header http.Header
}

func do(t *testing.T, server *fiber.App, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, header: resp.Header}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.body), string(raw))
	}
	return out
}

func data(t *testing.T, r response) map[string]any {
	t.Helper()
	d, ok := r.body["data"].(map[string]any)
	require.True(t, ok, "missing data in %v", r.body)
	return d
}

func errorCode(r response) string {
	e, _ := r.body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func signup(t *testing.T, server *fiber.App, name, email string) string {
	t.Helper()
	r := do(t, server, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, r.status, r.body)
	auth := data(t, r)["auth"].(map[string]any)
	return auth["token"].(string)
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	r := do(t, server, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "alive", r.body["status"])

	r = do(t, server, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ready", r.body["status"])
}

func TestSignupLoginFlow(t *testing.T) {
	server := newTestServer(t)
	token := signup(t, server, "Ada", "ada@example.com")
	assert.NotEmpty(t, token)

	r := do(t, server, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ada@example.com", data(t, r)["email"])

	r = do(t, server, http.MethodGet, "/toast", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, service.ToastAccountCreated, data(t, r)["message"])
	assert.Equal(t, "success", data(t, r)["type"])

	r = do(t, server, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": "Other", "email": "ada@example.com", "password": "password2",
	})
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(r))

	r = do(t, server, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, r.status)
	r = do(t, server, http.MethodGet, "/auth/session", "", nil)
	assert.Equal(t, http.StatusNoContent, r.status)

	r = do(t, server, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(r))

	r = do(t, server, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ada@example.com", "password": "password1", "from": "/tickets",
	})
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "/tickets", data(t, r)["redirect"])
}

func TestSignupValidation(t *testing.T) {
	server := newTestServer(t)

	r := do(t, server, http.MethodPost, "/auth/signup", "", map[string]string{"name": "", "email": "bad", "password": ""})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(r))
	details := r.body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "Email address is invalid", details["email"])
}

func TestProtectedRoutesRedirectWithoutSession(t *testing.T) {
	server := newTestServer(t)

	r := do(t, server, http.MethodGet, "/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "/login?from=%2Ftickets", r.body["redirect"])
	assert.Equal(t, "/login?from=%2Ftickets", r.header.Get("Location"))

	r = do(t, server, http.MethodGet, "/toast", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, gate.DeniedMessage, data(t, r)["message"])
	assert.Equal(t, "error", data(t, r)["type"])
}

func TestTicketCRUD(t *testing.T) {
	server := newTestServer(t)
	token := signup(t, server, "Ada", "ada@example.com")

	r := do(t, server, http.MethodGet, "/tickets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status, "session alone is not enough")

	r = do(t, server, http.MethodPost, "/tickets", token, map[string]string{
		"title": "Printer", "description": "jammed", "status": "open",
	})
	require.Equal(t, http.StatusCreated, r.status, r.body)
	created := data(t, r)
	id := int64(created["id"].(float64))
	assert.NotEmpty(t, created["created_at"])

	r = do(t, server, http.MethodPost, "/tickets", token, map[string]string{"title": " ", "status": "open"})
	assert.Equal(t, http.StatusBadRequest, r.status)

	path := "/tickets/" + jsonNumber(id)
	r = do(t, server, http.MethodPut, path, token, map[string]string{
		"title": "Printer", "description": "fixed", "status": "closed",
	})
	assert.Equal(t, http.StatusNoContent, r.status)

	r = do(t, server, http.MethodGet, "/dashboard", token, nil)
	require.Equal(t, http.StatusOK, r.status)
	stats := data(t, r)["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total"])
	assert.Equal(t, float64(1), stats["closed"])

	r = do(t, server, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, r.status)
	r = do(t, server, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, r.status)

	r = do(t, server, http.MethodDelete, "/tickets/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, r.status)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := server.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list.Data)
	assert.NotNil(t, list.Data)
}

func TestTokenFromPreviousIdentityIsRejected(t *testing.T) {
	server := newTestServer(t)
	adaToken := signup(t, server, "Ada", "ada@example.com")
	signup(t, server, "Bob", "bob@example.com")

	r := do(t, server, http.MethodGet, "/tickets", adaToken, nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(r))
}

func TestReturnPathAndMetrics(t *testing.T) {
	server := newTestServer(t)

	r := do(t, server, http.MethodGet, "/auth/return-path?from=%2Ftickets", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "/tickets", data(t, r)["path"])

	r = do(t, server, http.MethodGet, "/auth/return-path?from=https://evil.example", "", nil)
	assert.Equal(t, "/dashboard", data(t, r)["path"])

	r = do(t, server, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.GreaterOrEqual(t, r.body["total_requests"].(float64), float64(2))
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(t)
	r := do(t, server, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "NOT_FOUND", errorCode(r))
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}
