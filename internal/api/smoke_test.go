// Package api_test runs HTTP-level smoke tests using net/http/httptest.
// These tests do NOT require a PostgreSQL database — they verify:
//   - Gin router routing and middleware wiring
//   - Request validation error responses (400)
//   - JWT auth middleware (401 without token, 401 with bad token)
//   - Response format consistency (success/error envelope)
//   - CORS preflight handling
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rcmalta/laytrack/internal/api"
	"github.com/rcmalta/laytrack/internal/config"
	"github.com/rcmalta/laytrack/internal/service"
	"github.com/shopspring/decimal"
)

// ── Test helpers ──────────────────────────────────────────────────────────────

func testCfg() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Env:  "development",
			Port: "8080",
		},
		JWT: config.JWTConfig{
			Secret:     "test-secret-abcdefghijklmnopqrstuv",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Goal: config.GoalConfig{
			DefaultTarget:        decimal.NewFromInt(500),
			DefaultDays:          20,
			DefaultEntriesPerDay: 5,
			FallbackStake:        decimal.NewFromInt(5),
		},
	}
}

// buildTestRouter creates a Gin engine with a real AuthService (no DB
// needed for token parsing) and nil for everything that requires a DB.
func buildTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := testCfg()
	// NewAuthService with nil repo works for ParseAccessToken (secret-only op)
	authSvc := service.NewAuthService(nil, nil, cfg)

	r := api.SetupRouter(api.RouterDeps{
		AuthSvc:  authSvc,
		GoalSvc:  nil,
		EntrySvc: nil,
		Cfg:      cfg,
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&m); err != nil {
		t.Fatalf("response is not valid JSON: %v — body: %s", err, rr.Body.String())
	}
	return m
}

// ── /health ───────────────────────────────────────────────────────────────────

func TestHealthEndpoint(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rr.Code)
	}
}

// ── Auth endpoints — validation layer ─────────────────────────────────────────

func TestRegister_MissingFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/auth/register", `{}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("POST /api/auth/register empty body = %d, want 400", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["success"] != false {
		t.Errorf("response.success should be false on error, got %v", body["success"])
	}
	if body["code"] == nil {
		t.Errorf("error envelope missing 'code', got: %v", body)
	}
}

func TestRegister_InvalidEmail(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"email":"notanemail","password":"password123","display_name":"Test User"}`
	rr := do(t, h, http.MethodPost, "/api/auth/register", payload, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("register with invalid email = %d, want 400", rr.Code)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"email":"user@example.com","password":"short","display_name":"Test User"}`
	rr := do(t, h, http.MethodPost, "/api/auth/register", payload, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("register with short password = %d, want 400", rr.Code)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/auth/login", `{}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("POST /api/auth/login empty = %d, want 400", rr.Code)
	}
}

func TestResend_MissingEmail(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/auth/resend", `{}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("POST /api/auth/resend empty = %d, want 400", rr.Code)
	}
}

func TestResend_InvalidEmail(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/auth/resend", `{"email":"notanemail"}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("POST /api/auth/resend bad email = %d, want 400", rr.Code)
	}
}

func TestConfirm_MissingToken(t *testing.T) {
	h := buildTestRouter(t)
	// Public route: a missing token is a validation error, never a 401.
	rr := do(t, h, http.MethodGet, "/api/auth/confirm", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("GET /api/auth/confirm without token = %d, want 400", rr.Code)
	}
}

// ── JWT auth middleware (no token → 401) ──────────────────────────────────────

func TestMe_NoToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/me", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/me without token = %d, want 401", rr.Code)
	}
}

func TestGoal_NoToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/goal?month=8&year=2026", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/goal without token = %d, want 401", rr.Code)
	}
}

func TestSaveGoal_NoToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"month":8,"year":2026,"monthly_target":"500","operating_days":20,"entries_per_day":5}`
	rr := do(t, h, http.MethodPut, "/api/goal", payload, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("PUT /api/goal without token = %d, want 401", rr.Code)
	}
}

func TestEntries_NoToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/entries?month=8&year=2026", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/entries without token = %d, want 401", rr.Code)
	}
}

func TestAddEntry_NoToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"kind":"horse","original_odds":"25.00","stake_to_win":"5.00"}`
	rr := do(t, h, http.MethodPost, "/api/entries", payload, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/entries without token = %d, want 401", rr.Code)
	}
}

func TestDeleteEntry_NoToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodDelete, "/api/entries/11111111-1111-1111-1111-111111111111", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("DELETE /api/entries/:id without token = %d, want 401", rr.Code)
	}
}

// ── JWT auth middleware (invalid token → 401) ─────────────────────────────────

func TestMe_InvalidToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodGet, "/api/me", "", map[string]string{
		"Authorization": "Bearer not.a.valid.jwt",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/me with bad JWT = %d, want 401", rr.Code)
	}
}

func TestAddEntry_InvalidToken_Returns401(t *testing.T) {
	h := buildTestRouter(t)
	payload := `{"kind":"greyhound","original_odds":"3.00"}`
	// A well-formed JWT header+payload but wrong secret → ParseAccessToken rejects it
	fakeJWT := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9" +
		".eyJzdWIiOiIxMjM0NTY3ODkwIiwidHlwZSI6ImFjY2VzcyJ9" +
		".BADSIG"
	rr := do(t, h, http.MethodPost, "/api/entries", payload, map[string]string{
		"Authorization": "Bearer " + fakeJWT,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/entries with invalid JWT = %d, want 401", rr.Code)
	}
}

// ── Error envelope format ─────────────────────────────────────────────────────

func TestErrorEnvelope_HasRequiredFields(t *testing.T) {
	h := buildTestRouter(t)
	rr := do(t, h, http.MethodPost, "/api/auth/register", `{}`, nil)
	body := decodeBody(t, rr)

	for _, field := range []string{"success", "error", "code"} {
		if _, ok := body[field]; !ok {
			t.Errorf("error envelope missing field %q, got: %v", field, body)
		}
	}
	if body["success"] != false {
		t.Errorf("error envelope.success = %v, want false", body["success"])
	}
}

// ── CORS headers ──────────────────────────────────────────────────────────────

func TestCORSOptionsRequest(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// OPTIONS should return 204 (no content) in dev mode
	if rr.Code != http.StatusNoContent && rr.Code != http.StatusOK {
		t.Errorf("OPTIONS /api/auth/login = %d, want 204 or 200", rr.Code)
	}
	allow := rr.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(allow, "POST") {
		t.Errorf("Access-Control-Allow-Methods missing POST, got %q", allow)
	}
}

func TestCORSAllowOrigin_Dev(t *testing.T) {
	h := buildTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	// In dev mode, CORS origin should be wildcard
	origin := rr.Header().Get("Access-Control-Allow-Origin")
	if origin != "*" {
		t.Errorf("Dev CORS origin = %q, want *", origin)
	}
}

// TestCORSAllowOrigin_Prod: production echoes only the configured
// frontend origin; any other origin gets no allow header at all.
func TestCORSAllowOrigin_Prod(t *testing.T) {
	defer gin.SetMode(gin.TestMode)

	cfg := testCfg()
	cfg.Server.Env = "production"
	cfg.Server.AllowedOrigin = "https://app.laytrack.example"
	h := api.SetupRouter(api.RouterDeps{
		AuthSvc: service.NewAuthService(nil, nil, cfg),
		Cfg:     cfg,
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.laytrack.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.laytrack.example" {
		t.Errorf("allowed origin echoed %q, want the configured frontend origin", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got %q, want no allow header", got)
	}
}
