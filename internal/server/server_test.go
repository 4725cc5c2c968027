package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-copilot/internal/llm"
	"github.com/jonathan/career-copilot/internal/types"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	srv, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func registerAndGetToken(t *testing.T, srv *Server, email, password string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", types.RegisterRequest{
		Name:     "Test",
		Email:    email,
		Password: password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRegisterThenGenerate(t *testing.T) {
	client := &stubLLM{result: &llm.Result{Content: "Result text", TokensUsed: 42, Model: "gemini-2.5-pro"}}
	srv := newTestServer(t, Config{StrictUpstreamErrors: true, LLMClient: client})

	token := registerAndGetToken(t, srv, "a@b.com", "pw")

	rec := doJSON(t, srv, http.MethodPost, "/api/ai/generate", token, types.GenerateRequest{
		Prompt: "Write a summary",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Result text", resp.Content)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "gemini-2.5-pro", resp.Model)
}

func TestAIEndpointsRequireAuth(t *testing.T) {
	srv := newTestServer(t, Config{StrictUpstreamErrors: true})

	paths := []string{
		"/api/ai/generate",
		"/api/ai/ats-score",
		"/api/ai/analyze-job",
		"/api/ai/analyze-resume",
		"/api/ai/chat",
	}
	for _, path := range paths {
		rec := doJSON(t, srv, http.MethodPost, path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateUnavailableWhenNotConfigured(t *testing.T) {
	srv := newTestServer(t, Config{StrictUpstreamErrors: true})

	token := registerAndGetToken(t, srv, "a@b.com", "pw")

	rec := doJSON(t, srv, http.MethodPost, "/api/ai/generate", token, types.GenerateRequest{Prompt: "p"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDuplicateRegistration(t *testing.T) {
	srv := newTestServer(t, Config{})

	registerAndGetToken(t, srv, "a@b.com", "pw")

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", types.RegisterRequest{
		Name: "Test", Email: "a@b.com", Password: "pw",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSeededAccount(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", types.LoginRequest{
		Email:    seedUserEmail,
		Password: seedUserPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, seedUserEmail, resp.User.Email)
	assert.Equal(t, seedUserName, resp.User.Name)
}

func TestMeRoundtrip(t *testing.T) {
	srv := newTestServer(t, Config{})

	token := registerAndGetToken(t, srv, "alice@example.com", "secret")

	rec := doJSON(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user types.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{LLMClient: &stubLLM{}})

	rec := doJSON(t, srv, http.MethodGet, "/api/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, serviceName, body["service"])
	assert.Equal(t, true, body["ai_configured"])

	endpoints := body["endpoints"].(map[string]any)
	assert.Contains(t, endpoints, "auth")
	assert.Contains(t, endpoints, "ai")
}

func TestStatusReportsUnconfiguredAI(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := doJSON(t, srv, http.MethodGet, "/api/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["ai_configured"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, Config{})

	rec := doJSON(t, srv, http.MethodGet, "/api/auth/register", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimitExceeded(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_AI_LIMIT", "30")

	srv, err := New(Config{StrictUpstreamErrors: false})
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)

	token := registerAndGetToken(t, srv, "a@b.com", "pw")

	// Burst capacity for AI endpoints is 5
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = doJSON(t, srv, http.MethodPost, "/api/ai/generate", token, types.GenerateRequest{Prompt: "p"})
	}

	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, "rate_limit_exceeded", body["error"])
}
