package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pingpong/internal/config"
	"github.com/xiaot623/pingpong/internal/domain"
	"github.com/xiaot623/pingpong/internal/hub"
	"github.com/xiaot623/pingpong/internal/metrics"
	"github.com/xiaot623/pingpong/internal/policy"
	"github.com/xiaot623/pingpong/internal/repository"
	"github.com/xiaot623/pingpong/internal/service"
	"github.com/xiaot623/pingpong/internal/storage"
	"github.com/xiaot623/pingpong/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, *service.Service, store.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.BcryptCost = 4
	cfg.UploadDir = t.TempDir()

	db := helpers.NewTestSQLiteStore(t)
	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	files, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}
	svc := service.New(db, hub.NewHub(), policyEngine, files, cfg, metrics.New())
	return NewHandler(svc), svc, db
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/register", `{"username":"alice","password":"pw"}`), rec)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/register", `{"username":"alice","password":"pw"}`), rec)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.KindAlreadyExists, decodeError(t, rec).Error)

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/register", `{"username":"bob"}`), rec)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.KindInvalidInput, decodeError(t, rec).Error)

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/register", `{"username":"`+strings.Repeat("a", 65)+`","password":"pw"}`), rec)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username must be at most 64 characters", decodeError(t, rec).Message)

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/register", `{"username":"dave","password":"`+strings.Repeat("p", 73)+`"}`), rec)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at most 72 characters", decodeError(t, rec).Message)

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"bad"}`), rec)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"pw"}`), rec)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	var auth domain.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	assert.Equal(t, "alice", auth.Username)
	assert.NotEmpty(t, auth.Token)

	// Token via query string.
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/me?token="+auth.Token, nil), rec)
	require.NoError(t, h.RequireToken(h.Me)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"username":"alice"}`, rec.Body.String())

	// Token via bearer header.
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	rec = httptest.NewRecorder()
	require.NoError(t, h.RequireToken(h.Me)(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTokenRejects(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t)

	for _, target := range []string{"/me", "/me?token=nope"} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
		require.NoError(t, h.RequireToken(h.Me)(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domain.KindUnauthorized, decodeError(t, rec).Error)
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","online":0}`, rec.Body.String())
}
