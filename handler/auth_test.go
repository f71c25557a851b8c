package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ftllc/credit-enroll-pro-sub001/config"
	"github.com/ftllc/credit-enroll-pro-sub001/middleware"
	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

func authTestConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-key",
			TokenExpireHours: 24,
		},
	}
}

func sessionRouter(h *AuthHandler, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.POST("/api/auth/session", h.CreateSession)
	router.GET("/api/auth/me", middleware.AuthMiddleware(&cfg.Auth), h.GetCurrentSession)
	return router
}

func TestCreateSession(t *testing.T) {
	cfg := authTestConfig()
	store := newFakeStore(&model.Enrollment{ID: 10, Email: "jordan@example.com"})
	router := sessionRouter(NewAuthHandler(cfg, store), cfg)

	body := `{"record_id":10,"email":"Jordan@Example.com"}`
	req := httptest.NewRequest("POST", "/api/auth/session", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected non-empty token")
	}
	if resp.RecordID != 10 {
		t.Errorf("Expected record_id 10, got %d", resp.RecordID)
	}

	// The issued token opens the session endpoints
	meReq := httptest.NewRequest("GET", "/api/auth/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+resp.Token)
	meW := httptest.NewRecorder()
	router.ServeHTTP(meW, meReq)

	if meW.Code != http.StatusOK {
		t.Fatalf("Expected status 200 from /me, got %d", meW.Code)
	}
	var me map[string]any
	if err := json.Unmarshal(meW.Body.Bytes(), &me); err != nil {
		t.Fatalf("Failed to parse /me response: %v", err)
	}
	if me["record_id"].(float64) != 10 {
		t.Errorf("Expected session bound to record 10, got %v", me["record_id"])
	}
	if me["email"] != "jordan@example.com" {
		t.Errorf("Expected email on file, got %v", me["email"])
	}
}

func TestCreateSessionWrongEmail(t *testing.T) {
	cfg := authTestConfig()
	store := newFakeStore(&model.Enrollment{ID: 10, Email: "jordan@example.com"})
	router := sessionRouter(NewAuthHandler(cfg, store), cfg)

	body := `{"record_id":10,"email":"someone-else@example.com"}`
	req := httptest.NewRequest("POST", "/api/auth/session", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestCreateSessionUnknownRecord(t *testing.T) {
	cfg := authTestConfig()
	router := sessionRouter(NewAuthHandler(cfg, newFakeStore()), cfg)

	body := `{"record_id":99,"email":"jordan@example.com"}`
	req := httptest.NewRequest("POST", "/api/auth/session", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Unknown records and wrong emails are indistinguishable
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestCreateSessionInvalidBody(t *testing.T) {
	cfg := authTestConfig()
	router := sessionRouter(NewAuthHandler(cfg, newFakeStore()), cfg)

	req := httptest.NewRequest("POST", "/api/auth/session", bytes.NewBufferString(`{"record_id":10}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
