package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"agora-server/services/forum-api/internal/domain/expert"
	"agora-server/services/forum-api/internal/domain/invite"
	"agora-server/services/forum-api/internal/interfaces/httpserver/handlers"
	"agora-server/services/forum-api/internal/interfaces/httpserver/middlewares"
)

type echoInvoker struct{}

func (echoInvoker) Invoke(_ context.Context, _ expert.Persona, _ string) (string, error) {
	return "peer opinion", nil
}

func setupInviteTestRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := invite.NewService(echoInvoker{}, expert.Persona{ID: "pragmatist", Role: "balanced"}, time.Second, zerolog.Nop())
	handler := handlers.NewInviteHandler(service, zerolog.Nop())
	r := gin.New()
	r.POST("/v1/invite", middlewares.BearerAuth(token, zerolog.Nop()), handler.Respond)
	return r
}

func inviteBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"session_id": "peer-session-1",
		"topic":      "should we share experts?",
		"history":    []map[string]string{{"role": "visionary", "content": "yes"}},
		"caller_id":  "peer-deployment",
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestInviteHandler_RequiresBearerToken(t *testing.T) {
	router := setupInviteTestRouter("secret-token")

	req, _ := http.NewRequest("POST", "/v1/invite", bytes.NewReader(inviteBody(t)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", w.Code)
	}

	req, _ = http.NewRequest("POST", "/v1/invite", bytes.NewReader(inviteBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer wrong-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with wrong token, got %d", w.Code)
	}
}

func TestInviteHandler_Respond(t *testing.T) {
	router := setupInviteTestRouter("secret-token")

	req, _ := http.NewRequest("POST", "/v1/invite", bytes.NewReader(inviteBody(t)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["content"] != "peer opinion" {
		t.Errorf("Expected content, got %v", resp["content"])
	}
	if resp["responder_id"] != "pragmatist" {
		t.Errorf("Expected responder pragmatist, got %v", resp["responder_id"])
	}
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", resp["status"])
	}
}

func TestInviteHandler_MissingSessionID(t *testing.T) {
	router := setupInviteTestRouter("secret-token")

	body, _ := json.Marshal(map[string]any{"topic": "no session"})
	req, _ := http.NewRequest("POST", "/v1/invite", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secret-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}
