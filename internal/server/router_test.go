package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"chat-relay-server/internal/auth"
	"chat-relay-server/internal/directory"
	"chat-relay-server/internal/hub"
	"chat-relay-server/internal/store"
)

type nopWriter struct{}

func (nopWriter) Write(message []byte) error { return nil }
func (nopWriter) Close() error               { return nil }

func newTestDeps() (Deps, *directory.Memory) {
	dir := directory.NewMemory()
	reg := hub.NewRegistry()
	return Deps{
		Registry:    reg,
		Engine:      hub.NewEngine(reg, nil),
		Directory:   dir,
		Messages:    store.NewMemory(),
		TokenConfig: auth.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"},
	}, dir
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDeps()
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDeps()
	deps.Registry.Join(7, "A", hub.NewConnection(7, "A", nopWriter{}))
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"connections":1,"rooms":1}` {
		t.Fatalf("unexpected stats body %q", body)
	}
}

func TestMembers_RequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDeps()
	r := NewRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/rooms/7/members", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRemoveMember_NonAdminRejectedWithoutStateChange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _ := newTestDeps()
	connB := hub.NewConnection(7, "B", nopWriter{})
	deps.Registry.Join(7, "B", connB)
	r := NewRouter(deps)

	tok, err := auth.CreateToken("X", deps.TokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/v1/rooms/7/members/B", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if got, ok := deps.Registry.Get(7, "B"); !ok || got != connB {
		t.Fatalf("registry must be unchanged after rejected removal")
	}
	if connB.Closed() {
		t.Fatalf("target connection must stay open after rejected removal")
	}
}

func TestRemoveMember_AdminTargetNotConnected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, dir := newTestDeps()
	dir.Promote("X")
	r := NewRouter(deps)

	tok, err := auth.CreateToken("X", deps.TokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/v1/rooms/7/members/B", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRemoveMember_InvalidRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, dir := newTestDeps()
	dir.Promote("X")
	r := NewRouter(deps)

	tok, err := auth.CreateToken("X", deps.TokenConfig)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/v1/rooms/seven/members/B", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
