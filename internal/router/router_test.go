package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/handler"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
	"github.com/ZIXNRIXZ/Collabhub/internal/relay"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rejectAll struct{}

func (rejectAll) Authenticate(context.Context, string) (*model.User, error) {
	return nil, service.ErrInvalidCredentials
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:       config.AppCfg{Name: "collabhub-test"},
		Auth:      config.AuthCfg{JWTSecret: "router-test"},
		Relay:     config.RelayCfg{Path: "/ws"},
		CORS:      config.CORSCfg{AllowOrigins: []string{"*"}},
		RateLimit: config.RateLimitCfg{AuthRPS: 0.001, AuthBurst: 2},
	}
	log := zap.NewNop()

	return NewRouter(RouterDeps{
		Config:            cfg,
		Log:               log,
		Auth:              rejectAll{},
		AuthHandler:       handler.NewAuthHandler(nil),
		UserHandler:       handler.NewUserHandler(nil),
		TaskHandler:       handler.NewTaskHandler(nil),
		CollabHandler:     handler.NewCollabHandler(nil),
		DeploymentHandler: handler.NewDeploymentHandler(nil),
		RelayHandler:      relay.NewHandler(relay.NewHub(log), cfg, log),
	})
}

func TestRouter_Routes(t *testing.T) {
	r := setupRouter(t)

	got := map[string]bool{}
	for _, ri := range r.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}

	want := []string{
		"GET /health",
		"GET /ws",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/user/me",
		"PATCH /api/v1/user/me",
		"GET /api/v1/task",
		"POST /api/v1/task",
		"PUT /api/v1/task/:task_id",
		"DELETE /api/v1/task/:task_id",
		"PATCH /api/v1/task/:task_id/status",
		"GET /api/v1/collab/session",
		"POST /api/v1/collab/session",
		"POST /api/v1/collab/session/:session_id/members",
		"PUT /api/v1/collab/session/:session_id/code",
		"POST /api/v1/collab/compile",
		"GET /api/v1/deployment/logs",
		"GET /api/v1/deployment/stats",
		"POST /api/v1/deployment",
	}
	for _, w := range want {
		assert.True(t, got[w], "missing route %s", w)
	}
}

func TestRouter_Health(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		method, path, auth string
	}{
		{http.MethodGet, "/api/v1/task", ""},
		{http.MethodGet, "/api/v1/user/me", "Basic abc"},
		{http.MethodGet, "/api/v1/deployment/stats", "Bearer not-a-token"},
		{http.MethodPost, "/api/v1/collab/session", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AuthIsRateLimited(t *testing.T) {
	r := setupRouter(t)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)
}

func TestRouter_RelayIsMounted(t *testing.T) {
	srv := httptest.NewServer(setupRouter(t))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	f, err := relay.DecodeFrame(raw)
	require.NoError(t, err)
	assert.Equal(t, relay.EventConnected, f.Event)
}
