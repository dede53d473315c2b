package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/ZIXNRIXZ/Collabhub/internal/infra/httpclient"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

func newCollabRouter(svc *MockCollabService, u *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	serializer.SetLogger(zap.NewNop())

	h := NewCollabHandler(svc)
	r := gin.New()
	g := r.Group("/collab", withUser(u))
	g.GET("/session", h.GetSessions)
	g.POST("/session", h.CreateSession)
	g.POST("/session/:session_id/members", h.JoinSession)
	g.PUT("/session/:session_id/code", h.UpdateSessionCode)
	g.POST("/compile", h.CompileCode)
	return r
}

func TestCollabHandler_CreateSession(t *testing.T) {
	u := &model.User{ID: uuid.New()}
	svc := &MockCollabService{}
	svc.On("CreateSession", mock.Anything, service.CreateSessionInput{Creator: u, Name: "Pairing", Code: "x"}).
		Return(&model.CollaborationSession{ID: uuid.New(), Name: "Pairing", Code: "x", Language: "javascript", Users: []model.User{*u}}, nil)

	w := doJSON(newCollabRouter(svc, u), http.MethodPost, "/collab/session", `{"name":"Pairing","code":"x"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Len(t, data["users"], 1)
	svc.AssertExpectations(t)
}

func TestCollabHandler_UpdateSessionCode(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		path           string
		setup          func(*MockCollabService)
		expectedStatus int
	}{
		{
			name: "saved",
			path: "/collab/session/" + id.String() + "/code",
			setup: func(svc *MockCollabService) {
				svc.On("UpdateSessionCode", mock.Anything, service.UpdateSessionCodeInput{SessionID: id, Code: "x=2"}).
					Return(&model.CollaborationSession{ID: id, Code: "x=2"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown session",
			path: "/collab/session/" + id.String() + "/code",
			setup: func(svc *MockCollabService) {
				svc.On("UpdateSessionCode", mock.Anything, mock.Anything).Return(nil, service.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id",
			path:           "/collab/session/S1/code",
			setup:          func(svc *MockCollabService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCollabService{}
			tt.setup(svc)
			w := doJSON(newCollabRouter(svc, &model.User{ID: uuid.New()}), http.MethodPut, tt.path, `{"code":"x=2"}`)
			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCollabHandler_CompileCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"not configured", service.ErrCompilerUnavailable, http.StatusServiceUnavailable},
		{"judge failure", fmt.Errorf("%w: status 500", service.ErrCompileFailed), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCollabService{}
			in := service.CompileCodeInput{Code: "print(1)", Language: "python"}
			if tt.err != nil {
				svc.On("CompileCode", mock.Anything, in).Return(nil, tt.err)
			} else {
				svc.On("CompileCode", mock.Anything, in).Return(&httpclient.CompileResult{Output: "1\n"}, nil)
			}
			w := doJSON(newCollabRouter(svc, nil), http.MethodPost, "/collab/compile", `{"code":"print(1)","language":"python"}`)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
