package rpc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T, register func(r *gin.RouterGroup)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r.Group("/api/v1"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/v1/")
}

func TestClient_LoginStoresToken(t *testing.T) {
	uid := uuid.New()
	c := fakeAPI(t, func(g *gin.RouterGroup) {
		g.POST("/auth/login", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, serializer.Response{Data: gin.H{
				"token": "tok-1",
				"user":  gin.H{"id": uid, "email": "ada@example.com"},
			}})
		})
		g.GET("/user/me", func(ctx *gin.Context) {
			if ctx.GetHeader("Authorization") != "Bearer tok-1" {
				ctx.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			ctx.JSON(http.StatusOK, serializer.Response{Data: gin.H{"id": uid, "email": "ada@example.com"}})
		})
	})

	_, err := c.Me(context.Background())
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, http.StatusUnauthorized, rpcErr.Code)

	out, err := c.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", c.Token())
	assert.Equal(t, uid, out.User.ID)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestClient_ErrorMapping(t *testing.T) {
	c := fakeAPI(t, func(g *gin.RouterGroup) {
		g.DELETE("/task/:task_id", func(ctx *gin.Context) {
			ctx.JSON(http.StatusNotFound, serializer.NotFoundErr("task not found"))
		})
		g.POST("/collab/compile", func(ctx *gin.Context) {
			ctx.String(http.StatusBadGateway, "upstream exploded")
		})
	})

	tests := []struct {
		name     string
		call     func() error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "envelope error",
			call:     func() error { return c.DeleteTask(context.Background(), uuid.New()) },
			wantCode: http.StatusNotFound,
			wantMsg:  "task not found",
		},
		{
			name: "non envelope body",
			call: func() error {
				_, err := c.CompileCode(context.Background(), "print(1)", "python")
				return err
			},
			wantCode: http.StatusBadGateway,
			wantMsg:  "Bad Gateway",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rpcErr *Error
			require.ErrorAs(t, tt.call(), &rpcErr)
			assert.Equal(t, tt.wantCode, rpcErr.Code)
			assert.Equal(t, tt.wantMsg, rpcErr.Msg)
		})
	}
}

func TestClient_DeploymentLogsQuery(t *testing.T) {
	var gotQuery map[string]string
	c := fakeAPI(t, func(g *gin.RouterGroup) {
		g.GET("/deployment/logs", func(ctx *gin.Context) {
			gotQuery = map[string]string{
				"limit":     ctx.Query("limit"),
				"cursor":    ctx.Query("cursor"),
				"time_desc": ctx.Query("time_desc"),
			}
			ctx.JSON(http.StatusOK, serializer.Response{Data: gin.H{
				"items":       []gin.H{{"id": uuid.New(), "status": model.DeploymentStatusSuccess, "environment": "staging", "branch": "main", "logs": []string{"ok"}}},
				"next_cursor": "abc",
				"has_more":    true,
			}})
		})
	})

	page, err := c.GetDeploymentLogs(context.Background(), 5, "cur", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"limit": "5", "cursor": "cur", "time_desc": "false"}, gotQuery)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []string{"ok"}, page.Items[0].Logs.Data())
	assert.True(t, page.HasMore)
	assert.Equal(t, "abc", page.NextCursor)
}

func TestClient_TaskRoundTrip(t *testing.T) {
	id := uuid.New()
	var body map[string]any
	c := fakeAPI(t, func(g *gin.RouterGroup) {
		g.PATCH("/task/:task_id/status", func(ctx *gin.Context) {
			require.NoError(t, ctx.ShouldBindJSON(&body))
			ctx.JSON(http.StatusOK, serializer.Response{Data: gin.H{
				"id": ctx.Param("task_id"), "title": "t", "status": body["status"],
			}})
		})
	})

	task, err := c.UpdateTaskStatus(context.Background(), id, model.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, model.TaskStatusCompleted, task.Status)
	assert.Equal(t, "COMPLETED", body["status"])
}
