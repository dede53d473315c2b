package router

import (
	"net/http"
	"time"

	_ "github.com/ZIXNRIXZ/Collabhub/docs"
	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/ZIXNRIXZ/Collabhub/internal/middleware"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/handler"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/relay"
	"github.com/ZIXNRIXZ/Collabhub/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouterDeps struct {
	Config            *config.Config
	Log               *zap.Logger
	Auth              middleware.Authenticator
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	TaskHandler       *handler.TaskHandler
	CollabHandler     *handler.CollabHandler
	DeploymentHandler *handler.DeploymentHandler
	RelayHandler      *relay.Handler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if telemetry.Enabled(d.Config) {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(cors.New(corsConfig(d.Config)))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// realtime relay; identity is optional and read from the query
	r.GET(relayPath(d.Config), d.RelayHandler.ServeWS)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		auth := v1.Group("/auth")
		{
			auth.Use(middleware.RateLimiter(rate.Limit(d.Config.RateLimit.AuthRPS), d.Config.RateLimit.AuthBurst))
			auth.POST("/register", d.AuthHandler.Register)
			auth.POST("/login", d.AuthHandler.Login)
		}

		authed := v1.Group("")
		authed.Use(middleware.UserAuth(d.Auth))

		user := authed.Group("/user")
		{
			user.GET("/me", d.UserHandler.GetMe)
			user.PATCH("/me", d.UserHandler.UpdateMe)
		}

		task := authed.Group("/task")
		{
			task.GET("", d.TaskHandler.GetTasks)
			task.POST("", d.TaskHandler.CreateTask)
			task.PUT("/:task_id", d.TaskHandler.UpdateTask)
			task.DELETE("/:task_id", d.TaskHandler.DeleteTask)
			task.PATCH("/:task_id/status", d.TaskHandler.UpdateTaskStatus)
		}

		collab := authed.Group("/collab")
		{
			collab.GET("/session", d.CollabHandler.GetSessions)
			collab.POST("/session", d.CollabHandler.CreateSession)
			collab.POST("/session/:session_id/members", d.CollabHandler.JoinSession)
			collab.PUT("/session/:session_id/code", d.CollabHandler.UpdateSessionCode)
			collab.POST("/compile", d.CollabHandler.CompileCode)
		}

		deployment := authed.Group("/deployment")
		{
			deployment.GET("/logs", d.DeploymentHandler.GetLogs)
			deployment.GET("/stats", d.DeploymentHandler.GetStats)
			deployment.POST("", d.DeploymentHandler.TriggerDeployment)
		}
	}
	return r
}

func relayPath(cfg *config.Config) string {
	if cfg.Relay.Path == "" {
		return "/ws"
	}
	return cfg.Relay.Path
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	origins := cfg.CORS.AllowOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// credentials cannot be combined with a wildcard origin
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}
