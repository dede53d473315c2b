package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
)

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		App:       config.AppCfg{Name: "collabhub-test", Env: "test"},
		Telemetry: config.TelemetryCfg{Enabled: enabled, OtlpEndpoint: "http://localhost:4317"},
	}
}

func TestOtlpEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://collector:4317", "collector:4317"},
		{"https://collector:4317", "collector:4317"},
		{"collector:4317", "collector:4317"},
	}
	for _, tt := range tests {
		cfg := &config.Config{Telemetry: config.TelemetryCfg{OtlpEndpoint: tt.in}}
		assert.Equal(t, tt.want, otlpEndpoint(cfg))
	}
}

func TestEnabled(t *testing.T) {
	assert.True(t, Enabled(testConfig(true)))
	assert.False(t, Enabled(testConfig(false)))
	cfg := testConfig(true)
	cfg.Telemetry.OtlpEndpoint = ""
	assert.False(t, Enabled(cfg))
}

func TestTraceIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(t.Context()) }()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx, span := tp.Tracer("test").Start(c.Request.Context(), "req")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(TraceIDMiddleware())
	r.GET("/api/v1/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Len(t, w.Header().Get("X-Trace-Id"), 32)
}
