package serializer

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

// SetLogger makes server-side failures (5xx) visible in the logs exactly once,
// where the envelope is built.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// TrackedErrorResponse carries the trace id of a failed request
type TrackedErrorResponse struct {
	Response
	TraceID string `json:"trace_id"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	if err != nil && errCode >= http.StatusInternalServerError {
		if l := logger.Load(); l != nil {
			l.Error(msg, zap.Int("code", errCode), zap.Error(err))
		}
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// NotFoundErr
func NotFoundErr(msg string) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, nil)
}

// ConflictErr
func ConflictErr(msg string) Response {
	if msg == "" {
		msg = "conflict"
	}
	return Err(http.StatusConflict, msg, nil)
}
