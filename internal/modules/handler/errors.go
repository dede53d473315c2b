package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZIXNRIXZ/Collabhub/internal/middleware"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

// respondErr maps service errors onto the response envelope.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(err.Error()))
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr(err.Error()))
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, serializer.ConflictErr(err.Error()))
	case errors.Is(err, service.ErrCompilerUnavailable):
		c.JSON(http.StatusServiceUnavailable, serializer.Err(http.StatusServiceUnavailable, err.Error(), nil))
	case errors.Is(err, service.ErrCompileFailed):
		c.JSON(http.StatusBadGateway, serializer.Err(http.StatusBadGateway, "compiler error", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

func mustUser(c *gin.Context) (*model.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
		return nil, false
	}
	return u, true
}
