package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
	"github.com/ZIXNRIXZ/Collabhub/internal/pkg/utils/tokens"
)

const userKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*model.User, error)
}

// UserAuth returns a middleware that authenticates requests using user JWTs.
// It sets the user in the context and tags the current span with user_id.
func UserAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "user_auth",
			trace.WithAttributes(attribute.String("middleware", "user_auth")))

		raw, ok := tokens.ParseBearer(c.GetHeader("Authorization"))
		if !ok {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		u, err := auth.Authenticate(ctx, raw)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				authSpan.SetAttributes(attribute.Bool("authenticated", false))
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", u.ID.String()))
		}
		authSpan.SetAttributes(
			attribute.String("user_id", u.ID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set(userKey, u)
		c.Next()
	}
}

// CurrentUser returns the user stored by UserAuth.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// SetUser is used by tests and by handlers mounted outside UserAuth.
func SetUser(c *gin.Context, u *model.User) {
	c.Set(userKey, u)
}
