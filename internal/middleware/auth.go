package middleware

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/role_gate/internal/roles"
	"github.com/Skotchmaster/role_gate/internal/service"
	"github.com/Skotchmaster/role_gate/pkg/logging"
)

const CtxIdentity = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (roles.Identity, error)
}

// RequireAuth reads the bearer token from the Authorization header and
// resolves it to an identity. The identity is attached to the request
// context for the handlers downstream.
func RequireAuth(a Authenticator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  CtxIdentity,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			ctx := c.Request().Context()
			id, err := a.Authenticate(ctx, auth)
			if err != nil {
				return nil, err
			}
			ctx = logging.With(roles.WithIdentity(ctx, id), "user_id", id.UserID, "role", id.Role)
			c.SetRequest(c.Request().WithContext(ctx))
			return id, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, service.ErrInternal) {
				logging.FromContext(c.Request().Context()).Error("authenticate_failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.").SetInternal(err)
		},
	})
}

// RequireRole lets the request through only when the authenticated identity
// holds exactly the required role.
func RequireRole(required roles.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := roles.IdentityFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
			}
			if !roles.Authorize(id, required) {
				logging.FromContext(c.Request().Context()).Warn("access_denied",
					"user_id", id.UserID, "role", id.Role, "required", required)
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden")
			}
			return next(c)
		}
	}
}

// Identity returns the identity RequireAuth attached to the request.
func Identity(c echo.Context) (roles.Identity, bool) {
	return roles.IdentityFromContext(c.Request().Context())
}
