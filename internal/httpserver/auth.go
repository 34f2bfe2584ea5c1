package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/role_gate/internal/middleware"
	"github.com/Skotchmaster/role_gate/internal/service"
	"github.com/Skotchmaster/role_gate/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if _, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password, req.Role); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User created successfully",
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    res.Message,
		"token":      res.Token,
		"token_type": "Bearer",
		"expires_at": res.ExpiresAt.Format(time.RFC3339),
		"user":       res.User,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	}
	if err := h.Svc.LogOut(c.Request().Context(), id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	id, ok := middleware.Identity(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	}
	user, err := h.Svc.CurrentUser(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// serviceError renders a service failure with the status the client expects.
func serviceError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"message": "The given data was invalid.",
			"errors":  verr.Fields,
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}
