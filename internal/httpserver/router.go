package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/role_gate/internal/middleware"
	"github.com/Skotchmaster/role_gate/internal/roles"
	"github.com/Skotchmaster/role_gate/pkg/db"
)

type Deps struct {
	AuthHandler      *AuthHTTP
	DashboardHandler *DashboardHTTP
	DB               *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.DB == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
		}
		return c.NoContent(http.StatusOK)
	})

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)

	authMw := middleware.RequireAuth(d.AuthHandler.Svc)

	e.POST("/logout", d.AuthHandler.LogOut, authMw)
	e.GET("/me", d.AuthHandler.Me, authMw)

	dash := e.Group("/dashboard", authMw)

	admin := dash.Group("/admin", middleware.RequireRole(roles.Admin))
	admin.GET("", d.DashboardHandler.Admin)
	admin.GET("/users", d.DashboardHandler.Users)

	dash.GET("/manager", d.DashboardHandler.Manager, middleware.RequireRole(roles.Manager))
	dash.GET("/employee", d.DashboardHandler.Employee, middleware.RequireRole(roles.Employee))
}
