package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/role_gate/internal/dashboard"
	"github.com/Skotchmaster/role_gate/internal/directory"
	"github.com/Skotchmaster/role_gate/pkg/logging"
)

type DashboardHTTP struct {
	Directory directory.Directory
}

func (h *DashboardHTTP) Admin(c echo.Context) error {
	return c.JSON(http.StatusOK, dashboard.AdminDashboard())
}

func (h *DashboardHTTP) Manager(c echo.Context) error {
	return c.JSON(http.StatusOK, dashboard.ManagerDashboard())
}

func (h *DashboardHTTP) Employee(c echo.Context) error {
	return c.JSON(http.StatusOK, dashboard.EmployeeDashboard())
}

func (h *DashboardHTTP) Users(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := directory.Page(page, size)

	ctx := c.Request().Context()
	total, users, err := h.Directory.Search(ctx, q, from, size)
	if err != nil {
		logging.FromContext(ctx).Error("directory_search_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	if users == nil {
		users = []directory.Entry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "users": users})
}
