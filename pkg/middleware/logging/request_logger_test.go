package loggingmw

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/role_gate/pkg/logging"
)

type ctxRole struct{}

func TestRequestLogger_InjectsLoggerAndLogsStatus(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info")

	identity := func(ctx context.Context) (string, string, bool) {
		role, ok := ctx.Value(ctxRole{}).(string)
		return "u-1", role, ok
	}

	e := echo.New()
	e.Use(RequestLogger(base, identity))
	e.GET("/ok", func(c echo.Context) error {
		assert.NotSame(t, base, logging.FromContext(c.Request().Context()))
		c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), ctxRole{}, "admin")))
		return c.NoContent(http.StatusOK)
	})
	e.GET("/forbidden", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, "u-1", line["user_id"])
	assert.Equal(t, "admin", line["role"])
	assert.EqualValues(t, http.StatusOK, line["status"])

	buf.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	line = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.NotContains(t, line, "user_id")
}
