package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health is a simple liveness endpoint used by load balancers and
// monitoring systems to verify that the process is running.  It returns a
// plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// HealthHandler adds a readiness check that verifies the database is
// reachable before reporting healthy.
type HealthHandler struct {
    DB *sql.DB
}

// Ready pings the database with a short timeout and reports 503 when it is
// unreachable.
func (h *HealthHandler) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if err := h.DB.PingContext(ctx); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
