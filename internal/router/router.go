package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/AdeepaK2/goalx-engine/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: a liveness check for load balancers and a
// readiness check that verifies the database connection.
func RegisterRoutes(e *echo.Echo, hh *handler.HealthHandler) {
    // Liveness: the process is up.
    e.GET("/healthz", handler.Health)
    // Readiness: the process can reach its database.
    e.GET("/readyz", hh.Ready)
}
