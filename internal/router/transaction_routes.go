package router

import (
    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/handler"
    "github.com/AdeepaK2/goalx-engine/internal/middleware"
)

// RegisterTransactions registers the transaction and equipment endpoints
// under /v1.  All routes require a valid JWT; listings are scoped to the
// acting identity inside the handlers.
func RegisterTransactions(e *echo.Echo, th *handler.TransactionHandler, eh *handler.EquipmentHandler, jwtSecret string) {
    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

    g.GET("/transactions", th.List)
    g.GET("/transactions/:id", th.Get)
    g.POST("/transactions/:id/return", th.ConfirmReturn, middleware.RequireActorType("SCHOOL", "GOVERN_BODY", "ADMIN"))
    g.POST("/transactions/:id/cancel", th.Cancel, middleware.RequireActorType("SCHOOL", "GOVERN_BODY", "ADMIN"))

    g.GET("/equipment/:id/availability", eh.Availability)
}
