package router

import (
    "github.com/labstack/echo/v4"

    "github.com/AdeepaK2/goalx-engine/internal/handler"
    "github.com/AdeepaK2/goalx-engine/internal/middleware"
)

// RegisterRequests registers the equipment request lifecycle endpoints
// under /v1.  All routes require a valid JWT.  Schools open requests and
// confirm delivery; schools and governing bodies browse and respond;
// admins may respond or create on behalf of others.  The optional cache
// middleware is applied to the open-requests listing only, since that is
// the one read hot enough to be worth caching and its proximity ordering
// is stable between responses.
func RegisterRequests(e *echo.Echo, rh *handler.RequestHandler, dh *handler.DonationHandler, jwtSecret string, cache echo.MiddlewareFunc) {
    g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

    // Creating a request is a school operation; admins may create on a
    // school's behalf by naming the requester.
    g.POST("/requests", rh.Create, middleware.RequireActorType("SCHOOL", "ADMIN"))

    // Browsing open requests is provider-only: the listing is scoped and
    // ranked for the acting school or governing body.
    listMW := []echo.MiddlewareFunc{middleware.RequireActorType("SCHOOL", "GOVERN_BODY")}
    if cache != nil {
        listMW = append(listMW, cache)
    }
    g.GET("/requests/open", rh.ListOpen, listMW...)

    g.GET("/requests/:id", rh.Get)
    g.POST("/requests/:id/respond", rh.Respond, middleware.RequireActorType("SCHOOL", "GOVERN_BODY", "ADMIN"))
    g.POST("/requests/:id/delivered", rh.MarkDelivered, middleware.RequireActorType("SCHOOL", "GOVERN_BODY", "ADMIN"))

    // Donation-based fulfillment converges into the same lifecycle.
    g.POST("/requests/:id/donations", dh.Donate, middleware.RequireActorType("SCHOOL", "GOVERN_BODY", "ADMIN"))
}
