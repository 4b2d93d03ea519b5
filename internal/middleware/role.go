package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireActorType returns a middleware function that enforces that the
// authenticated actor has one of the specified types (SCHOOL, GOVERN_BODY
// or ADMIN).  The accepted values correspond to the JWT's "role" claim as
// stored in context by JWTAuth.  If the actor's type is not in the allowed
// set, the request is aborted with a 403 Forbidden response.
func RequireActorType(types ...string) echo.MiddlewareFunc {
    // Build a set of allowed types for constant-time lookups.
    allowed := make(map[string]bool, len(types))
    for _, t := range types {
        allowed[t] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("actor_type")
            actorType, ok := v.(string)
            if !ok || !allowed[actorType] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
