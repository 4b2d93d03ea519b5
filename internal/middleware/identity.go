package middleware

// identity.go defines helper functions shared across middleware files.
// currentActorID pulls the actor identifier that JWTAuth stored in the Echo
// context; rate limiting and response caching use it to build per-actor
// keys. When no actor is authenticated, "anon" is returned so anonymous
// traffic shares one bucket per IP.

import (
    "github.com/labstack/echo/v4"
)

// currentActorID extracts the acting identity from context. It returns
// "anon" when no actor is authenticated.
func currentActorID(c echo.Context) string {
    if v := c.Get("actor_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "anon"
}
