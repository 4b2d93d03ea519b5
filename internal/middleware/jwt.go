package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "fmt"
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
    "github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request context.
// The provided secret must match the one used when issuing tokens.  This
// middleware should wrap protected routes so that handlers can resolve the
// acting identity via `c.Get("actor_id")` and `c.Get("actor_type")`.  The
// role claim carries the actor type (SCHOOL, GOVERN_BODY or ADMIN) issued
// by the upstream identity service.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid Authorization header starts with "Bearer " followed
            // by the JWT.  Anything else is rejected outright.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Parse with HS256 and our secret; tokens signed with any other
            // method are rejected.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            // Store the subject and role claims as strings so handlers can
            // build an actor reference without re-parsing the token.
            c.Set("actor_id", claimString(claims, "sub"))
            c.Set("actor_type", claimString(claims, "role"))
            return next(c)
        }
    }
}

// claimString renders a claim value as a string, tolerating numeric
// subjects issued by older token versions.
func claimString(claims jwt.MapClaims, key string) string {
    switch v := claims[key].(type) {
    case string:
        return v
    case float64:
        return fmt.Sprintf("%.0f", v)
    }
    return ""
}
