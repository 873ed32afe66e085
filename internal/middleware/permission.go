package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PermissionChecker answers whether a member holds a permission key.
// Implementations must fail closed.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, key string) bool
}

// RequirePermission rejects the request with 403 unless the authenticated
// member holds key.  It must run after JWTAuth.
func RequirePermission(pc PermissionChecker, key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == "" || !pc.HasPermission(c.Request().Context(), uid, key) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "permission": key})
			}
			return next(c)
		}
	}
}
