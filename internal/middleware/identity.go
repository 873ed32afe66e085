package middleware

import "github.com/labstack/echo/v4"

// CtxUserID is the context key JWTAuth stores the member id under.
const CtxUserID = "user_id"

// UserID returns the authenticated member id, or "" when the request
// carries no verified identity.
func UserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok {
		return s
	}
	return ""
}

func userOrAnon(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
