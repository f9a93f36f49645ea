package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/model"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxUserID).(int64)
	return id, ok && id > 0
}

// Role returns the authenticated user's role stored by JWTAuth.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(ctxRole).(string)
	return model.Role(r)
}

// rateKeyUser identifies the caller for rate limiting, "anon" before
// authentication.
func rateKeyUser(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return model.IDFromInt(id).String()
	}
	return "anon"
}
