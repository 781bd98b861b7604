package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerTokenKey = "bearer_token"

// BearerAuth copies the bearer credential from the Authorization header onto the context.
// It never rejects a request; the service decides what a missing or bad token means.
func BearerAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := parseBearer(c.Request().Header.Get(echo.HeaderAuthorization)); token != "" {
				c.Set(bearerTokenKey, token)
			}
			return next(c)
		}
	}
}

func BearerToken(c echo.Context) string {
	token, _ := c.Get(bearerTokenKey).(string)
	return token
}

func parseBearer(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
