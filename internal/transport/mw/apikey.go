package mw

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIKeyAuth authenticates webhook calls by the x-api-key header. Both sides
// are hashed before comparing so the comparison is constant time regardless
// of key length; a timing-dependent compare would leak the key byte by byte.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	expected := sha256.Sum256([]byte(apiKey))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := sha256.Sum256([]byte(c.Request().Header.Get("x-api-key")))
			if subtle.ConstantTimeCompare(expected[:], provided[:]) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}
			return next(c)
		}
	}
}
