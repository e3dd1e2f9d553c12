package diag

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
)

// BearerGuard validates an Auth0-issued manager token before admitting a
// request to any diagnostics route; terminal traffic never carries one
// and is never expected to reach this server.
type BearerGuard struct {
	validator *validator.Validator
}

// NewBearerGuard builds a BearerGuard against an Auth0 tenant domain/audience.
func NewBearerGuard(domain, audience string) (*BearerGuard, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	v, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}
	return &BearerGuard{validator: v}, nil
}

// Require is the echo middleware enforcing the bearer token.
func (g *BearerGuard) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			if _, err := g.validator.ValidateToken(c.Request().Context(), parts[1]); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			return next(c)
		}
	}
}
