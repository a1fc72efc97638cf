package middleware

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"canteen/internal/auth"
	"canteen/internal/errors"
	"canteen/internal/model"
)

const claimsKey = "claims"

var (
	errUnauthorized = errors.NewHTTPError(http.StatusUnauthorized, "could not validate credentials", "UNAUTHORIZED")
	errForbidden    = errors.NewHTTPError(http.StatusForbidden, "not enough permissions", "FORBIDDEN")
)

// JWT authenticates bearer tokens and stores the parsed claims on the context.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(errUnauthorized.StatusCode, errUnauthorized.ToErrorResponse())
		},
		SuccessHandler: func(c echo.Context) {
			if token, ok := c.Get("user").(*jwt.Token); ok {
				if claims, ok := token.Claims.(*auth.Claims); ok {
					c.Set(claimsKey, claims)
				}
			}
		},
	})
}

// RejectRevoked must run after JWT. It refuses access tokens that were
// blacklisted on logout.
func RejectRevoked(tokens auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentClaims(c)
			if claims == nil || claims.ID == "" {
				return echo.NewHTTPError(errUnauthorized.StatusCode, errUnauthorized.ToErrorResponse())
			}
			revoked, _ := tokens.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if revoked {
				return echo.NewHTTPError(errUnauthorized.StatusCode, errUnauthorized.ToErrorResponse())
			}
			return next(c)
		}
	}
}

// RequireRole allows the request through only when the caller holds one of
// the given roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentClaims(c)
			if claims == nil {
				return echo.NewHTTPError(errUnauthorized.StatusCode, errUnauthorized.ToErrorResponse())
			}
			for _, r := range roles {
				if claims.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(errForbidden.StatusCode, errForbidden.ToErrorResponse())
		}
	}
}

// CurrentClaims returns the authenticated caller, or nil on public routes.
func CurrentClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}
