package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"supportdesk/internal/auth"
	"supportdesk/internal/common"
)

// AuthMiddleware resolves the tenant context for every protected request and
// attaches it to the request context before any handler runs.
type AuthMiddleware struct {
	resolver *auth.Resolver
}

func NewAuthMiddleware(resolver *auth.Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireTenantContext authenticates the request. Resolution failures are
// application errors mapped to status codes by the edge error handler.
func (m *AuthMiddleware) RequireTenantContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			tc, err := m.resolver.ResolveTenantContext(ctx, c.Request().Header)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(common.WithTenantContext(ctx, tc)))
			return next(c)
		}
	}
}

// RequireUser authenticates the request but does not demand an active
// organization. It attaches only the user id; routes that need tenant data
// must use RequireTenantContext instead.
func (m *AuthMiddleware) RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			userID, err := m.resolver.ResolveUserIdentity(ctx, c.Request().Header)
			if err != nil {
				return err
			}

			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, common.UserIDKey, userID)))
			return next(c)
		}
	}
}
