package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"timechart/core/constants"
	"timechart/core/controller"
	"timechart/core/errors"
	"timechart/core/utils"
)

type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware guards the private admin API with a bearer JWT.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return controller.NewErrorResponse(401, errors.ErrMissingAuthorizationHeader, "missing authorization header")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(401, errors.ErrInvalidTokenFormat, "invalid authorization header")
			}
			tokenData, err := utils.ParseToken(parts[1])
			if err != nil {
				return controller.NewErrorResponse(401, errors.ErrUnauthorized, "invalid or expired token")
			}
			if tokenData.Scope != constants.ScopeTokenAdmin {
				return controller.NewErrorResponse(403, errors.ErrForbidden, "insufficient scope")
			}
			c.Set(constants.ContextTokenData, tokenData)
			return next(c)
		}
	}
}
