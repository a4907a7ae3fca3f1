package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gymleague/core"
	"github.com/trezcool/gymleague/core/user"
)

// principalMiddleware resolves the token's subject to a known user.
func principalMiddleware(conf *core.Config, svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if iss := conf.Auth.Issuer; iss != "" && !claims.VerifyIssuer(iss, true) {
				return errInvalidIssuer
			}
			if _, err := getContextUser(ctx, svc); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if contextUser(ctx).IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
