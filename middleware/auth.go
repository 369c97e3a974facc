package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/recipeapi/session"
)

// RequireUser returns an Echo middleware that rejects requests without a
// session user, except for the given public route paths. It must run after
// the session loader and after routing so c.Path() is the matched route.
func RequireUser(public ...string) echo.MiddlewareFunc {
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := open[c.Path()]; ok {
				return next(c)
			}
			if _, ok := session.UserID(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized)
			}
			return next(c)
		}
	}
}
