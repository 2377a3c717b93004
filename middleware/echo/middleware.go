package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/reoring/utilz"
	"github.com/reoring/utilz/middleware"
)

// Query parses the query string via schema s, stores the value in context on
// success, or returns 400 with the issues when validation fails.
func Query[T any](s utilz.ObjectSchema[T], opts ...middleware.Option) echo.MiddlewareFunc {
	return bind(func(c echo.Context) (T, error) { return middleware.DecodeQuery(c.Request(), s, opts...) })
}

// Form is Query for urlencoded and multipart bodies.
func Form[T any](s utilz.ObjectSchema[T], opts ...middleware.Option) echo.MiddlewareFunc {
	return bind(func(c echo.Context) (T, error) { return middleware.DecodeForm(c.Request(), s, opts...) })
}

func bind[T any](parse func(echo.Context) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v, err := parse(c)
			if err != nil {
				if iss, ok := utilz.AsIssues(err); ok {
					return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				}
				return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
			}
			ctx := middleware.ContextWithValue(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Get fetches the parsed value from echo.Context.
func Get[T any](c echo.Context) (T, bool) {
	return middleware.FromContext[T](c.Request().Context())
}
