package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reoring/utilz"
	"github.com/reoring/utilz/middleware"
)

// Query parses the query string with schema s, stores the value in the
// request context, and on validation failure returns 400 with the issues
// payload.
func Query[T any](s utilz.ObjectSchema[T], opts ...middleware.Option) gin.HandlerFunc {
	return bind(func(c *gin.Context) (T, error) { return middleware.DecodeQuery(c.Request, s, opts...) })
}

// Form is Query for urlencoded and multipart bodies.
func Form[T any](s utilz.ObjectSchema[T], opts ...middleware.Option) gin.HandlerFunc {
	return bind(func(c *gin.Context) (T, error) { return middleware.DecodeForm(c.Request, s, opts...) })
}

func bind[T any](parse func(*gin.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := parse(c)
		if err != nil {
			if iss, ok := utilz.AsIssues(err); ok {
				c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithValue(c.Request.Context(), v))
		c.Next()
	}
}

// Get fetches the parsed value from gin.Context.
func Get[T any](c *gin.Context) (T, bool) {
	return middleware.FromContext[T](c.Request.Context())
}
