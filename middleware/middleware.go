// Package middleware binds query strings, form bodies and chi route
// parameters to schemas for net/http handlers. Adapters for gin and echo live
// in the sub-modules.
package middleware

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/reoring/utilz"
)

// DefaultMaxMemory bounds the in-memory part of multipart bodies.
const DefaultMaxMemory = 32 << 20

// ctxKeyValue is a typed context key for storing parsed values.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyValue[T any] struct{}

// ContextWithValue attaches a parsed value to the context.
func ContextWithValue[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyValue[T]{}, v)
}

// FromContext retrieves the value stored by Query or Form.
func FromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyValue[T]{}).(T)
	return v, ok
}

// Option configures the middlewares.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	maxMemory int64
	form      []utilz.FormOption
}

// WithLogger logs rejected requests to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithMaxMemory overrides DefaultMaxMemory.
func WithMaxMemory(n int64) Option { return func(o *options) { o.maxMemory = n } }

// WithCoercion coerces decoded values toward the schema's types.
func WithCoercion() Option {
	return func(o *options) { o.form = append(o.form, utilz.WithCoercion()) }
}

func newOptions(opts []Option) options {
	o := options{maxMemory: DefaultMaxMemory}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Query validates r.URL.Query() with s. On success the value is available to
// the next handler through FromContext[T]; on failure the request is answered
// with 400 and an ErrorPayload.
func Query[T any](s utilz.ObjectSchema[T], opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return bind(o, func(r *http.Request) (T, error) { return decodeQuery(r, s, o) })
}

// Form validates the request body: multipart/form-data through FormData,
// everything else through URLSearchParams over r.PostForm.
func Form[T any](s utilz.ObjectSchema[T], opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return bind(o, func(r *http.Request) (T, error) { return decodeForm(r, s, o) })
}

// Path validates the route parameters chi matched. It must run after routing,
// so mount it with Router.With or inside Router.Route rather than Router.Use.
func Path[T any](s utilz.ObjectSchema[T], opts ...Option) func(http.Handler) http.Handler {
	o := newOptions(opts)
	return bind(o, func(r *http.Request) (T, error) { return decodePath(r, s, o) })
}

// DecodeQuery is the parsing half of Query, for routers with their own
// handler signature.
func DecodeQuery[T any](r *http.Request, s utilz.ObjectSchema[T], opts ...Option) (T, error) {
	return decodeQuery(r, s, newOptions(opts))
}

// DecodeForm is the parsing half of Form.
func DecodeForm[T any](r *http.Request, s utilz.ObjectSchema[T], opts ...Option) (T, error) {
	return decodeForm(r, s, newOptions(opts))
}

// DecodePath is the parsing half of Path.
func DecodePath[T any](r *http.Request, s utilz.ObjectSchema[T], opts ...Option) (T, error) {
	return decodePath(r, s, newOptions(opts))
}

func decodeQuery[T any](r *http.Request, s utilz.ObjectSchema[T], o options) (T, error) {
	return utilz.URLSearchParams(s, o.form...).Parse(r.Context(), r.URL.Query())
}

func decodeForm[T any](r *http.Request, s utilz.ObjectSchema[T], o options) (T, error) {
	var zero T
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		if err := r.ParseMultipartForm(o.maxMemory); err != nil {
			return zero, err
		}
		return utilz.FormData(s, o.form...).Parse(r.Context(), r.MultipartForm)
	}
	if err := r.ParseForm(); err != nil {
		return zero, err
	}
	return utilz.URLSearchParams(s, o.form...).Parse(r.Context(), r.PostForm)
}

func decodePath[T any](r *http.Request, s utilz.ObjectSchema[T], o options) (T, error) {
	vals := url.Values{}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		for i, k := range rc.URLParams.Keys {
			if i < len(rc.URLParams.Values) {
				vals.Add(k, rc.URLParams.Values[i])
			}
		}
	}
	return utilz.URLSearchParams(s, o.form...).Parse(r.Context(), vals)
}

func bind[T any](o options, parse func(*http.Request) (T, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, err := parse(r)
			if err != nil {
				iss, ok := utilz.AsIssues(err)
				if !ok {
					o.logger.WarnContext(r.Context(), "request body rejected", "method", r.Method, "path", r.URL.Path, "error", err)
					WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
					return
				}
				o.logger.InfoContext(r.Context(), "request validation failed", "method", r.Method, "path", r.URL.Path, "issues", len(iss))
				WriteJSON(w, http.StatusBadRequest, ErrorPayload(iss))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithValue(r.Context(), v)))
		})
	}
}

// Payload is the JSON body of a 400 response.
type Payload struct {
	Issues      []utilz.Issue       `json:"issues"`
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(iss utilz.Issues) Payload {
	flat := iss.Flatten()
	return Payload{Issues: iss, FormErrors: flat.FormErrors, FieldErrors: flat.FieldErrors}
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		status, b = http.StatusInternalServerError, []byte(`{"error":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
