package middleware_test

import (
	"bytes"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/utilz/dsl"
	"github.com/reoring/utilz/middleware"
)

type ListParams struct {
	Page int    `json:"page" validate:"gte=1"`
	Q    string `json:"q"`
}

type Signup struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gte=0"`
}

type Upload struct {
	Title string                `json:"title" validate:"required"`
	File  *multipart.FileHeader `json:"file" validate:"required"`
}

type UserPath struct {
	ID int `json:"id" validate:"gte=1"`
}

func echoValue[T any](t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := middleware.FromContext[T](r.Context())
		if !assert.True(t, ok) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, v)
	}
}

func newLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestQuery(t *testing.T) {
	logger, logs := newLogger()
	r := chi.NewRouter()
	r.With(middleware.Query(dsl.Struct[ListParams](), middleware.WithLogger(logger))).
		Get("/users", echoValue[ListParams](t))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/users?page=2&q=ann", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"page":2,"q":"ann"}`, rec.Body.String())
	assert.Empty(t, logs.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/users?page=0", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, map[string]any{"page": []any{"page must be 1 or greater"}}, body["fieldErrors"])
	assert.Equal(t, []any{}, body["formErrors"])
	issues, ok := body["issues"].([]any)
	require.True(t, ok)
	require.Len(t, issues, 1)
	assert.Equal(t, "/page", issues[0].(map[string]any)["path"])
	assert.Equal(t, "too_small", issues[0].(map[string]any)["code"])

	assert.Contains(t, logs.String(), `"msg":"request validation failed"`)
	assert.Contains(t, logs.String(), `"path":"/users"`)
}

func TestForm_URLEncoded(t *testing.T) {
	h := middleware.Form(dsl.Struct[Signup](), middleware.WithCoercion())(echoValue[Signup](t))

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("name=42&age=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"42","age":3}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("age=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(h, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"name": []any{"name is a required field"}}, decodeBody(t, rec)["fieldErrors"])
}

func TestForm_Multipart(t *testing.T) {
	h := middleware.Form(dsl.Struct[Upload](), middleware.WithMaxMemory(1<<20))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, ok := middleware.FromContext[Upload](r.Context())
			require.True(t, ok)
			middleware.WriteJSON(w, http.StatusOK, map[string]any{"title": v.Title, "file": v.File.Filename, "size": v.File.Size})
		}))

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "report"))
	fw, err := mw.CreateFormFile("file", "report.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte("a,b\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"title":"report","file":"report.csv","size":4}`, rec.Body.String())
}

func TestForm_MalformedBody(t *testing.T) {
	logger, logs := newLogger()
	h := middleware.Form(dsl.Struct[Signup](), middleware.WithLogger(logger))(echoValue[Signup](t))

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("name=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(h, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "error")
	assert.Contains(t, logs.String(), `"level":"WARN"`)
}

func TestPath(t *testing.T) {
	r := chi.NewRouter()
	r.With(middleware.Path(dsl.Struct[UserPath]())).Get("/users/{id}", echoValue[UserPath](t))

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":42}`, rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/users/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"id": []any{"Expected number, received string"}}, decodeBody(t, rec)["fieldErrors"])

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/users/0", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3", nil)
	v, err := middleware.DecodeQuery(req, dsl.Struct[ListParams]())
	require.NoError(t, err)
	assert.Equal(t, ListParams{Page: 3}, v)

	_, ok := middleware.FromContext[ListParams](req.Context())
	assert.False(t, ok)
}
