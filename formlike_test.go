package utilz_test

import (
	"context"
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/dsl"
)

type Search struct {
	ManyStrings      []string  `json:"manyStrings" validate:"min=1"`
	ManyNumbers      []float64 `json:"manyNumbers" validate:"min=1"`
	OneStringInArray []string  `json:"oneStringInArray" validate:"len=1"`
	OneNumberInArray []float64 `json:"oneNumberInArray" validate:"len=1"`
	StringMin1       string    `json:"stringMin1" validate:"min=1"`
	PosNumber        float64   `json:"posNumber" validate:"gt=0"`
	Range            float64   `json:"range" validate:"min=0,max=5"`
	Boolean          bool      `json:"boolean"`
	Date             time.Time `json:"date"`
	Object           struct {
		Foo string  `json:"foo"`
		Bar float64 `json:"bar"`
	} `json:"object"`
}

func codesByPath(iss utilz.Issues) map[string]string {
	out := map[string]string{}
	for _, it := range iss {
		out[it.Path] = it.Code
	}
	return out
}

func TestURLSearchParams_HappyPath(t *testing.T) {
	s := utilz.URLSearchParams(dsl.Struct[Search](), utilz.WithCoercion())
	q := url.Values{
		"oneStringInArray": {"Leeeeeeeeeroyyyyyyy Jenkiiiiiins!"},
		"oneNumberInArray": {"42"},
		"boolean":          {"true"},
		"stringMin1":       {"foo"},
		"posNumber":        {"42.42"},
		"range":            {"4"},
		"date":             {"2023-01-01"},
		"object":           {`{"foo":"foo","bar":42}`},
	}
	q.Add("manyStrings", "hello")
	q.Add("manyStrings", "world")
	q.Add("manyNumbers", "123")
	q.Add("manyNumbers", "456")

	res := utilz.SafeParse(context.Background(), s, q)
	require.True(t, res.Success, res.Error)

	got := res.Data
	assert.Equal(t, []string{"hello", "world"}, got.ManyStrings)
	assert.Equal(t, []float64{123, 456}, got.ManyNumbers)
	assert.Equal(t, []string{"Leeeeeeeeeroyyyyyyy Jenkiiiiiins!"}, got.OneStringInArray)
	assert.Equal(t, []float64{42}, got.OneNumberInArray)
	assert.Equal(t, "foo", got.StringMin1)
	assert.Equal(t, 42.42, got.PosNumber)
	assert.Equal(t, 4.0, got.Range)
	assert.True(t, got.Boolean)
	assert.True(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got.Date))
	assert.Equal(t, "foo", got.Object.Foo)
	assert.Equal(t, 42.0, got.Object.Bar)
}

func TestURLSearchParams_SadPath(t *testing.T) {
	s := utilz.URLSearchParams(dsl.Struct[Search](), utilz.WithCoercion())
	q := url.Values{
		"manyStrings":      {"hello"},
		"manyNumbers":      {"123"},
		"oneStringInArray": {"Leeeeeeeeeroyyyyyyy", "Jenkiiiiiins!"},
		"oneNumberInArray": {"foo"},
		"boolean":          {"0"},
		"stringMin1":       {""},
		"posNumber":        {"-42"},
		"range":            {"6"},
		"date":             {"0000-00-00"},
		"object":           {`{"foo":42,"bar":"foo"}`},
	}

	res := utilz.SafeParse(context.Background(), s, q)
	require.False(t, res.Success)

	flat := res.Error.Flatten()
	assert.Empty(t, flat.FormErrors)
	assert.NotContains(t, flat.FieldErrors, "boolean")
	assert.Equal(t, []string{"Expected number, received nan"}, flat.FieldErrors["oneNumberInArray"])
	assert.Equal(t, []string{"posNumber must be greater than 0"}, flat.FieldErrors["posNumber"])
	assert.Equal(t, []string{"range must be 5 or less"}, flat.FieldErrors["range"])
	assert.Equal(t, map[string]string{
		"/oneStringInArray":   utilz.CodeCustom,
		"/oneNumberInArray/0": utilz.CodeInvalidType,
		"/stringMin1":         utilz.CodeTooSmall,
		"/posNumber":          utilz.CodeTooSmall,
		"/range":              utilz.CodeTooBig,
		"/date":               utilz.CodeInvalidType,
		"/object/bar":         utilz.CodeInvalidType,
	}, codesByPath(res.Error))
	assert.Equal(t, []string{"Expected number, received nan"}, res.Error.Format().Field("object").Field("bar").Errors)
}

func TestURLSearchParams_JSONValues(t *testing.T) {
	s := utilz.URLSearchParams(userSchema)

	q, err := url.ParseQuery("name=foo&age=42")
	require.NoError(t, err)
	u, err := s.Parse(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, User{Name: "foo", Age: 42}, u)

	q, err = url.ParseQuery("name=42&age=42")
	require.NoError(t, err)
	assert.Equal(t, "Expected string, received number", firstMessage(t, s, q))

	withCoercion := utilz.URLSearchParams(userSchema, utilz.WithCoercion())
	u, err = withCoercion.Parse(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, User{Name: "42", Age: 42}, u)
}

func TestURLSearchParams_LargeIntegers(t *testing.T) {
	type Lookup struct {
		ID    int64   `json:"id"`
		Count uint64  `json:"count"`
		Score float64 `json:"score"`
	}
	q, err := url.ParseQuery("id=9007199254740993&count=18446744073709551615&score=9007199254740993")
	require.NoError(t, err)

	for _, opts := range [][]utilz.FormOption{nil, {utilz.WithCoercion()}} {
		v, err := utilz.URLSearchParams(dsl.Struct[Lookup](), opts...).Parse(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, int64(9007199254740993), v.ID)
		assert.Equal(t, uint64(18446744073709551615), v.Count)
		assert.Equal(t, 9007199254740992.0, v.Score)
	}

	q, err = url.ParseQuery("id=9223372036854775808")
	require.NoError(t, err)
	res := utilz.SafeParse(context.Background(), utilz.URLSearchParams(dsl.Struct[Lookup]()), q)
	require.False(t, res.Success)
	assert.Equal(t, "/id", res.Error[0].Path)
	assert.Equal(t, utilz.CodeTooBig, res.Error[0].Code)
}

func TestURLSearchParams_RepeatedKeys(t *testing.T) {
	type Tags struct {
		Tags []string `json:"tags"`
	}
	s := utilz.URLSearchParams(dsl.Struct[Tags]())

	q, err := url.ParseQuery("tags=a&tags=b")
	require.NoError(t, err)
	v, err := s.Parse(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Tags)

	q, err = url.ParseQuery("tags=a")
	require.NoError(t, err)
	assert.Equal(t, "Expected array, received string", firstMessage(t, s, q))
}

func TestURLSearchParams_URL(t *testing.T) {
	s := utilz.URLSearchParams(userSchema)
	u, err := url.Parse("https://example.com/users?name=foo&age=7")
	require.NoError(t, err)

	got, err := s.Parse(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, User{Name: "foo", Age: 7}, got)
}

func TestURLSearchParams_WrongInput(t *testing.T) {
	s := utilz.URLSearchParams(userSchema)
	for _, in := range []any{"name=foo", map[string]any{"name": "foo"}, nil, (*url.URL)(nil)} {
		res := utilz.SafeParse(context.Background(), s, in)
		require.False(t, res.Success)
		assert.Equal(t, []string{"Input not instance of url.Values"}, res.Error.Flatten().FormErrors)
	}
}

func TestURLSearchParams_UnknownKeys(t *testing.T) {
	q, err := url.ParseQuery("name=foo&age=1&extra=1")
	require.NoError(t, err)

	u, err := utilz.URLSearchParams(userSchema).Parse(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, User{Name: "foo", Age: 1}, u)

	res := utilz.SafeParse(context.Background(), utilz.URLSearchParams(dsl.Struct[User](dsl.Strict())), q)
	require.False(t, res.Success)
	require.Len(t, res.Error, 1)
	assert.Equal(t, "/extra", res.Error[0].Path)
	assert.Equal(t, utilz.CodeUnknownKey, res.Error[0].Code)
	assert.Equal(t, "Unrecognized key: extra", res.Error[0].Message)
}

type Upload struct {
	Title string                `json:"title" validate:"required"`
	File  *multipart.FileHeader `json:"file" validate:"required"`
}

func TestFormData(t *testing.T) {
	s := utilz.FormData(dsl.Struct[Upload]())
	fh := &multipart.FileHeader{Filename: "a.txt", Size: 3}
	form := &multipart.Form{
		Value: map[string][]string{"title": {"hello"}},
		File:  map[string][]*multipart.FileHeader{"file": {fh}},
	}

	got, err := s.Parse(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Title)
	assert.Same(t, fh, got.File)
}

func TestFormData_Issues(t *testing.T) {
	s := utilz.FormData(dsl.Struct[Upload]())

	form := &multipart.Form{Value: map[string][]string{"title": {"hello"}, "file": {"a.txt"}}}
	assert.Equal(t, "Input not instance of File", firstMessage(t, s, form))

	form = &multipart.Form{Value: map[string][]string{"title": {"hello"}}}
	res := utilz.SafeParse(context.Background(), s, form)
	require.False(t, res.Success)
	assert.Equal(t, utilz.CodeRequired, res.Error[0].Code)
	assert.Equal(t, "/file", res.Error[0].Path)

	assert.Equal(t, "Input not instance of multipart.Form", firstMessage(t, s, url.Values{}))
}
