package utilz_test

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/dsl"
)

func mustParse[T any](t *testing.T, s utilz.Schema[T], v any) T {
	t.Helper()
	out, err := s.Parse(context.Background(), v)
	require.NoError(t, err)
	return out
}

func fails[T any](t *testing.T, s utilz.Schema[T], v any) {
	t.Helper()
	_, err := s.Parse(context.Background(), v)
	assert.Error(t, err, "input %#v", v)
}

func TestCoerce_String(t *testing.T) {
	s := utilz.Coerce(dsl.String())

	assert.Equal(t, "foo", mustParse(t, s, "foo"))
	assert.Equal(t, "42", mustParse(t, s, 42))
	assert.Equal(t, "42", mustParse(t, s, big.NewInt(42)))
	assert.Equal(t, "true", mustParse(t, s, true))
	assert.Equal(t, "false", mustParse(t, s, false))
	assert.Equal(t, "null", mustParse(t, s, nil))

	assert.Equal(t, "{}", mustParse(t, s, map[string]any{}))
	assert.Equal(t, `{"foo":"foo"}`, mustParse(t, s, map[string]any{"foo": "foo"}))
	assert.Equal(t, "[]", mustParse(t, s, []any{}))
	assert.Equal(t, `["foo","bar"]`, mustParse(t, s, []any{"foo", "bar"}))
	assert.NotEmpty(t, mustParse(t, s, func() {}))
}

func TestCoerce_Number(t *testing.T) {
	s := utilz.Coerce(dsl.Float())

	assert.Equal(t, 42.0, mustParse(t, s, "42"))
	assert.Equal(t, 42.0, mustParse(t, s, 42))
	assert.Equal(t, 42.0, mustParse(t, s, big.NewInt(42)))
	assert.Equal(t, 1.0, mustParse(t, s, true))
	assert.Equal(t, 0.0, mustParse(t, s, false))

	for _, v := range []any{"foo", nil, map[string]any{}, map[string]any{"foo": "foo"}, []any{}, []any{"foo"}, func() {}} {
		fails(t, s, v)
	}
	assert.Equal(t, "Expected number, received nan", firstMessage(t, s, "foo"))
}

func TestCoerce_Int(t *testing.T) {
	s := utilz.Coerce(dsl.Int())

	assert.Equal(t, 42, mustParse(t, s, "42"))
	assert.Equal(t, 42, mustParse(t, s, 42.0))
	assert.Equal(t, 255, mustParse(t, s, "0xff"))
	fails(t, s, "4.2")
	assert.Equal(t, "Expected integer, received float", firstMessage(t, s, "4.2"))
}

func TestCoerce_BigInt(t *testing.T) {
	s := utilz.Coerce(dsl.BigInt())

	for in, want := range map[any]string{"42": "42", "42n": "42", 42: "42", true: "1", false: "0"} {
		assert.Equal(t, want, mustParse(t, s, in).String(), "input %#v", in)
	}
	n := big.NewInt(42)
	assert.Same(t, n, mustParse(t, s, n))

	for _, v := range []any{"foo", nil, map[string]any{}, []any{}, []any{"foo"}, func() {}} {
		fails(t, s, v)
	}
	assert.Equal(t, "Expected bigint, received string", firstMessage(t, s, "foo"))
}

func TestCoerce_Boolean(t *testing.T) {
	s := utilz.Coerce(dsl.Bool())

	assert.False(t, mustParse(t, s, "false"))
	assert.True(t, mustParse(t, s, "true"))
	assert.True(t, mustParse(t, s, "foo"))

	for _, v := range []any{false, 0, math.Copysign(0, -1), big.NewInt(0), "", nil, math.NaN()} {
		assert.False(t, mustParse(t, s, v), "input %#v", v)
	}
	for _, v := range []any{"foo", 42, big.NewInt(42), []any{}, map[string]any{}, func() {}} {
		assert.True(t, mustParse(t, s, v), "input %#v", v)
	}
}

func TestCoerce_Arrays(t *testing.T) {
	anyArr := utilz.Coerce(dsl.Slice(dsl.Var[any]("")))
	assert.Equal(t, []any{"foo"}, mustParse(t, anyArr, "foo"))
	assert.Equal(t, []any{42.0}, mustParse(t, anyArr, "42"))
	assert.Equal(t, []any{map[string]any{"foo": "foo"}}, mustParse(t, anyArr, map[string]any{"foo": "foo"}))
	assert.Equal(t, []any{}, mustParse(t, anyArr, []any{}))

	strArr := utilz.Coerce(dsl.Slice(dsl.String()))
	assert.Equal(t, []string{"42"}, mustParse(t, strArr, 42))
	assert.Equal(t, []string{"null"}, mustParse(t, strArr, nil))
	assert.Equal(t, []string{"{}"}, mustParse(t, strArr, map[string]any{}))
	assert.Equal(t, []string{"foo", "42"}, mustParse(t, strArr, []any{"foo", "42"}))

	numArr := utilz.Coerce(dsl.Slice(dsl.Float()))
	assert.Equal(t, []float64{42}, mustParse(t, numArr, 42))
	assert.Equal(t, []float64{42}, mustParse(t, numArr, "42"))
	assert.Equal(t, []float64{}, mustParse(t, numArr, []any{}))
	assert.Equal(t, []float64{42, 42}, mustParse(t, numArr, []any{"42", 42}))
	fails(t, numArr, []any{"foo", "42"})
	res := utilz.SafeParse(context.Background(), numArr, "foo")
	require.False(t, res.Success)
	assert.Equal(t, "Expected number, received nan", res.Error[0].Message)
	assert.Equal(t, "/0", res.Error[0].Path)

	bigArr := utilz.Coerce(dsl.Slice(dsl.BigInt()))
	nums := mustParse(t, bigArr, []any{"42", "42n"})
	require.Len(t, nums, 2)
	assert.Zero(t, nums[0].Cmp(big.NewInt(42)))
	assert.Zero(t, nums[1].Cmp(big.NewInt(42)))
	fails(t, bigArr, []any{"foo", "42"})

	boolArr := utilz.Coerce(dsl.Slice(dsl.Bool()))
	assert.Equal(t, []bool{false}, mustParse(t, boolArr, nil))
	assert.Equal(t, []bool{true, false}, mustParse(t, boolArr, []any{"foo", "false"}))
	assert.Equal(t, []bool{}, mustParse(t, boolArr, []any{}))
}

func TestCoerce_Date(t *testing.T) {
	s := utilz.Coerce(dsl.Time())

	want := time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(mustParse(t, s, "2023-01-13")))
	assert.True(t, want.Equal(mustParse(t, s, want.UnixMilli())))
	fails(t, s, "not a date")
}

func TestCoerce_LiteralAndNull(t *testing.T) {
	lit := utilz.Coerce(dsl.Literal(42.0))
	assert.Equal(t, 42.0, mustParse(t, lit, "42"))
	fails(t, lit, "43")

	flag := utilz.Coerce(dsl.Literal(true))
	assert.True(t, mustParse(t, flag, "true"))

	null := utilz.Coerce(dsl.Null())
	assert.Nil(t, mustParse(t, null, "null"))
	fails(t, null, "foo")
}

type Filter struct {
	Query string     `json:"q" validate:"required"`
	Limit int        `json:"limit" validate:"lte=100"`
	Tags  []string   `json:"tags"`
	Since *time.Time `json:"since"`
}

func TestCoerce_Object(t *testing.T) {
	s := utilz.CoerceObject[Filter](dsl.Struct[Filter]())

	out := mustParse[Filter](t, s, map[string]any{"q": 42, "limit": "10", "tags": "solo", "extra": true})
	assert.Equal(t, "42", out.Query)
	assert.Equal(t, 10, out.Limit)
	assert.Equal(t, []string{"solo"}, out.Tags)
	assert.Nil(t, out.Since)

	out = mustParse[Filter](t, s, `{"q":"x","since":"2024-02-01"}`)
	require.NotNil(t, out.Since)
	assert.Equal(t, 2024, out.Since.Year())

	assert.Equal(t, []string{"q", "limit", "tags", "since"}, s.Keys())
	assert.Equal(t, utilz.UnknownStrip, s.UnknownPolicy())
}

func TestCoerce_StrictObjectKeepsUnknownKeys(t *testing.T) {
	s := utilz.CoerceObject[Filter](dsl.Struct[Filter](dsl.Strict()))
	res := utilz.SafeParse[Filter](context.Background(), s, map[string]any{"q": "x", "extra": 1})
	require.False(t, res.Success)
	assert.Equal(t, utilz.CodeUnknownKey, res.Error[0].Code)
	assert.Equal(t, "/extra", res.Error[0].Path)
}
