package jsonvalue_test

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/jsonvalue"
)

func TestJSON_Primitives(t *testing.T) {
	s := jsonvalue.JSON()
	for _, v := range []any{"foo", 42, 8675309, 1.5, true, false, nil, uint8(1)} {
		got, err := s.Parse(context.Background(), v)
		require.NoError(t, err, v)
		assert.Equal(t, v, got)
	}
}

func TestJSON_Rejects(t *testing.T) {
	s := jsonvalue.JSON()
	for name, v := range map[string]any{
		"bigint":   big.NewInt(42),
		"date":     time.Now(),
		"func":     func() {},
		"nan":      math.NaN(),
		"infinity": math.Inf(1),
		"intKeys":  map[int]any{1: "a"},
		"channel":  make(chan int),
	} {
		res := utilz.SafeParse(context.Background(), s, v)
		require.False(t, res.Success, name)
		assert.Equal(t, utilz.CodeInvalidType, res.Error[0].Code, name)
		assert.Equal(t, "json", res.Error[0].Expected, name)
	}
	assert.Equal(t, "Expected json, received bigint", utilz.GetErrorMessage(utilz.SafeParse(context.Background(), s, big.NewInt(1))))
}

func TestJSON_Nested(t *testing.T) {
	s := jsonvalue.JSON()
	nested := map[string]any{"one": []any{"two", map[string]any{"three": 4}}}
	got, err := s.Parse(context.Background(), nested)
	require.NoError(t, err)
	assert.Equal(t, nested, got)

	_, err = s.Parse(context.Background(), map[string]any{"a": "deeply", "nested": []any{"JSON", math.NaN(), map[string]any{"t": time.Time{}}}})
	iss, ok := utilz.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, "/nested/1", iss[0].Path)
	assert.Equal(t, "/nested/2/t", iss[1].Path)
}

func TestJSON_Pointers(t *testing.T) {
	s := jsonvalue.JSON()
	n := 3
	_, err := s.Parse(context.Background(), &n)
	assert.NoError(t, err)
	_, err = s.Parse(context.Background(), (*int)(nil))
	assert.NoError(t, err)

	type point struct{ X int }
	_, err = s.Parse(context.Background(), &point{X: 1})
	assert.Error(t, err)
}

func TestJSON_Cycles(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	_, err := jsonvalue.JSON().Parse(context.Background(), m)
	iss, ok := utilz.AsIssues(err)
	require.True(t, ok)
	assert.Equal(t, "/self", iss[0].Path)

	shared := []any{1}
	_, err = jsonvalue.JSON().Parse(context.Background(), map[string]any{"a": shared, "b": shared})
	assert.NoError(t, err)
}
