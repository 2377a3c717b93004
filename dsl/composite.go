package dsl

import (
	"context"
	"reflect"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/coerce"
	"github.com/reoring/utilz/i18n"
	"github.com/reoring/utilz/internal/decode"
)

// SliceSchema parses every element with an item schema, then checks the
// slice itself against a validator tag ("min=1", "max=10", "unique").
type SliceSchema[T any] struct {
	item   utilz.Schema[T]
	engine *Engine
	tag    string
	em     utilz.ErrorMap
}

// Slice builds a schema for []T checked by Default().
func Slice[T any](item utilz.Schema[T], rs ...string) *SliceSchema[T] {
	return SliceOf(item, rules(rs))
}

// SliceOf is Slice with a single tag and options. WithEngine selects the
// validator for the slice-level tag and WithErrorMap renders slice-level
// messages.
func SliceOf[T any](item utilz.Schema[T], tag string, opts ...Option) *SliceSchema[T] {
	var c config
	for _, o := range opts {
		o(&c)
	}
	if c.engine == nil {
		c.engine = Default()
	}
	return &SliceSchema[T]{item: item, engine: c.engine, tag: tag, em: c.em}
}

// Parse validates v element by element. Element issues are located at their
// index.
func (s *SliceSchema[T]) Parse(ctx context.Context, v any) ([]T, error) {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		received := decode.ReceivedName(v)
		return nil, utilz.Issues{{
			Path:     "/",
			Code:     utilz.CodeInvalidType,
			Message:  i18n.T("invalid_type", map[string]string{"expected": "array", "received": received}),
			Input:    v,
			Expected: "array",
			Received: received,
		}}
	}
	out := make([]T, rv.Len())
	var iss utilz.Issues
	for i := range out {
		item, err := s.item.Parse(ctx, rv.Index(i).Interface())
		if err == nil {
			out[i] = item
			continue
		}
		sub, ok := utilz.AsIssues(err)
		if !ok {
			sub = utilz.Issues{{Path: "/", Code: utilz.CodeCustom, Message: err.Error(), Cause: err}}
		}
		iss = append(iss, utilz.Root().Index(i).Prefix(sub)...)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if err := s.ValidateValue(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateValue checks the slice-level tag.
func (s *SliceSchema[T]) ValidateValue(ctx context.Context, v []T) error {
	if s.tag == "" {
		return nil
	}
	if err := s.engine.validate.VarCtx(ctx, v, s.tag); err != nil {
		return applyErrorMap(s.em, s.engine.issuesOf(err, nil, utilz.Root()))
	}
	return nil
}

// Coercer wraps non-array input into an array and coerces every element the
// way the item schema would.
func (s *SliceSchema[T]) Coercer() coerce.Func {
	return coerce.ToArray(coercerOf(s.item))
}

// OptionalSchema accepts nil (and absent values) in addition to what the
// wrapped schema accepts.
type OptionalSchema[T any] struct {
	inner utilz.Schema[T]
}

// Optional wraps s. The parsed value is nil for nil input.
func Optional[T any](s utilz.Schema[T]) *OptionalSchema[T] {
	return &OptionalSchema[T]{inner: s}
}

// Parse returns nil for nil input and a pointer to the inner result otherwise.
func (s *OptionalSchema[T]) Parse(ctx context.Context, v any) (*T, error) {
	if isNil(v) {
		return nil, nil
	}
	out, err := s.inner.Parse(ctx, v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Coercer keeps nil and otherwise coerces like the wrapped schema.
func (s *OptionalSchema[T]) Coercer() coerce.Func {
	inner := coercerOf(s.inner)
	return func(v any) any {
		if v == nil {
			return nil
		}
		return inner(v)
	}
}

func coercerOf[T any](s utilz.Schema[T]) coerce.Func {
	if c, ok := s.(utilz.Coercer); ok {
		return c.Coercer()
	}
	return coerce.Of[T]()
}
