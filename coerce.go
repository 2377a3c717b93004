package utilz

import (
	"context"

	"github.com/reoring/utilz/coerce"
)

// Coercer is implemented by schemas that know better than their Go type how
// loose input should be converted (null and literal schemas, for example).
type Coercer interface {
	Coercer() coerce.Func
}

// Coerce returns a schema that converts loosely typed input into the shape T
// expects before handing it to s. Conversion never fails on its own: values
// that cannot be converted reach s unchanged and are reported as usual.
//
//	n := utilz.Coerce(dsl.BigInt())
//	n.Parse(ctx, "42")  // 42
//	n.Parse(ctx, "42n") // 42
//	utilz.GetErrorMessage(utilz.SafeParse(ctx, n, "foo")) // Expected bigint, received string
func Coerce[T any](s Schema[T]) Schema[T] {
	return &coerced[T]{inner: s, fn: coercerFor(s)}
}

// CoerceObject is Coerce for object schemas; the result keeps the object
// capabilities so it can feed PartialSafeParse and the form helpers.
func CoerceObject[T any](s ObjectSchema[T]) ObjectSchema[T] {
	return &coercedObject[T]{coerced: coerced[T]{inner: s, fn: coercerFor[T](s)}, obj: s}
}

func coercerFor[T any](s Schema[T]) coerce.Func {
	if c, ok := s.(Coercer); ok {
		return c.Coercer()
	}
	if os, ok := s.(ObjectSchema[T]); ok && os.UnknownPolicy() != UnknownStrip {
		return coerce.Of[T](coerce.KeepUnknown())
	}
	return coerce.Of[T]()
}

type coerced[T any] struct {
	inner Schema[T]
	fn    coerce.Func
}

func (s *coerced[T]) Parse(ctx context.Context, v any) (T, error) {
	return s.inner.Parse(ctx, s.fn(v))
}

// Coercer exposes the composed conversion so that wrapping schemas reuse it.
func (s *coerced[T]) Coercer() coerce.Func { return s.fn }

type coercedObject[T any] struct {
	coerced[T]
	obj ObjectSchema[T]
}

func (s *coercedObject[T]) Keys() []string               { return s.obj.Keys() }
func (s *coercedObject[T]) UnknownPolicy() UnknownPolicy { return s.obj.UnknownPolicy() }

func (s *coercedObject[T]) ParseExcept(ctx context.Context, v any, keys ...string) (T, error) {
	return s.obj.ParseExcept(ctx, s.fn(v), keys...)
}
