package coerce

import (
	"encoding/json"
	"math/big"
	"reflect"
	"time"

	"github.com/reoring/utilz/internal/structkey"
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	bigIntType     = reflect.TypeFor[big.Int]()
	jsonNumberType = reflect.TypeFor[json.Number]()
)

// Option tunes For.
type Option func(*options)

type options struct {
	keepUnknown bool
}

// KeepUnknown keeps keys the target struct does not declare (top level only).
func KeepUnknown() Option { return func(o *options) { o.keepUnknown = true } }

// For returns the coercer for target type t.
func For(t reflect.Type, opts ...Option) Func {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b := &builder{seen: map[reflect.Type]*Func{}}
	if t != nil && derefStruct(t) && o.keepUnknown {
		return b.object(deref(t), true)
	}
	return b.build(t)
}

// Of is For applied to T.
func Of[T any](opts ...Option) Func { return For(reflect.TypeFor[T](), opts...) }

type builder struct {
	// seen breaks cycles for recursive struct types.
	seen map[reflect.Type]*Func
}

func (b *builder) build(t reflect.Type) Func {
	if t == nil {
		return Noop
	}
	switch t {
	case timeType:
		return ToDate
	case bigIntType:
		return ToBigInt
	case jsonNumberType:
		return ToNumber
	}
	switch t.Kind() {
	case reflect.String:
		return ToString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ToInteger
	case reflect.Float32, reflect.Float64:
		return ToNumber
	case reflect.Bool:
		return ToBoolean
	case reflect.Pointer:
		inner := b.build(t.Elem())
		return func(v any) any {
			if v == nil {
				return nil
			}
			return inner(v)
		}
	case reflect.Slice:
		return ToArray(b.build(t.Elem()))
	case reflect.Array:
		item := b.build(t.Elem())
		items := make([]Func, t.Len())
		for i := range items {
			items[i] = item
		}
		return ToTuple(items)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Noop
		}
		return ToMap(b.build(t.Elem()))
	case reflect.Struct:
		return b.object(t, false)
	}
	return Noop
}

func (b *builder) object(t reflect.Type, keepUnknown bool) Func {
	if !keepUnknown {
		if fn, ok := b.seen[t]; ok {
			return func(v any) any { return (*fn)(v) }
		}
	}
	var fn Func
	if !keepUnknown {
		b.seen[t] = &fn
	}
	fs := structkey.Fields(t)
	fields := make(map[string]Func, len(fs))
	keys := make([]string, 0, len(fs))
	for _, f := range fs {
		fields[f.Key] = b.build(f.Type)
		keys = append(keys, f.Key)
	}
	fn = ToObject(fields, keys, keepUnknown)
	return fn
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func derefStruct(t reflect.Type) bool {
	t = deref(t)
	return t.Kind() == reflect.Struct && t != timeType && t != bigIntType
}
