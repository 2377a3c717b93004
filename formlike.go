package utilz

import (
	"context"
	"mime/multipart"
	"net/url"
	"sort"

	"github.com/samber/lo"

	"github.com/reoring/utilz/coerce"
)

// FormOption tunes URLSearchParams and FormData.
type FormOption func(*formOptions)

type formOptions struct {
	coerce bool
}

// WithCoercion pipes the decoded record through Coerce before validation, so
// that "42" reaches a string field as a string instead of a number.
func WithCoercion() FormOption { return func(o *formOptions) { o.coerce = true } }

// URLSearchParams returns a schema that accepts url.Values (or a *url.URL,
// whose query is used) and validates the decoded record with s.
//
// Every value is JSON-decoded when possible ("42" -> 42, "false" -> false)
// and kept as a string otherwise. Repeated keys become arrays.
//
//	s := utilz.URLSearchParams(dsl.Struct[Query]())
//	q, err := s.Parse(ctx, r.URL.Query())
func URLSearchParams[T any](s ObjectSchema[T], opts ...FormOption) ObjectSchema[T] {
	return newFormLike(s, "url.Values", func(v any) (map[string][]any, bool) {
		var vals url.Values
		switch t := v.(type) {
		case url.Values:
			vals = t
		case *url.URL:
			if t == nil {
				return nil, false
			}
			vals = t.Query()
		default:
			return nil, false
		}
		out := make(map[string][]any, len(vals))
		for k, vs := range vals {
			out[k] = lo.Map(vs, func(s string, _ int) any { return s })
		}
		return out, true
	}, opts)
}

// FormData returns a schema that accepts a *multipart.Form. Text values are
// decoded like URLSearchParams; files are passed as *multipart.FileHeader.
func FormData[T any](s ObjectSchema[T], opts ...FormOption) ObjectSchema[T] {
	return newFormLike(s, "multipart.Form", func(v any) (map[string][]any, bool) {
		form, ok := v.(*multipart.Form)
		if !ok || form == nil {
			return nil, false
		}
		out := make(map[string][]any, len(form.Value)+len(form.File))
		for k, vs := range form.Value {
			out[k] = lo.Map(vs, func(s string, _ int) any { return s })
		}
		for k, fhs := range form.File {
			out[k] = append(out[k], lo.Map(fhs, func(fh *multipart.FileHeader, _ int) any { return fh })...)
		}
		return out, true
	}, opts)
}

type formLike[T any] struct {
	inner    ObjectSchema[T]
	instance string
	extract  func(any) (map[string][]any, bool)
	fn       coerce.Func
}

func newFormLike[T any](s ObjectSchema[T], instance string, extract func(any) (map[string][]any, bool), opts []FormOption) *formLike[T] {
	var o formOptions
	for _, opt := range opts {
		opt(&o)
	}
	f := &formLike[T]{inner: s, instance: instance, extract: extract, fn: coerce.Noop}
	if o.coerce {
		f.fn = coercerFor[T](s)
	}
	return f
}

func (f *formLike[T]) Parse(ctx context.Context, v any) (T, error) {
	rec, err := f.record(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.inner.Parse(ctx, f.fn(rec))
}

func (f *formLike[T]) ParseExcept(ctx context.Context, v any, keys ...string) (T, error) {
	// PartialSafeParse hands back the already decoded record.
	if rec, ok := v.(map[string]any); ok {
		return f.inner.ParseExcept(ctx, f.fn(rec), keys...)
	}
	rec, err := f.record(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.inner.ParseExcept(ctx, f.fn(rec), keys...)
}

func (f *formLike[T]) Keys() []string               { return f.inner.Keys() }
func (f *formLike[T]) UnknownPolicy() UnknownPolicy { return f.inner.UnknownPolicy() }

// Record exposes the decoded record for v, which PartialSafeParse uses to split
// valid and invalid input.
func (f *formLike[T]) Record(v any) (map[string]any, error) { return f.record(v) }

func (f *formLike[T]) record(v any) (map[string]any, error) {
	values, ok := f.extract(v)
	if !ok {
		return nil, Issues{{
			Path:     "/",
			Code:     CodeInvalidType,
			Message:  "Input not instance of " + f.instance,
			Input:    v,
			Expected: f.instance,
		}}
	}
	keys := lo.Keys(values)
	if f.inner.UnknownPolicy() == UnknownStrip {
		keys = lo.Filter(f.inner.Keys(), func(k string, _ int) bool {
			_, ok := values[k]
			return ok
		})
	}
	sort.Strings(keys)
	rec := make(map[string]any, len(keys))
	for _, k := range keys {
		items := lo.Map(values[k], func(item any, _ int) any {
			if s, ok := item.(string); ok {
				return coerce.ParseJSONOr(s)
			}
			return item
		})
		switch len(items) {
		case 0:
		case 1:
			rec[k] = items[0]
		default:
			rec[k] = items
		}
	}
	return rec, nil
}
