package dsl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/internal/decode"
	"github.com/reoring/utilz/internal/structkey"
)

// StructSchema validates records against the struct type T: input is decoded
// into T and then checked by the engine's `validate` tags.
type StructSchema[T any] struct {
	typ     reflect.Type
	engine  *Engine
	unknown utilz.UnknownPolicy
	em      utilz.ErrorMap
	refines []func(ctx context.Context, v T) error
	fields  []structkey.Field
}

// Option configures a schema. Strict and Passthrough only affect structs.
type Option func(*config)

type config struct {
	engine  *Engine
	unknown utilz.UnknownPolicy
	em      utilz.ErrorMap
}

// Strict rejects unknown keys with unknown_key issues.
func Strict() Option { return func(c *config) { c.unknown = utilz.UnknownStrict } }

// Passthrough keeps unknown keys. They are not part of T, so this only
// affects coercion and the form helpers, which forward every key.
func Passthrough() Option {
	return func(c *config) { c.unknown = utilz.UnknownPassthrough }
}

// WithEngine validates with e instead of Default().
func WithEngine(e *Engine) Option { return func(c *config) { c.engine = e } }

// WithErrorMap renders every issue message through em.
func WithErrorMap(em utilz.ErrorMap) Option { return func(c *config) { c.em = em } }

// Struct builds a schema for struct type T. It panics when T is not a struct.
//
//	type User struct {
//	    Name string `json:"name" validate:"required"`
//	    Age  int    `json:"age" validate:"gte=0"`
//	}
//	s := dsl.Struct[User](dsl.Strict())
func Struct[T any](opts ...Option) *StructSchema[T] {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("dsl: Struct requires a struct type, got %s", typ))
	}
	var c config
	for _, o := range opts {
		o(&c)
	}
	if c.engine == nil {
		c.engine = Default()
	}
	return &StructSchema[T]{
		typ:     typ,
		engine:  c.engine,
		unknown: c.unknown,
		em:      c.em,
		fields:  structkey.Fields(typ),
	}
}

// Refine adds a check that runs on the decoded value once every field passed.
// Returned Issues keep their paths; any other error becomes a form-level
// custom issue.
func (s *StructSchema[T]) Refine(fn func(ctx context.Context, v T) error) *StructSchema[T] {
	cp := *s
	cp.refines = append(append([]func(context.Context, T) error{}, s.refines...), fn)
	return &cp
}

// Parse decodes v into T and validates it.
func (s *StructSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	return s.parse(ctx, v, nil)
}

// ParseExcept is Parse with the given keys neither decoded nor validated.
func (s *StructSchema[T]) ParseExcept(ctx context.Context, v any, keys ...string) (T, error) {
	return s.parse(ctx, v, keys)
}

// ValidateValue validates an already typed value.
func (s *StructSchema[T]) ValidateValue(ctx context.Context, v T) error {
	iss := s.validate(ctx, &v, nil)
	if len(iss) == 0 {
		iss = s.refine(ctx, v)
	}
	if len(iss) > 0 {
		return s.mapped(iss)
	}
	return nil
}

// Keys lists the JSON keys of T in declaration order.
func (s *StructSchema[T]) Keys() []string {
	return lo.Map(s.fields, func(f structkey.Field, _ int) string { return f.Key })
}

// UnknownPolicy reports how unknown keys are handled.
func (s *StructSchema[T]) UnknownPolicy() utilz.UnknownPolicy { return s.unknown }

func (s *StructSchema[T]) parse(ctx context.Context, v any, skip []string) (T, error) {
	var zero T
	if p, ok := v.(*T); ok {
		if p == nil {
			v = nil
		} else {
			v = *p
		}
	}
	out, iss := decode.Into(s.typ, v, decode.Options{Unknown: s.unknown, Skip: skip})
	if root := lo.Filter(iss, func(it utilz.Issue, _ int) bool { return it.Path == "/" }); len(root) > 0 {
		return zero, s.mapped(iss)
	}
	val := out.Addr().Interface().(*T)
	iss = append(iss, s.validate(ctx, val, append(decode.Failed(iss), skip...))...)
	if len(iss) == 0 {
		iss = s.refine(ctx, *val)
	}
	if len(iss) > 0 {
		return zero, s.mapped(iss)
	}
	return *val, nil
}

// validate runs the struct tags, skipping fields addressed by keys.
func (s *StructSchema[T]) validate(ctx context.Context, v *T, keys []string) utilz.Issues {
	var err error
	if len(keys) == 0 {
		err = s.engine.validate.StructCtx(ctx, v)
	} else {
		except := lo.FilterMap(s.fields, func(f structkey.Field, _ int) (string, bool) {
			return structkey.GoPath(s.typ, f), lo.Contains(keys, f.Key)
		})
		err = s.engine.validate.StructExceptCtx(ctx, v, except...)
	}
	if err == nil {
		return nil
	}
	return s.engine.issuesOf(err, s.typ, utilz.Root())
}

func (s *StructSchema[T]) refine(ctx context.Context, v T) utilz.Issues {
	var out utilz.Issues
	for _, fn := range s.refines {
		err := fn(ctx, v)
		if err == nil {
			continue
		}
		if iss, ok := utilz.AsIssues(err); ok {
			out = append(out, iss...)
			continue
		}
		out = append(out, utilz.Issue{Path: "/", Code: utilz.CodeCustom, Message: err.Error(), Cause: err})
	}
	return out
}

func (s *StructSchema[T]) mapped(iss utilz.Issues) utilz.Issues { return applyErrorMap(s.em, iss) }

func applyErrorMap(em utilz.ErrorMap, iss utilz.Issues) utilz.Issues {
	if em == nil {
		return iss
	}
	out := make(utilz.Issues, len(iss))
	for i, it := range iss {
		it.Message = em(it, utilz.ErrorMapContext{Data: it.Input, DefaultError: it.Message})
		out[i] = it
	}
	return out
}

// JSONSchema reflects T into a JSON Schema. Properties use the same keys as
// issue paths; strict schemas forbid additional properties.
func (s *StructSchema[T]) JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: s.unknown != utilz.UnknownStrict,
		Mapper:                    mapType,
	}
	js := r.ReflectFromType(s.typ)
	applyConstraints(js, s.typ)
	return js
}
