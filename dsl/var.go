package dsl

import (
	"context"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/coerce"
	"github.com/reoring/utilz/i18n"
	"github.com/reoring/utilz/internal/decode"
)

// VarSchema validates a single value of type T with a validator tag such as
// "required,email" or "gte=0,lte=130".
type VarSchema[T any] struct {
	typ      reflect.Type
	engine   *Engine
	tag      string
	em       utilz.ErrorMap
	nullable bool
	check    func(v T, in any) utilz.Issues
	coercer  coerce.Func
}

// Var builds a single-value schema. tag may be empty.
func Var[T any](tag string, opts ...Option) *VarSchema[T] {
	var c config
	for _, o := range opts {
		o(&c)
	}
	if c.engine == nil {
		c.engine = Default()
	}
	return &VarSchema[T]{typ: reflect.TypeFor[T](), engine: c.engine, tag: tag, em: c.em}
}

func rules(rs []string) string { return strings.Join(rs, ",") }

// String accepts strings.
func String(rs ...string) *VarSchema[string] { return Var[string](rules(rs)) }

// Int accepts integral numbers that fit in an int.
func Int(rs ...string) *VarSchema[int] { return Var[int](rules(rs)) }

// Float accepts any finite or infinite number; NaN is rejected.
func Float(rs ...string) *VarSchema[float64] { return Var[float64](rules(rs)) }

// Bool accepts booleans.
func Bool() *VarSchema[bool] { return Var[bool]("") }

// BigInt accepts *big.Int values.
func BigInt() *VarSchema[*big.Int] { return Var[*big.Int]("") }

// Time accepts time.Time values.
func Time() *VarSchema[time.Time] { return Var[time.Time]("") }

// Enum accepts one of values.
func Enum[T ~string](values ...T) *VarSchema[T] {
	s := Var[T]("")
	options := lo.Map(values, func(v T, _ int) string { return string(v) })
	s.check = func(v T, in any) utilz.Issues {
		if lo.Contains(values, v) {
			return nil
		}
		quoted := lo.Map(options, func(o string, _ int) string { return "'" + o + "'" })
		return utilz.Issues{{
			Path:     "/",
			Code:     utilz.CodeInvalidEnum,
			Message:  i18n.T("invalid_enum", map[string]string{"options": strings.Join(quoted, " | "), "received": string(v)}),
			Input:    in,
			Received: string(v),
			Params:   map[string]any{"options": options},
		}}
	}
	return s
}

// Literal accepts exactly lit.
func Literal[T comparable](lit T) *VarSchema[T] {
	s := Var[T]("")
	expected := fmt.Sprint(lit)
	if b, err := json.Marshal(lit); err == nil {
		expected = string(b)
	}
	s.check = func(v T, in any) utilz.Issues {
		if v == lit {
			return nil
		}
		return utilz.Issues{{
			Path:     "/",
			Code:     utilz.CodeInvalidLiteral,
			Message:  i18n.T("invalid_literal", map[string]string{"expected": expected}),
			Input:    in,
			Expected: expected,
		}}
	}
	s.coercer = coerce.ToLiteral(lit)
	return s
}

// Null accepts only nil.
func Null() *VarSchema[any] {
	s := Var[any]("")
	s.nullable = true
	s.check = func(v any, in any) utilz.Issues {
		if v == nil {
			return nil
		}
		received := decode.ReceivedName(in)
		return utilz.Issues{{
			Path:     "/",
			Code:     utilz.CodeInvalidType,
			Message:  i18n.T("invalid_type", map[string]string{"expected": "null", "received": received}),
			Input:    in,
			Expected: "null",
			Received: received,
		}}
	}
	s.coercer = coerce.ToNull
	return s
}

// WithErrorMap returns a copy whose messages are rendered through em.
func (s *VarSchema[T]) WithErrorMap(em utilz.ErrorMap) *VarSchema[T] {
	cp := *s
	cp.em = em
	return &cp
}

// Parse decodes v into T and validates it.
func (s *VarSchema[T]) Parse(ctx context.Context, v any) (T, error) {
	var zero T
	if isNil(v) && !s.nullable {
		expected := decode.ExpectedName(s.typ)
		return zero, applyErrorMap(s.em, utilz.Issues{{
			Path:     "/",
			Code:     utilz.CodeInvalidType,
			Message:  i18n.T("invalid_type", map[string]string{"expected": expected, "received": "null"}),
			Expected: expected,
			Received: "null",
		}})
	}
	out, iss := decode.Into(s.typ, v, decode.Options{})
	if len(iss) > 0 {
		return zero, applyErrorMap(s.em, iss)
	}
	val, _ := out.Interface().(T)
	if iss := s.validate(ctx, val, v); len(iss) > 0 {
		return zero, applyErrorMap(s.em, iss)
	}
	return val, nil
}

// ValidateValue validates an already typed value.
func (s *VarSchema[T]) ValidateValue(ctx context.Context, v T) error {
	if iss := s.validate(ctx, v, v); len(iss) > 0 {
		return applyErrorMap(s.em, iss)
	}
	return nil
}

func (s *VarSchema[T]) validate(ctx context.Context, v T, in any) utilz.Issues {
	if s.tag != "" {
		if err := s.engine.validate.VarCtx(ctx, v, s.tag); err != nil {
			return s.engine.issuesOf(err, nil, utilz.Root())
		}
	}
	if s.check != nil {
		return s.check(v, in)
	}
	return nil
}

// Coercer returns the conversion Coerce applies. Literal and Null schemas
// convert toward their value; others follow T.
func (s *VarSchema[T]) Coercer() coerce.Func {
	if s.coercer != nil {
		return s.coercer
	}
	return coerce.Of[T]()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
