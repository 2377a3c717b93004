package utilz

import (
	"context"

	"github.com/samber/lo"
)

// SuccessType describes how much of an object parsed.
type SuccessType string

const (
	SuccessFull    SuccessType = "full"
	SuccessPartial SuccessType = "partial"
	SuccessNone    SuccessType = "none"
)

// PartialResult is a Result that also reports which fields were usable.
type PartialResult[T any] struct {
	Result[T]
	SuccessType SuccessType
	// Partial holds the value parsed with the invalid fields skipped. On full
	// success it equals Data.
	Partial T
	// ValidData and InvalidData split the input record by key.
	ValidData   map[string]any
	InvalidData map[string]any
}

// PartialSafeParse returns the valid fields even when other fields failed.
//
//	res := utilz.PartialSafeParse(ctx, userSchema, map[string]any{"name": nil, "age": 42})
//	// res.SuccessType == "partial"
//	// res.ValidData   == {"age": 42}
//	// res.InvalidData == {"name": nil}
//	// res.Error.Flatten().FieldErrors == {"name": ["Expected string, received null"]}
//
// Form-level issues make the whole input unusable (SuccessType none).
func PartialSafeParse[T any](ctx context.Context, s ObjectSchema[T], input any) PartialResult[T] {
	rec := recordOf(s, input)
	res := SafeParse[T](ctx, s, input)
	if res.Success {
		return PartialResult[T]{
			Result:      res,
			SuccessType: SuccessFull,
			Partial:     res.Data,
			ValidData:   lo.Assign(map[string]any{}, rec),
			InvalidData: map[string]any{},
		}
	}

	flat := res.Error.Flatten()
	if len(flat.FormErrors) > 0 || rec == nil {
		return PartialResult[T]{
			Result:      res,
			SuccessType: SuccessNone,
			ValidData:   map[string]any{},
			InvalidData: map[string]any{},
		}
	}

	invalidKeys := flat.FieldKeys()
	validInput := lo.OmitByKeys(rec, invalidKeys)
	partial, err := s.ParseExcept(ctx, validInput, invalidKeys...)
	if err != nil {
		// The remaining fields depend on the rejected ones (cross-field rules).
		return PartialResult[T]{
			Result:      res,
			SuccessType: SuccessNone,
			ValidData:   map[string]any{},
			InvalidData: map[string]any{},
		}
	}
	return PartialResult[T]{
		Result:      res,
		SuccessType: SuccessPartial,
		Partial:     partial,
		ValidData:   validInput,
		InvalidData: lo.PickByKeys(rec, invalidKeys),
	}
}

// recordOf views the input as a keyed record. Schemas that decode their input
// into a record themselves (the form helpers) are asked for it.
func recordOf(s any, input any) map[string]any {
	if r, ok := s.(interface {
		Record(v any) (map[string]any, error)
	}); ok {
		rec, err := r.Record(input)
		if err != nil {
			return nil
		}
		return rec
	}
	m, _ := input.(map[string]any)
	return m
}
