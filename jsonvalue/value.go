// Package jsonvalue validates JSON-compatible values: strings, finite numbers,
// booleans, nil, and slices or string-keyed maps of those.
package jsonvalue

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"sort"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/i18n"
	"github.com/reoring/utilz/internal/decode"
)

// JSON returns a schema accepting any JSON-compatible value. The value is
// returned as given.
//
//	jsonvalue.JSON().Parse(ctx, map[string]any{"a": "deeply", "nested": []any{"JSON", "object"}})
func JSON() utilz.Schema[any] { return utilz.SchemaFunc[any](parseJSONValue) }

func parseJSONValue(_ context.Context, v any) (any, error) {
	if iss := check(v, utilz.Root(), nil); len(iss) > 0 {
		return nil, iss
	}
	return v, nil
}

// check walks v. seen holds the maps and slices on the current branch; a
// value that contains itself is not JSON.
func check(v any, p utilz.PathRef, seen map[uintptr]bool) utilz.Issues {
	switch t := v.(type) {
	case nil, string, bool:
		return nil
	case json.Number:
		if _, err := t.Float64(); err != nil {
			return reject(v, p)
		}
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Bool:
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return reject(v, p)
		}
		return nil
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		// Pointers to scalars are how optional values are commonly built.
		if e := rv.Elem().Kind(); e == reflect.Struct {
			return reject(v, p)
		}
		return check(rv.Elem().Interface(), p, seen)
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return nil
			}
			if seen == nil {
				seen = map[uintptr]bool{}
			}
			ptr := rv.Pointer()
			if seen[ptr] && rv.Len() > 0 {
				return reject(v, p)
			}
			seen[ptr] = true
			defer delete(seen, ptr)
		}
		var iss utilz.Issues
		for i := 0; i < rv.Len(); i++ {
			iss = append(iss, check(rv.Index(i).Interface(), p.Index(i), seen)...)
		}
		return iss
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return reject(v, p)
		}
		if rv.IsNil() {
			return nil
		}
		if seen == nil {
			seen = map[uintptr]bool{}
		}
		ptr := rv.Pointer()
		if seen[ptr] {
			return reject(v, p)
		}
		seen[ptr] = true
		defer delete(seen, ptr)
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		var iss utilz.Issues
		for _, k := range keys {
			val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			iss = append(iss, check(val.Interface(), p.Field(k), seen)...)
		}
		return iss
	}
	return reject(v, p)
}

func reject(v any, p utilz.PathRef) utilz.Issues {
	received := decode.ReceivedName(v)
	return utilz.Issues{{
		Path:     p.Pointer(),
		Code:     utilz.CodeInvalidType,
		Message:  i18n.T("invalid_type", map[string]string{"expected": "json", "received": received}),
		Input:    v,
		Expected: "json",
		Received: received,
	}}
}
