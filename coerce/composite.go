package coerce

import (
	"reflect"
)

// ToArray coerces every element with item. A JSON array string is decoded
// first and a non-array value becomes a one-element array.
func ToArray(item Func) Func {
	if item == nil {
		item = Noop
	}
	return func(v any) any {
		if s, ok := v.(string); ok {
			v = ParseJSONOr(s)
		}
		elems, ok := elements(v)
		if !ok {
			return []any{item(v)}
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = item(e)
		}
		return out
	}
}

// ToTuple coerces element i with items[i]. Elements past the end of items are
// kept as they are.
func ToTuple(items []Func) Func {
	at := func(i int) Func {
		if i < len(items) && items[i] != nil {
			return items[i]
		}
		return Noop
	}
	return func(v any) any {
		if s, ok := v.(string); ok {
			v = ParseJSONOr(s)
		}
		elems, ok := elements(v)
		if !ok {
			elems = []any{v}
		}
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = at(i)(e)
		}
		return out
	}
}

// ToObject coerces the known keys of a record with their field coercers.
// keys lists the known keys. When keepUnknown is false only known keys survive;
// otherwise unknown keys are kept untouched. Absent keys stay absent.
func ToObject(fields map[string]Func, keys []string, keepUnknown bool) Func {
	return func(v any) any {
		if s, ok := v.(string); ok {
			v = ParseJSONOr(s)
		}
		rec, ok := record(v)
		if !ok {
			return v
		}
		out := make(map[string]any, len(rec))
		if keepUnknown {
			for k, val := range rec {
				if fn, ok := fields[k]; ok && fn != nil {
					out[k] = fn(val)
					continue
				}
				out[k] = val
			}
			return out
		}
		for _, k := range keys {
			val, ok := rec[k]
			if !ok {
				continue
			}
			if fn, ok := fields[k]; ok && fn != nil {
				val = fn(val)
			}
			out[k] = val
		}
		return out
	}
}

// ToMap coerces every value of a string-keyed record with elem.
func ToMap(elem Func) Func {
	if elem == nil {
		elem = Noop
	}
	return func(v any) any {
		if s, ok := v.(string); ok {
			v = ParseJSONOr(s)
		}
		rec, ok := record(v)
		if !ok {
			return v
		}
		out := make(map[string]any, len(rec))
		for k, val := range rec {
			out[k] = elem(val)
		}
		return out
	}
}

// elements returns the items of any slice or array value (strings and byte
// slices excluded).
func elements(v any) ([]any, bool) {
	if a, ok := v.([]any); ok {
		return a, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

// record returns v as a string-keyed map when it is one.
func record(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
