package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
)

// Func converts a single value. It must not panic and must not fail.
type Func func(any) any

// Noop returns v unchanged.
func Noop(v any) any { return v }

// ToString keeps strings and renders everything else as JSON, falling back to
// fmt formatting for values JSON cannot represent.
func ToString(v any) any {
	if s, ok := v.(string); ok {
		return s
	}
	if b, err := gojson.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprint(v)
}

// ToNumber converts v into a float64. Values with no numeric reading yield NaN.
func ToNumber(v any) any {
	f, ok := number(v)
	if !ok {
		return math.NaN()
	}
	return f
}

// ToInteger behaves like ToNumber but keeps integral strings exact so that
// large identifiers survive the trip into int64 fields.
func ToInteger(v any) any {
	if s, ok := v.(string); ok {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil {
			return u
		}
	}
	switch t := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return u
		}
	}
	return ToNumber(v)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		return parseNumber(t)
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case *big.Int:
		if t == nil {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(t).Float64()
		return f, true
	case time.Time:
		return float64(t.UnixMilli()), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// parseNumber reads a numeric string: surrounding space is ignored, the empty
// string is zero and 0x/0o/0b prefixes are honored.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		i, err := strconv.ParseInt(s, 0, 64)
		return float64(i), err == nil
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToBigInt converts v into a *big.Int. "42" and "42n" both read as 42.
// Non-integral input is returned unchanged.
func ToBigInt(v any) any {
	switch t := v.(type) {
	case *big.Int:
		return t
	case big.Int:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if digits, ok := strings.CutSuffix(s, "n"); ok {
			if n, ok := new(big.Int).SetString(digits, 10); ok && n.String()+"n" == s {
				return n
			}
			return v
		}
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return n
		}
	case json.Number:
		if n, ok := new(big.Int).SetString(t.String(), 10); ok {
			return n
		}
	}
	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return v
	}
	n, _ := big.NewFloat(f).Int(nil)
	return n
}

// ToBoolean reads "false", "0", "null" and "" as false. Other strings, and
// every non-string value, follow the usual truthiness rules.
func ToBoolean(v any) any {
	if b, ok := v.(bool); ok {
		return b
	}
	if s, ok := v.(string); ok {
		if parsed, ok := parseJSON(s); ok {
			return Truthy(parsed)
		}
	}
	return Truthy(v)
}

// Truthy reports whether v is truthy: nil, false, zero, NaN and the empty
// string are falsy, everything else (including empty collections) is truthy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case *big.Int:
		return t != nil && t.Sign() != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// ToNull decodes JSON strings so that "null" becomes nil.
func ToNull(v any) any {
	if s, ok := v.(string); ok {
		return ParseJSONOr(s)
	}
	return v
}

// ToLiteral picks the coercer matching the literal's own type.
func ToLiteral(lit any) Func {
	switch lit.(type) {
	case *big.Int, big.Int:
		return ToBigInt
	case bool:
		return ToBoolean
	case json.Number:
		return ToNumber
	}
	switch reflect.ValueOf(lit).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return ToNumber
	}
	return Noop
}
