package decode

import (
	"encoding/json"
	"math"
	"math/big"
	"mime/multipart"
	"reflect"
	"time"
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	bigIntType     = reflect.TypeFor[big.Int]()
	jsonNumberType = reflect.TypeFor[json.Number]()
	fileHeaderType = reflect.TypeFor[multipart.FileHeader]()
)

// instanceNames lists struct types that are values in their own right rather
// than records. A mismatch reports "Input not instance of <name>".
var instanceNames = map[reflect.Type]string{
	fileHeaderType: "File",
}

// ReceivedName names the type of an input value the way issue messages do.
func ReceivedName(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		if math.IsNaN(t) {
			return "nan"
		}
		return "number"
	case float32:
		if math.IsNaN(float64(t)) {
			return "nan"
		}
		return "number"
	case json.Number:
		return "number"
	case *big.Int, big.Int:
		return "bigint"
	case time.Time, *time.Time:
		return "date"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		if name, ok := instanceNames[rv.Type().Elem()]; ok {
			return name
		}
		return ReceivedName(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Func:
		return "function"
	case reflect.Complex64, reflect.Complex128:
		return "complex"
	}
	return rv.Kind().String()
}

// ExpectedName names a target type.
func ExpectedName(t reflect.Type) string {
	switch t {
	case timeType:
		return "date"
	case bigIntType:
		return "bigint"
	case jsonNumberType:
		return "number"
	}
	if name, ok := instanceNames[t]; ok {
		return name
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Pointer:
		return ExpectedName(t.Elem())
	case reflect.Interface:
		return "any"
	}
	return t.Kind().String()
}
