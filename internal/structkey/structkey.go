// Package structkey resolves the external keys of struct fields. Every package
// that maps records onto structs uses it so that decoding, coercion and
// validator namespaces agree on naming.
package structkey

import (
	"reflect"
	"strings"
)

// Field is an exported struct field addressed by its external key.
type Field struct {
	Key   string
	Name  string // Go field name.
	Index []int
	Type  reflect.Type
}

// Resolve applies the repository-wide rule to resolve a struct field's
// external key.
// Priority: utilz:"name=..." > json tag name > field name; "-" disables the field.
func Resolve(sf reflect.StructField) string {
	if gt := sf.Tag.Get("utilz"); gt != "" {
		for _, p := range strings.Split(gt, ",") {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] == "" {
				return sf.Name
			}
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// Fields lists the keyed fields of struct type t in declaration order.
// Embedded structs without a key of their own are flattened.
func Fields(t reflect.Type) []Field {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if Flattened(sf) {
			for _, inner := range Fields(sf.Type) {
				inner.Index = append([]int{i}, inner.Index...)
				out = append(out, inner)
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		key := Resolve(sf)
		if key == "-" || key == "" {
			continue
		}
		out = append(out, Field{Key: key, Name: sf.Name, Index: []int{i}, Type: sf.Type})
	}
	return out
}

// Keys returns only the keys of Fields(t).
func Keys(t reflect.Type) []string {
	fs := Fields(t)
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}

// Flattened reports whether an embedded field contributes its own fields
// instead of a key.
func Flattened(sf reflect.StructField) bool {
	return sf.Anonymous && sf.Type.Kind() == reflect.Struct && sf.Tag.Get("json") == "" && sf.Tag.Get("utilz") == ""
}

// GoPath returns the dotted Go field path of f within t, the form validator
// uses for StructExcept.
func GoPath(t reflect.Type, f Field) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	parts := make([]string, len(f.Index))
	for i, ix := range f.Index {
		sf := t.Field(ix)
		parts[i] = sf.Name
		t = sf.Type
	}
	return strings.Join(parts, ".")
}
