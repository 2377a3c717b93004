package dsl

import (
	"encoding/json"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"

	"github.com/reoring/utilz/internal/structkey"
)

var bigIntType = reflect.TypeFor[big.Int]()

// mapType overrides reflection for types whose wire form is not their Go shape.
func mapType(t reflect.Type) *jsonschema.Schema {
	if deref(t) == bigIntType {
		return &jsonschema.Schema{Type: "integer"}
	}
	return nil
}

// tagFormats maps validator tags to JSON Schema formats.
var tagFormats = map[string]string{
	"email":    "email",
	"url":      "uri",
	"uri":      "uri",
	"uuid":     "uuid",
	"uuid4":    "uuid",
	"ipv4":     "ipv4",
	"ipv6":     "ipv6",
	"hostname": "hostname",
	"datetime": "date-time",
}

// applyConstraints renames properties to the keys used by issue paths and
// carries the `validate` tags that JSON Schema can express. Only `required`
// rules make a property required; the reflector's omitempty heuristic is
// dropped since decoding never demands a key.
func applyConstraints(js *jsonschema.Schema, t reflect.Type) {
	t = deref(t)
	if js == nil || js.Properties == nil || t.Kind() != reflect.Struct {
		return
	}
	props := jsonschema.NewProperties()
	var required []string
	for _, f := range structkey.Fields(t) {
		sf := t.FieldByIndex(f.Index)
		prop, ok := js.Properties.Get(jsonName(sf))
		if !ok {
			continue
		}
		for _, rule := range strings.Split(sf.Tag.Get("validate"), ",") {
			tag, param, _ := strings.Cut(rule, "=")
			if tag == "dive" {
				break
			}
			if applyRule(prop, deref(sf.Type), tag, param) && !lo.Contains(required, f.Key) {
				required = append(required, f.Key)
			}
		}
		switch ft := deref(sf.Type); ft.Kind() {
		case reflect.Struct:
			applyConstraints(prop, ft)
		case reflect.Slice, reflect.Array:
			applyConstraints(prop.Items, ft.Elem())
		}
		props.Set(f.Key, prop)
	}
	js.Properties = props
	js.Required = required
}

// applyRule reports whether the rule makes the property required.
func applyRule(s *jsonschema.Schema, t reflect.Type, tag, param string) bool {
	switch tag {
	case "required":
		return true
	case "omitempty":
		return false
	case "oneof":
		s.Enum = lo.Map(strings.Fields(param), func(v string, _ int) any { return v })
	case "min", "gte", "max", "lte", "len", "gt", "lt":
		switch t.Kind() {
		case reflect.String:
			lengthBounds(tag, param, &s.MinLength, &s.MaxLength)
		case reflect.Slice, reflect.Array, reflect.Map:
			lengthBounds(tag, param, &s.MinItems, &s.MaxItems)
		default:
			switch tag {
			case "min", "gte":
				s.Minimum = json.Number(param)
			case "max", "lte":
				s.Maximum = json.Number(param)
			case "len":
				s.Minimum, s.Maximum = json.Number(param), json.Number(param)
			case "gt":
				s.ExclusiveMinimum = json.Number(param)
			case "lt":
				s.ExclusiveMaximum = json.Number(param)
			}
		}
	default:
		if f, ok := tagFormats[tag]; ok {
			s.Format = f
		}
	}
	return false
}

// lengthBounds sets the length (or item count) bounds a rule implies. For
// strings and collections validator compares lengths, so gt and lt are
// exclusive integer bounds.
func lengthBounds(tag, param string, lower, upper **uint64) {
	n, err := strconv.ParseUint(param, 10, 64)
	if err != nil {
		return
	}
	switch tag {
	case "min", "gte":
		*lower = &n
	case "max", "lte":
		*upper = &n
	case "len":
		m := n
		*lower, *upper = &n, &m
	case "gt":
		m := n + 1
		*lower = &m
	case "lt":
		if n > 0 {
			m := n - 1
			*upper = &m
		}
	}
}

// jsonName is the property name the reflector derives from the json tag.
func jsonName(sf reflect.StructField) string {
	if jt := sf.Tag.Get("json"); jt != "" {
		if name, _, _ := strings.Cut(jt, ","); name != "" {
			return name
		}
	}
	return sf.Name
}
