package jsonvalue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/i18n"
)

const schemaURL = "mem://utilz/schema.json"

// FromJSONSchema compiles a JSON Schema document into a Schema over
// JSON-compatible values. Each failing keyword becomes one Issue located at
// the offending instance.
//
//	s, err := jsonvalue.FromJSONSchema([]byte(`{"type":"object","required":["name"]}`))
//	_, err = s.Parse(ctx, map[string]any{}) // required at /name
func FromJSONSchema(doc []byte) (utilz.Schema[any], error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("jsonvalue: decode schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("jsonvalue: add schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("jsonvalue: compile schema: %w", err)
	}
	return &documentSchema{sch: sch}, nil
}

type documentSchema struct {
	sch *jsonschema.Schema
}

func (d *documentSchema) Parse(ctx context.Context, v any) (any, error) {
	if _, err := parseJSONValue(ctx, v); err != nil {
		return nil, err
	}
	err := d.sch.Validate(plain(v))
	if err == nil {
		return v, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, utilz.Issues{{Path: "/", Code: utilz.CodeCustom, Message: err.Error(), Input: v, Cause: err}}
	}
	p := message.NewPrinter(language.Make(i18n.Language()))
	var iss utilz.Issues
	collect(verr, p, &iss)
	return nil, iss
}

// collect appends one issue per leaf of the error tree.
func collect(e *jsonschema.ValidationError, p *message.Printer, out *utilz.Issues) {
	if len(e.Causes) > 0 {
		for _, c := range e.Causes {
			collect(c, p, out)
		}
		return
	}
	at := utilz.Root()
	for _, seg := range e.InstanceLocation {
		at = at.Field(seg)
	}
	msg := e.ErrorKind.LocalizedString(p)
	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		for _, name := range k.Missing {
			*out = append(*out, utilz.Issue{Path: at.Field(name).Pointer(), Code: utilz.CodeRequired, Message: i18n.T("required", nil), Rule: "required"})
		}
		return
	case *kind.AdditionalProperties:
		for _, name := range k.Properties {
			*out = append(*out, utilz.Issue{
				Path:    at.Field(name).Pointer(),
				Code:    utilz.CodeUnknownKey,
				Message: i18n.T("unknown_key", map[string]string{"key": name}),
				Rule:    "additionalProperties",
				Params:  map[string]any{"key": name},
			})
		}
		return
	case *kind.Type:
		want := strings.Join(k.Want, " or ")
		*out = append(*out, utilz.Issue{
			Path:     at.Pointer(),
			Code:     utilz.CodeInvalidType,
			Message:  i18n.T("invalid_type", map[string]string{"expected": want, "received": k.Got}),
			Expected: want,
			Received: k.Got,
			Rule:     "type",
		})
		return
	case *kind.Enum:
		options := make([]string, len(k.Want))
		for i, w := range k.Want {
			options[i] = fmt.Sprint(w)
		}
		*out = append(*out, utilz.Issue{
			Path: at.Pointer(), Code: utilz.CodeInvalidEnum, Message: msg, Input: k.Got,
			Rule: "enum", Params: map[string]any{"options": options},
		})
		return
	}
	*out = append(*out, utilz.Issue{
		Path:    at.Pointer(),
		Code:    keywordCode(e.ErrorKind),
		Message: msg,
		Rule:    strings.Join(e.ErrorKind.KeywordPath(), "/"),
	})
}

func keywordCode(k jsonschema.ErrorKind) string {
	switch k.(type) {
	case *kind.Const:
		return utilz.CodeInvalidLiteral
	case *kind.MinLength, *kind.MinItems, *kind.MinProperties, *kind.Minimum, *kind.ExclusiveMinimum, *kind.MinContains:
		return utilz.CodeTooSmall
	case *kind.MaxLength, *kind.MaxItems, *kind.MaxProperties, *kind.Maximum, *kind.ExclusiveMaximum, *kind.MaxContains:
		return utilz.CodeTooBig
	case *kind.Format, *kind.Pattern, *kind.ContentEncoding, *kind.ContentMediaType:
		return utilz.CodeInvalidFormat
	}
	return utilz.CodeCustom
}

// plain rebuilds an already checked value from the types the validator
// understands: []any, map[string]any and unnamed scalars.
func plain(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return v
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return plain(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = plain(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = plain(iter.Value().Interface())
		}
		return out
	}
	return v
}
