package jsonvalue

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/i18n"
	"github.com/reoring/utilz/internal/decode"
)

// StringToJSON returns a schema that accepts JSON encoded as a string and
// yields the decoded value.
//
//	s := jsonvalue.StringToJSON()
//	s.Parse(ctx, "true")                      // true
//	s.Parse(ctx, `["one", "two", "three"]`)   // []any{"one", "two", "three"}
//	s.Parse(ctx, "<html>not a JSON string</html>") // invalid_json
func StringToJSON() utilz.Schema[any] { return utilz.SchemaFunc[any](parseJSONString) }

// JSONString is StringToJSON under the name used for string-typed fields.
func JSONString() utilz.Schema[any] { return StringToJSON() }

func parseJSONString(_ context.Context, v any) (any, error) {
	s, err := stringInput(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, invalidDocument(v, "invalid_json", err)
	}
	return out, nil
}

// StringToYAML is the YAML sibling of StringToJSON. Mapping keys become
// strings and timestamps RFC 3339 strings, so the result is JSON-compatible;
// documents that still are not (non-string keys, NaN) are rejected.
func StringToYAML() utilz.Schema[any] { return utilz.SchemaFunc[any](parseYAMLString) }

func parseYAMLString(ctx context.Context, v any) (any, error) {
	s, err := stringInput(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.NewDecoder(bytes.NewReader([]byte(s))).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, invalidDocument(v, "invalid_yaml", err)
	}
	return parseJSONValue(ctx, normalizeYAML(doc))
}

func stringInput(v any) (string, error) {
	s, ok := v.(string)
	if ok {
		return s, nil
	}
	received := decode.ReceivedName(v)
	return "", utilz.Issues{{
		Path:     "/",
		Code:     utilz.CodeInvalidType,
		Message:  i18n.T("invalid_type", map[string]string{"expected": "string", "received": received}),
		Input:    v,
		Expected: "string",
		Received: received,
	}}
}

func invalidDocument(v any, msg string, cause error) utilz.Issues {
	return utilz.Issues{{Path: "/", Code: utilz.CodeInvalidJSON, Message: i18n.T(msg, nil), Input: v, Cause: cause}}
}

// normalizeYAML converts YAML-decoded values (which may contain map[any]any)
// into JSON-like values recursively.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return t
			}
			out[ks] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}
