package coerce

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// parseJSON decodes s, reporting whether it was valid JSON. Numbers become
// float64, except integers a float64 cannot hold exactly, which stay
// json.Number.
func parseJSON(s string) (any, bool) {
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return numbers(v), true
}

func numbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, _ := t.Float64()
		s := t.String()
		if !strings.ContainsAny(s, ".eE") && strconv.FormatFloat(f, 'f', -1, 64) != s {
			return t
		}
		return f
	case []any:
		for i, e := range t {
			t[i] = numbers(e)
		}
	case map[string]any:
		for k, e := range t {
			t[k] = numbers(e)
		}
	}
	return v
}

// ParseJSONOr decodes s as JSON, returning s itself when it is not valid JSON.
func ParseJSONOr(s string) any {
	if v, ok := parseJSON(s); ok {
		return v
	}
	return s
}
