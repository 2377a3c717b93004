package utilz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeTooSmall       = "too_small"
	CodeTooBig         = "too_big"
	CodeInvalidEnum    = "invalid_enum"
	CodeInvalidLiteral = "invalid_literal"
	CodeInvalidFormat  = "invalid_format"
	CodeInvalidJSON    = "invalid_json"
	// Discriminator failures carry the accepted options like invalid_enum.
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeCustom               = "custom"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string `json:"code"` // One of the codes listed above.
	Message string `json:"message"`
	// Input is the offending value as it was handed to the engine. A nil Input
	// on an invalid_type issue means the value was absent.
	Input any `json:"-"`
	// Expected and Received name the types involved in invalid_type issues.
	Expected string `json:"expected,omitempty"`
	Received string `json:"received,omitempty"`
	// Params carries structured parameters (e.g., {"param":"3","options":[...]})
	// for error maps and i18n.
	Params map[string]any `json:"params,omitempty"`
	// Rule optionally records the validator tag that produced this issue.
	Rule  string `json:"rule,omitempty"`
	Cause error  `json:"-"` // Optional: underlying error.
}

// Options returns the accepted values attached to enum-like issues.
func (it Issue) Options() []string {
	if it.Params == nil {
		return nil
	}
	opts, _ := it.Params["options"].([]string)
	return opts
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// FlatErrors splits issues into form-level and field-level messages.
type FlatErrors struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

// FieldKeys returns the field error keys in sorted order.
func (f FlatErrors) FieldKeys() []string {
	keys := lo.Keys(f.FieldErrors)
	sort.Strings(keys)
	return keys
}

// Flatten groups messages by the first segment of each issue path. Issues at
// the root are form errors.
func (iss Issues) Flatten() FlatErrors {
	out := FlatErrors{FormErrors: []string{}, FieldErrors: map[string][]string{}}
	for _, it := range iss {
		segs := SplitPointer(it.Path)
		if len(segs) == 0 {
			out.FormErrors = append(out.FormErrors, it.Message)
			continue
		}
		out.FieldErrors[segs[0]] = append(out.FieldErrors[segs[0]], it.Message)
	}
	return out
}

// FormattedErrors mirrors the shape of the input: each node holds the messages
// reported at that path and the children below it.
type FormattedErrors struct {
	Errors []string                    `json:"_errors"`
	Fields map[string]*FormattedErrors `json:"fields,omitempty"`
}

// Field returns the child node for key, or nil.
func (f *FormattedErrors) Field(key string) *FormattedErrors {
	if f == nil || f.Fields == nil {
		return nil
	}
	return f.Fields[key]
}

// Format nests messages by full path.
func (iss Issues) Format() *FormattedErrors {
	root := &FormattedErrors{Errors: []string{}}
	for _, it := range iss {
		node := root
		for _, seg := range SplitPointer(it.Path) {
			if node.Fields == nil {
				node.Fields = map[string]*FormattedErrors{}
			}
			next, ok := node.Fields[seg]
			if !ok {
				next = &FormattedErrors{Errors: []string{}}
				node.Fields[seg] = next
			}
			node = next
		}
		node.Errors = append(node.Errors, it.Message)
	}
	return root
}

// Without drops issues whose first path segment is one of keys.
func (iss Issues) Without(keys ...string) Issues {
	return lo.Filter(iss, func(it Issue, _ int) bool {
		segs := SplitPointer(it.Path)
		return len(segs) == 0 || !lo.Contains(keys, segs[0])
	})
}
