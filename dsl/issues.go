package dsl

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/internal/structkey"
)

// formatTags are validator tags that check a string's format.
var formatTags = map[string]bool{
	"email": true, "url": true, "uri": true, "http_url": true, "https_url": true,
	"uuid": true, "uuid3": true, "uuid4": true, "uuid5": true, "ulid": true,
	"datetime": true, "timezone": true, "ip": true, "ipv4": true, "ipv6": true,
	"cidr": true, "cidrv4": true, "cidrv6": true, "mac": true,
	"hostname": true, "hostname_rfc1123": true, "fqdn": true,
	"alpha": true, "alphanum": true, "alphaunicode": true, "alphanumunicode": true,
	"ascii": true, "numeric": true, "number": true, "hexadecimal": true,
	"hexcolor": true, "rgb": true, "rgba": true, "e164": true,
	"base64": true, "base64url": true, "json": true, "jwt": true,
	"semver": true, "lowercase": true, "uppercase": true,
	"startswith": true, "endswith": true, "contains": true, "excludes": true,
	"isbn": true, "isbn10": true, "isbn13": true, "boolean": true,
}

// codeOf maps a validator tag to an issue code.
func codeOf(tag string) string {
	switch {
	case strings.HasPrefix(tag, "required"):
		return utilz.CodeRequired
	case tag == "min" || tag == "gt" || tag == "gte":
		return utilz.CodeTooSmall
	case tag == "max" || tag == "lt" || tag == "lte":
		return utilz.CodeTooBig
	case tag == "oneof":
		return utilz.CodeInvalidEnum
	case tag == "eq":
		return utilz.CodeInvalidLiteral
	case formatTags[tag]:
		return utilz.CodeInvalidFormat
	}
	return utilz.CodeCustom
}

// issuesOf converts a validator error. Namespaces are resolved against root so
// that paths use JSON keys and skip flattened embedded structs. A nil root is
// used for single values, whose issues sit at base.
func (e *Engine) issuesOf(err error, root reflect.Type, base utilz.PathRef) utilz.Issues {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return utilz.Issues{{Path: base.Pointer(), Code: utilz.CodeCustom, Message: err.Error(), Cause: err}}
	}
	out := make(utilz.Issues, 0, len(verrs))
	for _, fe := range verrs {
		p := base
		if root != nil {
			p = pointerOf(root, fe.StructNamespace(), base)
		}
		params := map[string]any{}
		if fe.Param() != "" {
			params["param"] = fe.Param()
		}
		if fe.Tag() == "oneof" {
			params["options"] = strings.Fields(fe.Param())
		}
		if len(params) == 0 {
			params = nil
		}
		out = append(out, utilz.Issue{
			Path:    p.Pointer(),
			Code:    codeOf(fe.Tag()),
			Message: e.message(fe),
			Input:   fe.Value(),
			Params:  params,
			Rule:    fe.Tag(),
			Cause:   fe,
		})
	}
	return out
}

// pointerOf turns a struct namespace ("User.Items[0].Price") into a path.
func pointerOf(root reflect.Type, ns string, base utilz.PathRef) utilz.PathRef {
	root = deref(root)
	if name := root.Name(); name != "" {
		ns = strings.TrimPrefix(ns, name+".")
	}
	p, cur := base, root
	for _, seg := range strings.Split(ns, ".") {
		name, idx := splitIndex(seg)
		var sf reflect.StructField
		found := false
		if cur != nil && deref(cur).Kind() == reflect.Struct {
			sf, found = deref(cur).FieldByName(name)
		}
		switch {
		case !found:
			p, cur = p.Field(name), nil
		case structkey.Flattened(sf):
			cur = sf.Type
		default:
			p, cur = p.Field(structkey.Resolve(sf)), sf.Type
		}
		for _, ix := range idx {
			var elem reflect.Type
			if cur != nil {
				if c := deref(cur); c.Kind() == reflect.Slice || c.Kind() == reflect.Array || c.Kind() == reflect.Map {
					elem = c.Elem()
				}
			}
			if n, err := strconv.Atoi(ix); err == nil && elem != nil && deref(cur).Kind() != reflect.Map {
				p = p.Index(n)
			} else {
				p = p.Field(ix)
			}
			cur = elem
		}
	}
	return p
}

// splitIndex splits "Items[0][1]" into "Items" and ["0", "1"].
func splitIndex(seg string) (string, []string) {
	i := strings.IndexByte(seg, '[')
	if i < 0 {
		return seg, nil
	}
	name, rest := seg[:i], seg[i:]
	var idx []string
	for len(rest) > 1 && rest[0] == '[' {
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			break
		}
		idx = append(idx, rest[1:j])
		rest = rest[j+1:]
	}
	return name, idx
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
