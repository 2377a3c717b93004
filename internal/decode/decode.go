// Package decode turns loosely typed input (JSON-like maps, slices and
// scalars) into Go values of a target type, reporting every type mismatch as
// an Issue with a JSON Pointer path. Rule validation is not its concern.
package decode

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/utilz"
	"github.com/reoring/utilz/i18n"
	"github.com/reoring/utilz/internal/structkey"
)

// Options tunes decoding.
type Options struct {
	Unknown utilz.UnknownPolicy
	// Skip lists top-level keys that are neither decoded nor checked.
	Skip []string
}

// Into decodes v into a new value of type t.
func Into(t reflect.Type, v any, opt Options) (reflect.Value, utilz.Issues) {
	d := &decoder{opt: opt, skip: map[string]bool{}}
	for _, k := range opt.Skip {
		d.skip[k] = true
	}
	out := reflect.New(t).Elem()
	d.value(out, v, utilz.Root(), true)
	return out, d.issues
}

// Failed returns the distinct top-level keys that carry issues.
func Failed(iss utilz.Issues) []string {
	seen := map[string]bool{}
	var keys []string
	for _, it := range iss {
		segs := utilz.SplitPointer(it.Path)
		if len(segs) == 0 || seen[segs[0]] {
			continue
		}
		seen[segs[0]] = true
		keys = append(keys, segs[0])
	}
	return keys
}

type decoder struct {
	opt    Options
	skip   map[string]bool
	issues utilz.Issues
}

func (d *decoder) add(it utilz.Issue) { d.issues = utilz.AppendIssues(d.issues, it) }

func (d *decoder) mismatch(p utilz.PathRef, t reflect.Type, v any) {
	expected := ExpectedName(t)
	received := ReceivedName(v)
	code, msg := utilz.CodeInvalidType, i18n.T("invalid_type", map[string]string{"expected": expected, "received": received})
	if _, ok := instanceNames[t]; ok {
		msg = i18n.T("not_instance", map[string]string{"expected": expected})
	}
	d.add(utilz.Issue{Path: p.Pointer(), Code: code, Message: msg, Input: v, Expected: expected, Received: received})
}

func (d *decoder) value(out reflect.Value, v any, p utilz.PathRef, top bool) {
	t := out.Type()
	if v != nil {
		if vt := reflect.TypeOf(v); vt.AssignableTo(t) && t.Kind() != reflect.Interface && !isNaN(v) {
			out.Set(reflect.ValueOf(v))
			return
		}
	}
	switch t.Kind() {
	case reflect.Interface:
		if v != nil {
			rv := reflect.ValueOf(v)
			if !rv.Type().AssignableTo(t) {
				d.mismatch(p, t, v)
				return
			}
			out.Set(rv)
		}
		return
	case reflect.Pointer:
		if v == nil {
			return
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return
		}
		elem := reflect.New(t.Elem())
		before := len(d.issues)
		d.value(elem.Elem(), v, p, top)
		if len(d.issues) == before {
			out.Set(elem)
		}
		return
	}
	if v == nil {
		d.mismatch(p, t, v)
		return
	}

	switch t {
	case timeType:
		if tp, ok := v.(*time.Time); ok && tp != nil {
			out.Set(reflect.ValueOf(*tp))
			return
		}
		d.mismatch(p, t, v)
		return
	case bigIntType:
		if bp, ok := v.(*big.Int); ok && bp != nil {
			out.Set(reflect.ValueOf(*bp))
			return
		}
		d.mismatch(p, t, v)
		return
	case jsonNumberType:
		if f, ok := float(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			out.SetString(fmt.Sprint(v))
			return
		}
		d.mismatch(p, t, v)
		return
	}

	switch t.Kind() {
	case reflect.String:
		if _, num := v.(json.Number); num {
			break
		}
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
			out.SetString(rv.String())
			return
		}
	case reflect.Bool:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Bool {
			out.SetBool(rv.Bool())
			return
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		d.integer(out, v, p)
		return
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d.unsigned(out, v, p)
		return
	case reflect.Float32, reflect.Float64:
		if f, ok := float(v); ok && !math.IsNaN(f) {
			if out.OverflowFloat(f) && !math.IsInf(f, 0) {
				d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", t), nil))
				return
			}
			out.SetFloat(f)
			return
		}
	case reflect.Slice:
		d.slice(out, v, p)
		return
	case reflect.Array:
		d.array(out, v, p)
		return
	case reflect.Map:
		d.mapping(out, v, p)
		return
	case reflect.Struct:
		d.object(out, v, p, top)
		return
	}
	d.mismatch(p, t, v)
}

func (d *decoder) integer(out reflect.Value, v any, p utilz.PathRef) {
	var n int64
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
			return
		}
		n = int64(rv.Uint())
	case reflect.String:
		num, ok := v.(json.Number)
		if ok && !strings.ContainsAny(num.String(), ".eE") {
			i, err := num.Int64()
			if err != nil {
				d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
				return
			}
			n = i
			break
		}
		fallthrough
	default:
		f, ok := float(v)
		if !ok || math.IsNaN(f) {
			d.mismatch(p, out.Type(), v)
			return
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			d.add(utilz.Issue{
				Path: p.Pointer(), Code: utilz.CodeInvalidType, Input: v, Expected: "integer", Received: "float",
				Message: i18n.T("invalid_type", map[string]string{"expected": "integer", "received": "float"}),
			})
			return
		}
		if f > math.MaxInt64 || f < math.MinInt64 {
			d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
			return
		}
		n = int64(f)
	}
	if out.OverflowInt(n) {
		d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
		return
	}
	out.SetInt(n)
}

func (d *decoder) unsigned(out reflect.Value, v any, p utilz.PathRef) {
	var n uint64
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = rv.Uint()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			d.add(p.Issue(utilz.CodeTooSmall, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
			return
		}
		n = uint64(rv.Int())
	case reflect.String:
		num, ok := v.(json.Number)
		if ok && !strings.ContainsAny(num.String(), ".eE") {
			u, err := strconv.ParseUint(num.String(), 10, 64)
			if err != nil {
				code := utilz.CodeTooBig
				if strings.HasPrefix(num.String(), "-") {
					code = utilz.CodeTooSmall
				}
				d.add(p.Issue(code, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
				return
			}
			n = u
			break
		}
		fallthrough
	default:
		f, ok := float(v)
		if !ok || math.IsNaN(f) {
			d.mismatch(p, out.Type(), v)
			return
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			d.add(utilz.Issue{
				Path: p.Pointer(), Code: utilz.CodeInvalidType, Input: v, Expected: "integer", Received: "float",
				Message: i18n.T("invalid_type", map[string]string{"expected": "integer", "received": "float"}),
			})
			return
		}
		if f < 0 || f > math.MaxUint64 {
			d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
			return
		}
		n = uint64(f)
	}
	if out.OverflowUint(n) {
		d.add(p.Issue(utilz.CodeTooBig, fmt.Sprintf("Number must fit in %s", out.Type()), nil))
		return
	}
	out.SetUint(n)
}

func (d *decoder) slice(out reflect.Value, v any, p utilz.PathRef) {
	elems, ok := elements(v)
	if !ok {
		d.mismatch(p, out.Type(), v)
		return
	}
	s := reflect.MakeSlice(out.Type(), len(elems), len(elems))
	for i, e := range elems {
		d.value(s.Index(i), e, p.Index(i), false)
	}
	out.Set(s)
}

func (d *decoder) array(out reflect.Value, v any, p utilz.PathRef) {
	elems, ok := elements(v)
	if !ok {
		d.mismatch(p, out.Type(), v)
		return
	}
	want := out.Len()
	data := map[string]string{"expected": fmt.Sprint(want), "received": fmt.Sprint(len(elems))}
	switch {
	case len(elems) < want:
		d.add(utilz.Issue{Path: p.Pointer(), Code: utilz.CodeTooSmall, Message: i18n.T("too_small", data), Input: v})
		return
	case len(elems) > want:
		d.add(utilz.Issue{Path: p.Pointer(), Code: utilz.CodeTooBig, Message: i18n.T("too_big", data), Input: v})
		return
	}
	for i, e := range elems {
		d.value(out.Index(i), e, p.Index(i), false)
	}
}

func (d *decoder) mapping(out reflect.Value, v any, p utilz.PathRef) {
	t := out.Type()
	rec, ok := record(v)
	if !ok || t.Key().Kind() != reflect.String {
		d.mismatch(p, t, v)
		return
	}
	m := reflect.MakeMapWithSize(t, len(rec))
	for _, k := range sortedKeys(rec) {
		ev := reflect.New(t.Elem()).Elem()
		before := len(d.issues)
		d.value(ev, rec[k], p.Field(k), false)
		if len(d.issues) == before {
			m.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), ev)
		}
	}
	out.Set(m)
}

func (d *decoder) object(out reflect.Value, v any, p utilz.PathRef, top bool) {
	t := out.Type()
	if _, ok := instanceNames[t]; ok {
		d.mismatch(p, t, v)
		return
	}
	rec, ok := record(v)
	if !ok {
		d.mismatch(p, t, v)
		return
	}
	known := map[string]bool{}
	for _, f := range structkey.Fields(t) {
		known[f.Key] = true
		if top && d.skip[f.Key] {
			continue
		}
		val, ok := rec[f.Key]
		if !ok {
			continue
		}
		d.value(out.FieldByIndex(f.Index), val, p.Field(f.Key), false)
	}
	if d.opt.Unknown != utilz.UnknownStrict {
		return
	}
	for _, k := range sortedKeys(rec) {
		if known[k] || (top && d.skip[k]) {
			continue
		}
		d.add(utilz.Issue{
			Path:    p.Field(k).Pointer(),
			Code:    utilz.CodeUnknownKey,
			Message: i18n.T("unknown_key", map[string]string{"key": k}),
			Input:   rec[k],
			Params:  map[string]any{"key": k},
		})
	}
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

func float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func elements(v any) ([]any, bool) {
	if a, ok := v.([]any); ok {
		return a, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

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

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
