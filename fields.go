package extjson

import (
	"encoding/json"
	"math"
	"reflect"
	"time"
)

// fieldReader consumes the fields of one tagged object. Every read marks the
// field as seen; done rejects whatever is left over.
type fieldReader struct {
	tag    Tag
	fields map[string]any
	seen   map[string]bool
	err    error
}

func newFieldReader(tag Tag, fields map[string]any) *fieldReader {
	return &fieldReader{
		tag:    tag,
		fields: fields,
		seen:   make(map[string]bool, len(fields)),
	}
}

func (r *fieldReader) fail(sentinel error, field string, cause error) {
	if r.err == nil {
		r.err = newFieldError(sentinel, r.tag, field, cause)
	}
}

func (r *fieldReader) lookup(name string, required bool) (any, bool) {
	r.seen[name] = true
	v, ok := r.fields[name]
	if !ok && required {
		r.fail(ErrMissingField, name, nil)
	}
	return v, ok
}

// Int reads an integral field. Absent optional fields read as def.
func (r *fieldReader) Int(name string, required bool, def int64) int64 {
	v, ok := r.lookup(name, required)
	if !ok {
		return def
	}
	n, ok := asInt(v)
	if !ok {
		r.fail(ErrFieldType, name, nil)
		return def
	}
	return n
}

// Float reads a numeric field.
func (r *fieldReader) Float(name string, required bool) float64 {
	v, ok := r.lookup(name, required)
	if !ok {
		return 0
	}
	f, ok := asFloat(v)
	if !ok {
		r.fail(ErrFieldType, name, nil)
		return 0
	}
	return f
}

// Range reads an integral field and checks lo <= n <= hi.
func (r *fieldReader) Range(name string, required bool, lo, hi int64) int {
	n := r.Int(name, required, lo)
	if n < lo || n > hi {
		r.fail(ErrFieldRange, name, nil)
		return int(lo)
	}
	return int(n)
}

// OptString reads a string-or-null field.
func (r *fieldReader) OptString(name string) (string, bool) {
	v, ok := r.lookup(name, false)
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		r.fail(ErrFieldType, name, nil)
		return "", false
	}
	return s, true
}

// Location reads a decoded timezone field. Null and absent read as nil.
func (r *fieldReader) Location(name string) *time.Location {
	v, ok := r.lookup(name, false)
	if !ok || v == nil {
		return nil
	}
	loc, ok := v.(*time.Location)
	if !ok {
		r.fail(ErrFieldType, name, nil)
		return nil
	}
	return loc
}

// Duration reads a decoded timedelta field.
func (r *fieldReader) Duration(name string, required bool) time.Duration {
	v, ok := r.lookup(name, required)
	if !ok {
		return 0
	}
	d, ok := v.(time.Duration)
	if !ok {
		r.fail(ErrFieldType, name, nil)
		return 0
	}
	return d
}

// List reads an array field.
func (r *fieldReader) List(name string, required bool) []any {
	v, ok := r.lookup(name, required)
	if !ok {
		return nil
	}
	l, ok := v.([]any)
	if !ok {
		r.fail(ErrFieldType, name, nil)
		return nil
	}
	return l
}

// Raw reads a field without conversion.
func (r *fieldReader) Raw(name string) (any, bool) {
	return r.lookup(name, false)
}

// done returns the first failure, or rejects unread fields.
func (r *fieldReader) done() error {
	if r.err != nil {
		return r.err
	}
	for name := range r.fields {
		if !r.seen[name] {
			return newFieldError(ErrUnexpectedField, r.tag, name, nil)
		}
	}
	return nil
}

// asInt converts any integral numeric value. Floats must have no fraction.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float())
	}
	return 0, false
}

// asFloat converts any numeric value.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		return 0, false
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

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
