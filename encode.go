package extjson

import (
	"encoding"
	stdjson "encoding/json"
	"errors"
	"reflect"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// maxDepth bounds the encode walk.
const maxDepth = 10000

// encoder converts Go values into JSON-native trees.
type encoder struct {
	o *options
}

// EncoderHook returns the composed default hook: the caller's WithDefault
// first, then the built-in registry. It converts a single value one level
// into a tagged object and fails with *UnsupportedTypeError for anything else.
func EncoderHook(opts ...Option) DefaultFunc {
	e := &encoder{o: buildOptions(opts)}
	return e.defaultHook
}

// ToTree converts v into a tree of nil, bool, string, numbers, []any and
// map[string]any with every extra value replaced by its tagged object.
func ToTree(v any, opts ...Option) (any, error) {
	e := &encoder{o: buildOptions(opts)}
	return e.walk(v, 0)
}

func (e *encoder) defaultHook(v any) (any, error) {
	if e.o.def != nil {
		out, err := e.o.def(v)
		if err == nil {
			return out, nil
		}
		if !isUnsupported(err) {
			return nil, err
		}
	}
	if fn, arg, ok := lookupEncoder(v); ok {
		return fn(arg, e.o)
	}
	return nil, &UnsupportedTypeError{Type: reflect.TypeOf(v)}
}

func (e *encoder) walk(v any, depth int) (any, error) {
	if depth > maxDepth {
		return nil, ErrMaxDepth
	}
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		// The zero Set is an empty set, not null.
		if _, isSet := v.(Set); rv.IsNil() && !isSet {
			return nil, nil
		}
	}

	if !IsRegistered(v) {
		if m, ok := v.(TreeMarshaler); ok {
			tree, err := m.MarshalTree()
			if err != nil {
				return nil, err
			}
			return e.walk(tree, depth+1)
		}
		if isMarshaler(v) {
			return v, nil
		}

		switch rv.Kind() {
		case reflect.Bool, reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			return v, nil
		case reflect.Pointer:
			return e.walk(rv.Elem().Interface(), depth+1)
		case reflect.Slice, reflect.Array:
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return v, nil
			}
			return e.list(rv, depth)
		case reflect.Map:
			return e.object(rv, depth)
		}
	}

	out, err := e.defaultHook(v)
	if err == nil {
		return e.walk(out, depth+1)
	}
	if isUnsupported(err) && rv.Kind() == reflect.Struct {
		return e.structTree(rv, depth)
	}
	return nil, err
}

func (e *encoder) list(rv reflect.Value, depth int) (any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		v, err := e.walk(rv.Index(i).Interface(), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *encoder) object(rv reflect.Value, depth int) (any, error) {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key(), rv.Type())
		if err != nil {
			return nil, err
		}
		v, err := e.walk(iter.Value().Interface(), depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func (e *encoder) structTree(rv reflect.Value, depth int) (any, error) {
	out := make(map[string]any)
	if err := e.fillStruct(out, rv, depth); err != nil {
		return nil, err
	}
	return out, nil
}

// fillStruct writes the fields of rv into out. Fields of embedded structs
// never replace keys already set by the outer struct.
func (e *encoder) fillStruct(out map[string]any, rv reflect.Value, depth int) error {
	if depth > maxDepth {
		return ErrMaxDepth
	}
	plan := planFor(rv.Type())

	for _, f := range plan.fields {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		v, err := e.walk(fv.Interface(), depth+1)
		if err != nil {
			return err
		}
		out[f.name] = v
	}

	for _, f := range plan.embedded {
		fv := rv.FieldByIndex(f.index)
		if f.isPtr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		inner := make(map[string]any)
		if err := e.fillStruct(inner, fv, depth+1); err != nil {
			return err
		}
		for k, v := range inner {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return nil
}

// mapKey formats a map key the way the engine does.
func mapKey(k reflect.Value, mt reflect.Type) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		b, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", &UnsupportedTypeError{Type: mt}
}

func isMarshaler(v any) bool {
	switch v.(type) {
	case gojson.Marshaler, encoding.TextMarshaler:
		return true
	}
	return false
}

// isUnsupported reports whether err means "not encodable here, try the next encoder".
func isUnsupported(err error) bool {
	if errors.Is(err, ErrUnsupportedType) {
		return true
	}
	var goErr *gojson.UnsupportedTypeError
	if errors.As(err, &goErr) {
		return true
	}
	var stdErr *stdjson.UnsupportedTypeError
	return errors.As(err, &stdErr)
}
