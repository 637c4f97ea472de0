// Package testing provides test utilities for extjson.
package testing

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/zoobzio/extjson"
)

// PointKey is the tag key of the Point convention. It is deliberately not
// extjson.TypeKey, so both conventions can share one document.
const PointKey = "__point__"

// Point is an application type unknown to extjson.
type Point struct {
	X float64
	Y float64
}

// PointDefault encodes Point and hands every other value on.
func PointDefault(v any) (any, error) {
	p, ok := v.(Point)
	if !ok {
		return nil, extjson.ErrUnsupportedType
	}
	return map[string]any{
		PointKey: true,
		"x":      p.X,
		"y":      p.Y,
	}, nil
}

// PointHook decodes Point objects and returns every other object unchanged.
func PointHook(m map[string]any) any {
	if _, ok := m[PointKey]; !ok {
		return m
	}
	x, xok := number(m["x"])
	y, yok := number(m["y"])
	if !xok || !yok {
		return m
	}
	return Point{X: x, Y: y}
}

// Zone is a fixed zone two hours east of UTC.
var Zone = time.FixedZone("CEST", 2*60*60)

// Document returns a map holding every extra type next to plain JSON values.
// Set members are strings so every carrier decodes them to the same Go type.
func Document() map[string]any {
	return map[string]any{
		"date":      extjson.Date{Year: 2013, Month: time.October, Day: 18},
		"time":      extjson.TimeOfDay{Hour: 23, Minute: 59, Second: 59, Microsecond: 999999},
		"zonedtime": extjson.TimeOfDay{Hour: 8, Minute: 15, Location: Zone},
		"datetime":  time.Date(2013, time.October, 18, 12, 30, 45, 123456000, time.UTC),
		"zoned":     time.Date(2020, time.February, 29, 1, 2, 3, 0, Zone),
		"duration":  -(392*24*time.Hour + 27836*time.Microsecond),
		"timezone":  Zone,
		"utc":       time.UTC,
		"set":       extjson.NewSet("a", "b", "c"),
		"frozenset": extjson.NewFrozenSet("x", "y"),
		"complex":   complex(-98.213, 91823),
		"array":     []any{1.5, "two", true, nil},
		"string":    "trololo",
		"float":     4.32,
		"true":      true,
		"false":     false,
		"null":      nil,
	}
}

// RoundTrip marshals v with c and unmarshals the result.
func RoundTrip(tb testing.TB, c extjson.Codec, v any) any {
	tb.Helper()
	data, err := c.Marshal(v)
	if err != nil {
		tb.Fatalf("Marshal() error: %v", err)
	}
	var out any
	if err := c.Unmarshal(data, &out); err != nil {
		tb.Fatalf("Unmarshal() error: %v", err)
	}
	return out
}

// Equivalent compares decoded trees. Times compare as instants with equal
// offsets, zones by name and offset, sets by membership and numbers by value.
func Equivalent(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		if !ok || !x.Equal(y) {
			return false
		}
		_, xo := x.Zone()
		_, yo := y.Zone()
		return xo == yo
	case *time.Location:
		y, ok := b.(*time.Location)
		return ok && extjson.SameZone(x, y)
	case extjson.TimeOfDay:
		y, ok := b.(extjson.TimeOfDay)
		return ok && x.Equal(y)
	case extjson.Set:
		y, ok := b.(extjson.Set)
		return ok && x.Equal(y)
	case extjson.FrozenSet:
		y, ok := b.(extjson.FrozenSet)
		return ok && x.Equal(y)
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equivalent(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equivalent(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool, string, nil:
		return 0, false
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
