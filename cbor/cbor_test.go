package cbor

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/extjson"
)

func TestNew(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Must() panicked: %v", r)
		}
	}()
	if Must() == nil {
		t.Error("Must() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := Must()
	if c.ContentType() != "application/cbor" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/cbor")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := Must()

	original := map[string]any{
		"due":   extjson.Date{Year: 1, Month: time.January, Day: 1},
		"at":    extjson.TimeOfDay{Hour: 23, Minute: 59, Second: 59, Microsecond: 999999},
		"every": -(392*24*time.Hour + 27836*time.Microsecond),
		"tz":    time.UTC,
		"tags":  extjson.NewSet("a", "b"),
		"list":  []any{"x", 1.5},
	}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored any
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	m, ok := restored.(map[string]any)
	if !ok {
		t.Fatalf("Unmarshal() = %T, want map[string]any", restored)
	}
	if m["due"] != original["due"] {
		t.Errorf("due = %v, want %v", m["due"], original["due"])
	}
	at, ok := m["at"].(extjson.TimeOfDay)
	if !ok || !at.Equal(original["at"].(extjson.TimeOfDay)) {
		t.Errorf("at = %v, want %v", m["at"], original["at"])
	}
	if m["every"] != original["every"] {
		t.Errorf("every = %v, want %v", m["every"], original["every"])
	}
	if m["tz"] != time.UTC {
		t.Errorf("tz = %v, want UTC", m["tz"])
	}
	tags, ok := m["tags"].(extjson.Set)
	if !ok || !tags.Equal(extjson.NewSet("a", "b")) {
		t.Errorf("tags = %v, want set of a and b", m["tags"])
	}
	list, ok := m["list"].([]any)
	if !ok || len(list) != 2 || list[0] != "x" || list[1] != 1.5 {
		t.Errorf("list = %v, want [x 1.5]", m["list"])
	}
}

func TestNewDeterministic(t *testing.T) {
	c, err := NewDeterministic()
	if err != nil {
		t.Fatalf("NewDeterministic() error: %v", err)
	}

	v := map[string]any{
		"b": extjson.NewSet("z", "y", "x"),
		"a": extjson.Date{Year: 2024, Month: time.March, Day: 1},
		"c": 1.5,
	}

	first, err := c.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	for range 10 {
		again, err := c.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("deterministic output differs between calls")
		}
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := Must()

	var v any
	err := c.Unmarshal([]byte{0xff}, &v)
	if err == nil {
		t.Fatal("Unmarshal(invalid) should return error")
	}
	if !errors.Is(err, extjson.ErrUnmarshal) {
		t.Errorf("Unmarshal(invalid) error = %v, want ErrUnmarshal", err)
	}
}

func TestUnmarshal_Target(t *testing.T) {
	c := Must()

	data, err := c.Marshal(1.5)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if err := c.Unmarshal(data, nil); !errors.Is(err, extjson.ErrTarget) {
		t.Errorf("Unmarshal(nil) error = %v, want ErrTarget", err)
	}
}
