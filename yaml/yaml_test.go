package yaml

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zoobzio/extjson"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	original := map[string]any{
		"due":   extjson.Date{Year: 2013, Month: time.October, Day: 18},
		"every": 36 * time.Hour,
		"tags":  extjson.NewSet("a", "b"),
		"name":  "test",
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
	if m["every"] != original["every"] {
		t.Errorf("every = %v, want %v", m["every"], original["every"])
	}
	tags, ok := m["tags"].(extjson.Set)
	if !ok || !tags.Equal(extjson.NewSet("a", "b")) {
		t.Errorf("tags = %v, want set of a and b", m["tags"])
	}
	if m["name"] != "test" {
		t.Errorf("name = %v, want test", m["name"])
	}
}

func TestMarshal_TaggedObject(t *testing.T) {
	c := New()

	data, err := c.Marshal(extjson.Date{Year: 2013, Month: time.October, Day: 18})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := "__type__: datetime.date\nday: 18\nmonth: 10\nyear: 2013\n"
	if string(data) != want {
		t.Errorf("Marshal() = %q, want %q", data, want)
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v any
	err := c.Unmarshal([]byte("name: [invalid"), &v)
	if err == nil {
		t.Fatal("Unmarshal(invalid) should return error")
	}
	if !errors.Is(err, extjson.ErrUnmarshal) {
		t.Errorf("Unmarshal(invalid) error = %v, want ErrUnmarshal", err)
	}
}

func TestUnmarshal_Target(t *testing.T) {
	c := New()

	var v map[string]any
	if err := c.Unmarshal([]byte("name: test"), &v); !errors.Is(err, extjson.ErrTarget) {
		t.Errorf("Unmarshal(*map) error = %v, want ErrTarget", err)
	}
}

func TestMarshalNil(t *testing.T) {
	c := New()

	data, err := c.Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil) error: %v", err)
	}

	// YAML represents nil as "null\n"
	if string(data) != "null\n" {
		t.Errorf("Marshal(nil) = %q, want %q", data, "null\n")
	}
}

func TestMarshal_Unsupported(t *testing.T) {
	c := New()

	_, err := c.Marshal(make(chan int))
	if !errors.Is(err, extjson.ErrUnsupportedType) {
		t.Errorf("Marshal(chan) error = %v, want ErrUnsupportedType", err)
	}
}

// --- Malformed input tests ---

func TestUnmarshal_EmptyInput(t *testing.T) {
	c := New()

	var v any
	// Empty input should not error in YAML (results in nil)
	if err := c.Unmarshal([]byte{}, &v); err != nil {
		t.Errorf("Unmarshal(empty) error: %v", err)
	}
	if v != nil {
		t.Errorf("Unmarshal(empty) = %v, want nil", v)
	}
}

func TestUnmarshal_BadTaggedObject(t *testing.T) {
	c := New()

	testCases := []struct {
		name  string
		input string
	}{
		{"unknown tag", "__type__: no.such.type\nx: 1"},
		{"missing field", "__type__: datetime.date\nyear: 2013\nmonth: 10"},
		{"out of range", "__type__: datetime.date\nyear: 2013\nmonth: 13\nday: 1"},
		{"unexpected field", "__type__: complex\nreal: 1\nimag: 2\nbad_arg: 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var v any
			if err := c.Unmarshal([]byte(tc.input), &v); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			m, ok := v.(map[string]any)
			if !ok {
				t.Fatalf("Unmarshal() = %T, want map[string]any", v)
			}
			if !extjson.IsTagged(m) {
				t.Error("fallback object should keep its tag")
			}
		})
	}
}

func TestUnmarshal_Anchors(t *testing.T) {
	c := New()

	// An anchored tagged object resolves at every alias.
	input := `start: &start
  __type__: datetime.date
  year: 2024
  month: 3
  day: 1
copy: *start`

	var v any
	if err := c.Unmarshal([]byte(input), &v); err != nil {
		t.Fatalf("Unmarshal(anchors) error: %v", err)
	}

	m := v.(map[string]any)
	want := extjson.Date{Year: 2024, Month: time.March, Day: 1}
	if m["start"] != want {
		t.Errorf("start = %v, want %v", m["start"], want)
	}
	if m["copy"] != want {
		t.Errorf("copy = %v, want %v", m["copy"], want)
	}
}

func TestMarshal_SpecialCharacters(t *testing.T) {
	c := New()

	testCases := []string{
		"colon: value",
		"hash # comment",
		"- list item",
		"multi\nline",
		"unicode: 日本語",
	}

	for _, text := range testCases {
		t.Run(strings.SplitN(text, "\n", 2)[0], func(t *testing.T) {
			data, err := c.Marshal(map[string]any{"text": text})
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			var v any
			if err := c.Unmarshal(data, &v); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if got := v.(map[string]any)["text"]; got != text {
				t.Errorf("round-trip = %q, want %q", got, text)
			}
		})
	}
}

func TestObjectHook(t *testing.T) {
	c := New(extjson.WithObjectHook(func(m map[string]any) any {
		if v, ok := m["wrapped"]; ok && len(m) == 1 {
			return v
		}
		return m
	}))

	var v any
	if err := c.Unmarshal([]byte("wrapped: 42"), &v); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if v != 42 {
		t.Errorf("Unmarshal() = %v (%T), want 42", v, v)
	}
}
