package extjson

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
)

var testPickleKey = []byte("0123456789abcdef0123456789abcdef")

func loadZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) error: %v", name, err)
	}
	return loc
}

func TestPickle_OffByDefault(t *testing.T) {
	if AllowPickle() {
		t.Fatal("escape hatch should be off by default")
	}
	data, err := Marshal(loadZone(t, "Europe/Paris"))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if strings.Contains(string(data), pickleKey) {
		t.Errorf("Marshal() = %s, should not carry a blob", data)
	}
}

func TestPickle_RoundTrip(t *testing.T) {
	paris := loadZone(t, "Europe/Paris")
	opt := WithConfig(Config{AllowPickle: true})

	data, err := Marshal(paris, opt)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), pickleKey) {
		t.Fatalf("Marshal() = %s, want a blob", data)
	}

	got, err := Unmarshal(data, opt)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if loc, ok := got.(*time.Location); !ok || loc.String() != "Europe/Paris" {
		t.Errorf("Unmarshal() = %v, want Europe/Paris", got)
	}

	// Without the hatch the blob is ignored.
	got, err = Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if loc, ok := got.(*time.Location); !ok || loc.String() == "Europe/Paris" {
		t.Errorf("Unmarshal() = %v, want a fixed zone", got)
	}
}

func TestPickle_FixedZonesKeepTheirOffset(t *testing.T) {
	opt := WithConfig(Config{AllowPickle: true})
	tests := []struct {
		name string
		loc  *time.Location
	}{
		{"named utc", time.FixedZone("UTC", 3600)},
		{"named local", time.FixedZone("Local", -(9*3600 + 30*60))},
		{"named after a database zone", time.FixedZone("CET", 3600)},
		{"named after a region", time.FixedZone("Europe/Paris", 4*3600)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.loc, opt)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			got, err := Unmarshal(data, opt)
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			loc, ok := got.(*time.Location)
			if !ok {
				t.Fatalf("Unmarshal() = %#v, want *time.Location", got)
			}
			// Summer and winter agree: no daylight saving was picked up.
			for _, at := range []time.Time{
				time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
				time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC),
			} {
				gotName, gotOff := at.In(loc).Zone()
				wantName, wantOff := at.In(tt.loc).Zone()
				if gotName != wantName || gotOff != wantOff {
					t.Errorf("zone at %s = %s %d, want %s %d", at.Month(), gotName, gotOff, wantName, wantOff)
				}
			}
		})
	}
}

func TestPickle_DateTimeKeepsTransitions(t *testing.T) {
	ny := loadZone(t, "America/New_York")
	winter := time.Date(2024, time.January, 15, 9, 0, 0, 0, ny)
	opt := WithConfig(Config{AllowPickle: true})

	data, err := Marshal(winter, opt)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err := Unmarshal(data, opt)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	// A restored named zone still knows about daylight saving time.
	summer := got.(time.Time).AddDate(0, 6, 0)
	if name, _ := summer.Zone(); name != "EDT" {
		t.Errorf("zone six months later = %s, want EDT", name)
	}
}

func TestPickle_ProcessWideFlag(t *testing.T) {
	SetAllowPickle(true)
	t.Cleanup(func() { SetAllowPickle(false) })

	if !AllowPickle() || !DefaultConfig().AllowPickle {
		t.Fatal("SetAllowPickle(true) not visible")
	}

	paris := loadZone(t, "Europe/Paris")
	data, err := Marshal(paris)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.(*time.Location).String() != "Europe/Paris" {
		t.Errorf("Unmarshal() = %v, want Europe/Paris", got)
	}

	// A per-call config overrides the process-wide flag.
	data, err = Marshal(paris, WithConfig(Config{}))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if strings.Contains(string(data), pickleKey) {
		t.Errorf("Marshal() = %s, should not carry a blob", data)
	}
}

func TestPickle_Key(t *testing.T) {
	paris := loadZone(t, "Europe/Paris")
	signed := WithConfig(Config{AllowPickle: true, PickleKey: testPickleKey})

	data, err := Marshal(paris, signed)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err := Unmarshal(data, signed)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if loc, ok := got.(*time.Location); !ok || loc.String() != "Europe/Paris" {
		t.Errorf("Unmarshal() = %v, want Europe/Paris", got)
	}

	// A different key rejects the blob and the object falls back.
	other := WithConfig(Config{AllowPickle: true, PickleKey: []byte("another key of thirty-two bytes!")})
	got, err = Unmarshal(data, other)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if m, ok := got.(map[string]any); !ok || !IsTagged(m) {
		t.Errorf("Unmarshal() = %#v, want the raw object", got)
	}

	// Unsigned blobs are rejected when a key is configured.
	unsigned, err := Marshal(paris, WithConfig(Config{AllowPickle: true}))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	got, err = Unmarshal(unsigned, signed)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := got.(map[string]any); !ok {
		t.Errorf("Unmarshal() = %#v, want the raw object", got)
	}
}

func TestDecodePickle(t *testing.T) {
	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{"utc", time.UTC, "UTC"},
		{"local", time.Local, "Local"},
		{"fixed", time.FixedZone("CEST", 7200), "CEST"},
		{"unnamed", time.FixedZone("", -3600), ""},
		{"fixed named utc", time.FixedZone("UTC", 3600), "UTC"},
		{"fixed named local", time.FixedZone("Local", 5*3600+45*60), "Local"},
		{"fixed named after a database zone", time.FixedZone("CET", 3600), "CET"},
		{"database zone", loadZone(t, "Europe/Paris"), "Europe/Paris"},
		{"database zone without transitions", loadZone(t, "Etc/GMT+5"), "Etc/GMT+5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Now()
			_, off := now.In(tt.loc).Zone()
			blob, err := encodePickle(tt.loc, off, now, nil)
			if err != nil {
				t.Fatalf("encodePickle() error: %v", err)
			}
			loc, err := decodePickle(blob, off, nil)
			if err != nil {
				t.Fatalf("decodePickle() error: %v", err)
			}
			if loc.String() != tt.want {
				t.Errorf("decodePickle() = %q, want %q", loc.String(), tt.want)
			}
			if _, got := time.Now().In(loc).Zone(); got != off {
				t.Errorf("offset = %d, want %d", got, off)
			}
		})
	}
}

func TestDecodePickle_Invalid(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "!!!"},
		{"not msgpack", "AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodePickle(tt.blob, 0, nil); err == nil {
				t.Error("decodePickle() should return error")
			}
		})
	}

	blob, err := encodePickle(time.UTC, 0, time.Now(), nil)
	if err != nil {
		t.Fatalf("encodePickle() error: %v", err)
	}
	if _, err := decodePickle(blob, 0, testPickleKey); !errors.Is(err, errPickleSum) {
		t.Errorf("decodePickle(unsigned) error = %v, want errPickleSum", err)
	}
	if _, err := decodePickle(blob, 3600, nil); !errors.Is(err, errPickleOffset) {
		t.Errorf("decodePickle(other offset) error = %v, want errPickleOffset", err)
	}
}

func TestIsFixedZone(t *testing.T) {
	ref := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		loc  *time.Location
		want bool
	}{
		{"utc", time.UTC, false},
		{"local", time.Local, false},
		{"unknown name", time.FixedZone("CEST", 7200), true},
		{"utc name with an offset", time.FixedZone("UTC", 3600), true},
		{"database name with daylight saving", time.FixedZone("CET", 3600), true},
		{"database zone", loadZone(t, "Europe/Paris"), false},
		{"database zone without transitions", loadZone(t, "Etc/GMT+5"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, off := ref.In(tt.loc).Zone()
			if got := isFixedZone(tt.loc, off, ref); got != tt.want {
				t.Errorf("isFixedZone(%s) = %v, want %v", tt.loc, got, tt.want)
			}
		})
	}
}

func TestZoneSum_KeyTooLong(t *testing.T) {
	if _, err := zoneSum(make([]byte, 65), zoneRecord{Zone: "UTC"}); err == nil {
		t.Error("zoneSum() should reject keys over 64 bytes")
	}
}

func TestPickle_BadBlobFallsBack(t *testing.T) {
	in := `{"__type__":"datetime.timezone","offset":{"__type__":"datetime.timedelta","seconds":0},"name":"UTC","__pickle__":"!!!"}`

	got, err := Unmarshal([]byte(in), WithConfig(Config{AllowPickle: true}), WithContext(context.Background()))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if _, ok := got.(map[string]any); !ok {
		t.Errorf("Unmarshal() = %#v, want the raw object", got)
	}

	// Off, the blob is accepted as a field and ignored.
	got, err = Unmarshal([]byte(in))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got != time.UTC {
		t.Errorf("Unmarshal() = %#v, want UTC", got)
	}
}
