package extjson

import (
	"math"
	"time"
)

const (
	microsPerSecond = int64(1_000_000)
	microsPerDay    = 86400 * microsPerSecond
)

// encodeDuration emits the normalized form: days may be negative,
// 0 <= seconds < 86400 and 0 <= microseconds < 1000000.
func encodeDuration(v any, _ *options) (map[string]any, error) {
	total := int64(v.(time.Duration) / time.Microsecond)
	days := floorDiv(total, microsPerDay)
	rem := total - days*microsPerDay
	return map[string]any{
		TypeKey:        string(TagDuration),
		"days":         days,
		"seconds":      rem / microsPerSecond,
		"microseconds": rem % microsPerSecond,
	}, nil
}

// durationUnits lists every accepted field with its size in microseconds.
var durationUnits = []struct {
	name   string
	micros float64
}{
	{"weeks", float64(7 * microsPerDay)},
	{"days", float64(microsPerDay)},
	{"hours", float64(3600 * microsPerSecond)},
	{"minutes", float64(60 * microsPerSecond)},
	{"seconds", float64(microsPerSecond)},
	{"milliseconds", 1000},
	{"microseconds", 1},
}

// maxDurationMicros is the largest magnitude a time.Duration can hold, in microseconds.
const maxDurationMicros = float64(math.MaxInt64 / int64(time.Microsecond))

func decodeDuration(r *fieldReader, _ *options) (any, error) {
	var whole int64
	var frac float64
	for _, u := range durationUnits {
		v, ok := r.Raw(u.name)
		if !ok {
			continue
		}
		if n, isInt := asInt(v); isInt {
			if math.Abs(float64(n))*u.micros > maxDurationMicros {
				return nil, newFieldError(ErrFieldRange, TagDuration, u.name, nil)
			}
			whole += n * int64(u.micros)
			if math.Abs(float64(whole)) > maxDurationMicros {
				return nil, newFieldError(ErrFieldRange, TagDuration, u.name, nil)
			}
			continue
		}
		f, ok := asFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, newFieldError(ErrFieldType, TagDuration, u.name, nil)
		}
		frac += f * u.micros
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	// Units overflowing toward opposite infinities sum to NaN.
	if math.IsNaN(frac) || math.IsInf(frac, 0) {
		return nil, newFieldError(ErrFieldRange, TagDuration, "", nil)
	}
	total := float64(whole) + math.Round(frac)
	if math.Abs(total) > maxDurationMicros {
		return nil, newFieldError(ErrFieldRange, TagDuration, "", nil)
	}
	return time.Duration(whole+int64(math.Round(frac))) * time.Microsecond, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
