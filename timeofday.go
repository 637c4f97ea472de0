package extjson

import (
	"fmt"
	"reflect"
	"time"
)

func encodeTimeOfDay(v any, _ *options) (map[string]any, error) {
	t := v.(TimeOfDay)
	m := map[string]any{
		TypeKey:       string(TagTime),
		"hour":        t.Hour,
		"minute":      t.Minute,
		"second":      t.Second,
		"microsecond": t.Microsecond,
		"tzinfo":      nil,
		"fold":        t.Fold,
	}
	// the walk encodes the location through the timezone encoder
	if t.Location != nil {
		m["tzinfo"] = t.Location
	}
	return m, nil
}

func decodeTimeOfDay(r *fieldReader, _ *options) (any, error) {
	t := TimeOfDay{
		Hour:        r.Range("hour", false, 0, 23),
		Minute:      r.Range("minute", false, 0, 59),
		Second:      r.Range("second", false, 0, 59),
		Microsecond: r.Range("microsecond", false, 0, 999999),
		Location:    r.Location("tzinfo"),
		Fold:        r.Range("fold", false, 0, 1),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return t, nil
}

func encodeDateTime(v any, o *options) (map[string]any, error) {
	t := v.(time.Time)
	if y := t.Year(); y < minYear || y > maxYear {
		return nil, &RangeError{Type: reflect.TypeOf(t), Reason: fmt.Sprintf("year %d is out of range", y)}
	}
	tz, err := encodeLocation(t.Location(), t, o)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		TypeKey:       string(TagDateTime),
		"year":        t.Year(),
		"month":       int(t.Month()),
		"day":         t.Day(),
		"hour":        t.Hour(),
		"minute":      t.Minute(),
		"second":      t.Second(),
		"microsecond": t.Nanosecond() / 1000,
		"tzinfo":      tz,
	}, nil
}

func decodeDateTime(r *fieldReader, _ *options) (any, error) {
	year := int(r.Int("year", true, 0))
	month := int(r.Int("month", true, 0))
	day := int(r.Int("day", true, 0))
	hour := r.Range("hour", false, 0, 23)
	minute := r.Range("minute", false, 0, 59)
	second := r.Range("second", false, 0, 59)
	micro := r.Range("microsecond", false, 0, 999999)
	loc := r.Location("tzinfo")
	r.Range("fold", false, 0, 1)
	if err := r.done(); err != nil {
		return nil, err
	}
	if err := validDate(year, month, day); err != nil {
		return nil, newFieldError(ErrFieldRange, TagDateTime, "", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, micro*1000, loc), nil
}
