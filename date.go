package extjson

import (
	"fmt"
	"reflect"
	"time"
)

const (
	minYear = 1
	maxYear = 9999
)

func encodeDate(v any, _ *options) (map[string]any, error) {
	d := v.(Date)
	if err := validDate(d.Year, int(d.Month), d.Day); err != nil {
		return nil, &RangeError{Type: reflect.TypeOf(d), Reason: err.Error()}
	}
	return map[string]any{
		TypeKey: string(TagDate),
		"year":  d.Year,
		"month": int(d.Month),
		"day":   d.Day,
	}, nil
}

func decodeDate(r *fieldReader, _ *options) (any, error) {
	year := r.Int("year", true, 0)
	month := r.Int("month", true, 0)
	day := r.Int("day", true, 0)
	if err := r.done(); err != nil {
		return nil, err
	}
	if err := validDate(int(year), int(month), int(day)); err != nil {
		return nil, newFieldError(ErrFieldRange, TagDate, "", err)
	}
	return Date{Year: int(year), Month: time.Month(month), Day: int(day)}, nil
}

// validDate checks a civil date against the proleptic Gregorian calendar.
func validDate(year, month, day int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("year %d is out of range", year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be in 1..12")
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return fmt.Errorf("day is out of range for month")
	}
	return nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
