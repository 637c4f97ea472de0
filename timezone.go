package extjson

import (
	"fmt"
	"time"
)

const maxOffset = 24 * time.Hour

func encodeTimezone(v any, o *options) (map[string]any, error) {
	return encodeLocation(v.(*time.Location), time.Now(), o)
}

// encodeLocation describes loc as seen at ref. The offset stays a
// time.Duration so the walk nests it as a timedelta object.
func encodeLocation(loc *time.Location, ref time.Time, o *options) (map[string]any, error) {
	name, offset := ref.In(loc).Zone()
	m := map[string]any{
		TypeKey:  string(TagTimezone),
		"offset": time.Duration(offset) * time.Second,
		"name":   nil,
	}
	if name != "" {
		m["name"] = name
	}
	if o.config.AllowPickle {
		blob, err := encodePickle(loc, offset, ref, o.config.PickleKey)
		if err != nil {
			return nil, err
		}
		m[pickleKey] = blob
		emitPickleEncoded(o.ctx, loc.String())
	}
	return m, nil
}

func decodeTimezone(r *fieldReader, o *options) (any, error) {
	offset := r.Duration("offset", true)
	name, hasName := r.OptString("name")
	blob, hasBlob := r.OptString(pickleKey)
	if err := r.done(); err != nil {
		return nil, err
	}
	if offset%time.Second != 0 || offset <= -maxOffset || offset >= maxOffset {
		return nil, newFieldError(ErrFieldRange, TagTimezone, "offset", nil)
	}

	if o.config.AllowPickle && hasBlob && blob != "" {
		loc, err := decodePickle(blob, int(offset/time.Second), o.config.PickleKey)
		if err != nil {
			return nil, newFieldError(ErrPickle, TagTimezone, pickleKey, err)
		}
		emitPickleRestored(o.ctx, loc.String())
		return loc, nil
	}

	return fixedZone(name, hasName, int(offset/time.Second)), nil
}

// fixedZone builds the generic zone for an offset. An unnamed zone is named
// after its offset; a zero offset named UTC (or unnamed) is time.UTC.
func fixedZone(name string, hasName bool, offset int) *time.Location {
	if offset == 0 && (!hasName || name == "UTC") {
		return time.UTC
	}
	if !hasName {
		name = offsetName(offset)
	}
	return time.FixedZone(name, offset)
}

// offsetName formats an offset as UTC+HH:MM, adding :SS when needed.
func offsetName(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h, m, s := offset/3600, offset/60%60, offset%60
	if s != 0 {
		return fmt.Sprintf("UTC%c%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, h, m)
}
