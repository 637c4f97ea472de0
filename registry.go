package extjson

import (
	"reflect"
	"time"
)

// encodeFunc turns one extra value into its tagged object.
type encodeFunc func(v any, o *options) (map[string]any, error)

// decodeFunc rebuilds one extra value from the fields of a tagged object.
type decodeFunc func(r *fieldReader, o *options) (any, error)

// encoders maps concrete types to their encoder. Read-only after init.
var encoders = map[reflect.Type]encodeFunc{
	reflect.TypeFor[Date]():           encodeDate,
	reflect.TypeFor[TimeOfDay]():      encodeTimeOfDay,
	reflect.TypeFor[time.Time]():      encodeDateTime,
	reflect.TypeFor[time.Duration]():  encodeDuration,
	reflect.TypeFor[*time.Location](): encodeTimezone,
	reflect.TypeFor[Set]():            encodeSet,
	reflect.TypeFor[FrozenSet]():      encodeFrozenSet,
	reflect.TypeFor[complex128]():     encodeComplex,
	reflect.TypeFor[complex64]():      encodeComplex,
}

// decoders maps tags to their decoder. Read-only after init.
var decoders = map[Tag]decodeFunc{
	TagDate:      decodeDate,
	TagTime:      decodeTimeOfDay,
	TagDateTime:  decodeDateTime,
	TagDuration:  decodeDuration,
	TagTimezone:  decodeTimezone,
	TagSet:       decodeSet,
	TagFrozenSet: decodeFrozenSet,
	TagComplex:   decodeComplex,
}

// lookupEncoder finds the encoder for v. Timezone-like values resolve to the
// *time.Location encoder and are returned as the argument it expects.
func lookupEncoder(v any) (encodeFunc, any, bool) {
	if fn, ok := encoders[reflect.TypeOf(v)]; ok {
		return fn, v, true
	}
	switch z := v.(type) {
	case time.Location:
		return encodeTimezone, &z, true
	case Zoner:
		loc := z.Location()
		if loc == nil {
			return nil, nil, false
		}
		return encodeTimezone, loc, true
	}
	return nil, nil, false
}

// IsRegistered reports whether v has a built-in encoder.
func IsRegistered(v any) bool {
	_, _, ok := lookupEncoder(v)
	return ok
}
