package extjson

// TypeKey is the reserved object key marking a tagged object.
// Any decoded object carrying this key is treated as a candidate extra value.
const TypeKey = "__type__"

// Tag identifies an extra type on the wire.
type Tag string

const (
	// TagDate encodes Date.
	TagDate Tag = "datetime.date"

	// TagTime encodes TimeOfDay.
	TagTime Tag = "datetime.time"

	// TagDateTime encodes time.Time.
	TagDateTime Tag = "datetime.datetime"

	// TagDuration encodes time.Duration.
	TagDuration Tag = "datetime.timedelta"

	// TagTimezone encodes *time.Location.
	TagTimezone Tag = "datetime.timezone"

	// TagSet encodes Set.
	TagSet Tag = "set"

	// TagFrozenSet encodes FrozenSet.
	TagFrozenSet Tag = "frozenset"

	// TagComplex encodes complex128 and complex64.
	TagComplex Tag = "complex"
)

// pickleKey carries the escape-hatch blob on timezone objects.
const pickleKey = "__pickle__"

// validTags contains every tag the decoder registry understands.
var validTags = map[Tag]bool{
	TagDate:      true,
	TagTime:      true,
	TagDateTime:  true,
	TagDuration:  true,
	TagTimezone:  true,
	TagSet:       true,
	TagFrozenSet: true,
	TagComplex:   true,
}

// IsValidTag returns true if the tag is one of the built-in extra types.
func IsValidTag(tag Tag) bool {
	return validTags[tag]
}

// Tags returns the built-in tags in a stable order.
func Tags() []Tag {
	return []Tag{
		TagDate,
		TagTime,
		TagDateTime,
		TagDuration,
		TagTimezone,
		TagSet,
		TagFrozenSet,
		TagComplex,
	}
}

// IsTagged reports whether m carries the reserved type key.
func IsTagged(m map[string]any) bool {
	_, ok := m[TypeKey]
	return ok
}
