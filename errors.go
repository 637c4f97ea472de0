package extjson

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnsupportedType indicates a value has no encoder: neither the caller's
	// DefaultFunc nor the built-in registry can encode it. A DefaultFunc returns
	// an error wrapping this sentinel to hand a value on to the registry.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrMaxDepth indicates the encode walk nested deeper than the limit.
	ErrMaxDepth = errors.New("max depth exceeded")

	// ErrPayloadTooLarge indicates an input exceeded the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrTarget indicates a codec was asked to unmarshal into something other than *any.
	ErrTarget = errors.New("unmarshal target must be *any")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")

	// ErrTypeConflict indicates sentinel holds metadata for a same-named
	// struct from another package.
	ErrTypeConflict = errors.New("struct metadata belongs to another type")

	// ErrValueRange indicates an extra value the wire format cannot carry,
	// such as a datetime outside years 1 to 9999.
	ErrValueRange = errors.New("value out of range")
)

// Decode reasons. These never escape the public decode API; they are carried
// by fallback signals so callers can see why a tagged object stayed raw.
var (
	// ErrUnknownTag indicates the tag is not in the decoder registry.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrUnexpectedField indicates a field outside the tag's accepted set.
	ErrUnexpectedField = errors.New("unexpected field")

	// ErrMissingField indicates a required field is absent.
	ErrMissingField = errors.New("missing field")

	// ErrFieldType indicates a field holds a value of the wrong type.
	ErrFieldType = errors.New("wrong field type")

	// ErrFieldRange indicates a field value is outside its valid range.
	ErrFieldRange = errors.New("field out of range")

	// ErrPickle indicates the escape-hatch blob could not be restored.
	ErrPickle = errors.New("pickle restore failed")
)

// UnsupportedTypeError is returned by the encode path when a value cannot be encoded.
// Its message matches the engine's own unsupported-type error.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "json: unsupported type: " + typeName(e.Type)
}

// Is reports a match against ErrUnsupportedType.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// RangeError is returned by the encode path for an extra value outside the
// range its tagged object can carry, so the output would never decode.
type RangeError struct {
	Type   reflect.Type
	Reason string
}

func (e *RangeError) Error() string {
	return "json: unsupported value: " + typeName(e.Type) + ": " + e.Reason
}

// Is reports a match against ErrValueRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrValueRange
}

// FieldError describes why a tagged object could not be reconstructed.
type FieldError struct {
	Err   error  // Underlying sentinel error (ErrMissingField, etc.)
	Tag   Tag    // Tag of the object being decoded
	Field string // Field that triggered the error, if any
	Cause error  // Original error, if any
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Tag, e.Err.Error())
	if e.Field != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Field)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

// Unwrap exposes both the sentinel and the cause.
func (e *CodecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newFieldError creates a FieldError for a decode failure.
func newFieldError(sentinel error, tag Tag, field string, cause error) error {
	return &FieldError{
		Err:   sentinel,
		Tag:   tag,
		Field: field,
		Cause: cause,
	}
}

// NewCodecError creates a CodecError for marshal/unmarshal failures.
func NewCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}

// typeOf names v's type for signals.
func typeOf(v any) string {
	return typeName(reflect.TypeOf(v))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
