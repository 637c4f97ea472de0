package extjson

import "time"

// Override interfaces let a type take over its own encoding instead of going
// through the struct walk or the built-in registry. The walk checks them
// before reflecting on the value.

// TreeMarshaler lets a type supply its own JSON-native tree, bypassing the
// struct walk. The returned tree is walked again, so it may contain extra values.
type TreeMarshaler interface {
	MarshalTree() (any, error)
}

// Zoner is implemented by timezone types that can present themselves as a
// *time.Location. All of them encode through the timezone encoder.
// A nil location means the value is not a timezone after all.
type Zoner interface {
	Location() *time.Location
}
