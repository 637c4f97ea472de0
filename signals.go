package extjson

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for extjson events.
var (
	SignalEncodeComplete = capitan.NewSignal("extjson.encode.complete", "Encode operation finished")
	SignalDecodeComplete = capitan.NewSignal("extjson.decode.complete", "Decode operation finished")
	SignalDecodeFallback = capitan.NewSignal("extjson.decode.fallback", "Tagged object left undecoded")
	SignalPickleEncoded  = capitan.NewSignal("extjson.pickle.encoded", "Timezone restore blob embedded")
	SignalPickleRestored = capitan.NewSignal("extjson.pickle.restored", "Timezone restored from blob")
)

// Keys for typed event data.
var (
	KeyTag       = capitan.NewStringKey("tag")
	KeyTypeName  = capitan.NewStringKey("type_name")
	KeyZone      = capitan.NewStringKey("zone")
	KeySize      = capitan.NewIntKey("size")
	KeyFallbacks = capitan.NewIntKey("fallbacks")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

// emitEncodeComplete emits an event when an encode call finishes.
func emitEncodeComplete(ctx context.Context, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

// emitDecodeComplete emits an event when a decode call finishes.
func emitDecodeComplete(ctx context.Context, size int, duration time.Duration, fallbacks int, err error) {
	fields := []capitan.Field{
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyFallbacks.Field(fallbacks),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}

// emitDecodeFallback emits an event when a tagged object stays raw.
// Fallback is part of normal decoding, so it is never reported as an error.
func emitDecodeFallback(ctx context.Context, tag string, reason error) {
	capitan.Emit(ctx, SignalDecodeFallback,
		KeyTag.Field(tag),
		KeyError.Field(reason),
	)
}

// emitPickleEncoded emits an event when a restore blob is written.
func emitPickleEncoded(ctx context.Context, zone string) {
	capitan.Emit(ctx, SignalPickleEncoded,
		KeyZone.Field(zone),
	)
}

// emitPickleRestored emits an event when a zone is restored from its blob.
func emitPickleRestored(ctx context.Context, zone string) {
	capitan.Emit(ctx, SignalPickleRestored,
		KeyZone.Field(zone),
	)
}
