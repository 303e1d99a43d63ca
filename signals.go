package stowaway

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for codec events.
var (
	SignalCodecCreated        = capitan.NewSignal("stowaway.codec.created", "Codec instantiated")
	SignalHideStart           = capitan.NewSignal("stowaway.hide.start", "Hide operation beginning")
	SignalHideComplete        = capitan.NewSignal("stowaway.hide.complete", "Hide operation finished")
	SignalExtractStart        = capitan.NewSignal("stowaway.extract.start", "Extract operation beginning")
	SignalExtractComplete     = capitan.NewSignal("stowaway.extract.complete", "Extract operation finished")
	SignalCapacityComplete    = capitan.NewSignal("stowaway.capacity.complete", "Capacity query finished")
	SignalStrategyAttempt     = capitan.NewSignal("stowaway.strategy.attempt", "Metadata strategy attempted")
	SignalStrategyFallthrough = capitan.NewSignal("stowaway.strategy.fallthrough", "Metadata strategy failed, trying next")
)

// Keys for typed event data.
var (
	KeyKind        = capitan.NewStringKey("kind")
	KeyKinds       = capitan.NewIntKey("kinds")
	KeyStrategy    = capitan.NewStringKey("strategy")
	KeyOperation   = capitan.NewStringKey("operation")
	KeySize        = capitan.NewIntKey("size")
	KeyPayloadSize = capitan.NewIntKey("payload_size")
	KeyCapacity    = capitan.NewIntKey("capacity")
	KeySealed      = capitan.NewStringKey("sealed")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitCodecCreated emits an event when a codec is created.
func emitCodecCreated(ctx context.Context, kinds int) {
	capitan.Emit(ctx, SignalCodecCreated,
		KeyKinds.Field(kinds),
	)
}

// emitHideStart emits an event when hide begins.
func emitHideStart(ctx context.Context, kind Kind, size, payloadSize int, sealed bool) {
	capitan.Emit(ctx, SignalHideStart,
		KeyKind.Field(string(kind)),
		KeySize.Field(size),
		KeyPayloadSize.Field(payloadSize),
		KeySealed.Field(yesNo(sealed)),
	)
}

// emitHideComplete emits an event when hide finishes.
func emitHideComplete(ctx context.Context, kind Kind, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyKind.Field(string(kind)),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalHideComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalHideComplete, fields...)
	}
}

// emitExtractStart emits an event when extract begins.
func emitExtractStart(ctx context.Context, kind Kind, size int, sealed bool) {
	capitan.Emit(ctx, SignalExtractStart,
		KeyKind.Field(string(kind)),
		KeySize.Field(size),
		KeySealed.Field(yesNo(sealed)),
	)
}

// emitExtractComplete emits an event when extract finishes.
func emitExtractComplete(ctx context.Context, kind Kind, payloadSize int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyKind.Field(string(kind)),
		KeyPayloadSize.Field(payloadSize),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalExtractComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalExtractComplete, fields...)
	}
}

// emitCapacityComplete emits an event when a capacity query finishes.
func emitCapacityComplete(ctx context.Context, kind Kind, size, capacity int, err error) {
	fields := []capitan.Field{
		KeyKind.Field(string(kind)),
		KeySize.Field(size),
		KeyCapacity.Field(capacity),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCapacityComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCapacityComplete, fields...)
	}
}

// emitStrategyAttempt emits an event before a strategy runs.
func emitStrategyAttempt(ctx context.Context, strategy, op string) {
	capitan.Emit(ctx, SignalStrategyAttempt,
		KeyStrategy.Field(strategy),
		KeyOperation.Field(op),
	)
}

// emitStrategyFallthrough emits an event when a strategy fails recoverably.
func emitStrategyFallthrough(ctx context.Context, strategy, op string, err error) {
	capitan.Emit(ctx, SignalStrategyFallthrough,
		KeyStrategy.Field(strategy),
		KeyOperation.Field(op),
		KeyError.Field(err),
	)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
