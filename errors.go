package stowaway

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnsupportedCarrier indicates the carrier bytes could not be parsed
	// as the requested kind, or the kind has no registered carrier.
	ErrUnsupportedCarrier = errors.New("unsupported carrier")

	// ErrUnsupportedSampleFormat indicates a WAV file whose samples are not
	// 16-bit linear PCM.
	ErrUnsupportedSampleFormat = errors.New("unsupported sample format")

	// ErrCapacityExceeded indicates the framed payload needs more slots than
	// the carrier offers.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrNoDelimiter indicates a bit sequence without an end marker.
	ErrNoDelimiter = errors.New("no delimiter found")

	// ErrNoHiddenData indicates the carrier holds no recoverable payload.
	ErrNoHiddenData = errors.New("no hidden data found")

	// ErrNoMetadata indicates a PDF without an Info dictionary.
	ErrNoMetadata = errors.New("no metadata found")

	// ErrDecryptionFailed indicates a wrong password or a corrupt token.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrCorruptPayload indicates a payload that could not be decompressed.
	ErrCorruptPayload = errors.New("corrupt payload")

	// ErrMetadataWrite indicates a metadata strategy could not write its fields.
	ErrMetadataWrite = errors.New("metadata write failed")

	// ErrMetadataRead indicates a metadata strategy could not read its fields.
	ErrMetadataRead = errors.New("metadata read failed")

	// ErrHidingFailed indicates every metadata strategy failed to write.
	ErrHidingFailed = errors.New("hiding failed")

	// ErrExtractionFailed indicates every metadata strategy failed to read.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrInvalidConfig indicates a configuration value outside its allowed set.
	ErrInvalidConfig = errors.New("invalid config")
)

// CapacityError reports a payload that does not fit its carrier.
type CapacityError struct {
	Need int // Framed bits required
	Have int // Bits available
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: need %d bits, have %d", ErrCapacityExceeded.Error(), e.Need, e.Have)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// ConfigError represents a rejected configuration value.
type ConfigError struct {
	Err   error  // Underlying sentinel error (ErrInvalidConfig, ErrUnsupportedCarrier)
	Field string // Config field that triggered the error
	Value string // Offending value
}

func (e *ConfigError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s: %s %q", e.Err.Error(), e.Field, e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Field)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StrategyError represents a single metadata strategy failure.
type StrategyError struct {
	Err      error  // Underlying sentinel error (ErrMetadataWrite, ErrNoHiddenData, etc.)
	Strategy string // Strategy name
	Op       string // hide or extract
	Cause    error  // Original error from the document layer
}

func (e *StrategyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Strategy, e.Op, e.Err.Error(), e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Strategy, e.Op, e.Err.Error())
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// ChainError aggregates the failures of every strategy in a resolver chain.
type ChainError struct {
	Err      error   // ErrHidingFailed or ErrExtractionFailed
	Op       string  // hide or extract
	Attempts []error // One entry per strategy, in order
}

func (e *ChainError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Error()
	}
	return fmt.Sprintf("%s after %d strategies: %s", e.Err.Error(), len(e.Attempts), strings.Join(parts, "; "))
}

// Unwrap exposes the sentinel and every attempt to errors.Is and errors.As.
func (e *ChainError) Unwrap() []error {
	return append([]error{e.Err}, e.Attempts...)
}

// NewStrategyError creates a StrategyError. Carrier packages use it to
// classify document failures for the resolver.
func NewStrategyError(sentinel error, strategy, op string, cause error) error {
	return &StrategyError{
		Err:      sentinel,
		Strategy: strategy,
		Op:       op,
		Cause:    cause,
	}
}

// newConfigError creates a ConfigError for a rejected value.
func newConfigError(field, value string) error {
	return &ConfigError{
		Err:   ErrInvalidConfig,
		Field: field,
		Value: value,
	}
}
