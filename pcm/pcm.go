// Package pcm hides payloads in the least significant bits of 16-bit PCM
// WAV samples.
//
// One bit is stored per sample, across all channels in interleaved order.
// Only the addressed bit of each used sample changes; headers, extra chunks
// and every other byte of the file are preserved exactly.
package pcm

import (
	"bytes"
	"context"

	"github.com/zoobzio/stowaway"
)

// Carrier is the PCM sample carrier.
type Carrier struct {
	mode stowaway.AudioMode
}

// Option configures a Carrier.
type Option func(*Carrier)

// WithMode records the addressing mode. Sample mode toggles bit 0 of each
// sample's value and byte mode toggles bit 0 of its first encoded byte.
// WAV samples are little-endian, so both modes address the same bit and
// read each other's output. A mode IsValidAudioMode rejects leaves the
// Carrier in sample mode; Config.Validate reports it before a Carrier is
// built.
func WithMode(mode stowaway.AudioMode) Option {
	return func(c *Carrier) {
		if stowaway.IsValidAudioMode(mode) {
			c.mode = mode
		}
	}
}

// New returns a PCM Carrier in sample mode unless overridden.
func New(opts ...Option) *Carrier {
	c := &Carrier{mode: stowaway.AudioSample}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns stowaway.KindAudio.
func (*Carrier) Kind() stowaway.Kind {
	return stowaway.KindAudio
}

// Mode returns the addressing mode in use.
func (c *Carrier) Mode() stowaway.AudioMode {
	return c.mode
}

// Capacity returns the sample count minus the framing overhead.
func (*Carrier) Capacity(carrier []byte, env stowaway.Envelope) (int, error) {
	l, err := parseWAV(carrier)
	if err != nil {
		return 0, err
	}
	return max(l.samples()-env.Overhead(), 0), nil
}

// Hide writes the framed payload into sample LSBs of a copy of carrier.
func (c *Carrier) Hide(ctx context.Context, carrier, payload []byte, env stowaway.Envelope) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, err := parseWAV(carrier)
	if err != nil {
		return nil, err
	}

	bits, err := env.Frame(payload)
	if err != nil {
		return nil, err
	}
	return embed(carrier, l, bits)
}

// Extract reads one LSB per sample and unframes the result.
func (c *Carrier) Extract(ctx context.Context, carrier []byte, env stowaway.Envelope) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, err := parseWAV(carrier)
	if err != nil {
		return nil, err
	}
	return env.Unframe(collect(carrier, l))
}

func embed(carrier []byte, l layout, bits stowaway.Bits) ([]byte, error) {
	if len(bits) > l.samples() {
		return nil, &stowaway.CapacityError{Need: len(bits), Have: l.samples()}
	}
	out := bytes.Clone(carrier)
	for i, bit := range bits {
		idx := l.slot(i)
		out[idx] = out[idx]&^1 | bit
	}
	return out, nil
}

func collect(carrier []byte, l layout) stowaway.Bits {
	bits := make(stowaway.Bits, l.samples())
	for i := range bits {
		bits[i] = carrier[l.slot(i)] & 1
	}
	return bits
}
