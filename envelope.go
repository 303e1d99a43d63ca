package stowaway

import (
	"errors"
	"fmt"
)

// Envelope holds the per-call transforms between a caller's payload and a
// carrier. Compression and sealing run before framing on hide and in
// reverse on extract. The zero Envelope passes payloads through unchanged
// and frames them with Delimiter.
type Envelope struct {
	enc         Encryptor
	framing     Framing
	compression Compression
}

// EnvelopeOption configures an Envelope.
type EnvelopeOption func(*envelopeConfig)

type envelopeConfig struct {
	cipher        CipherAlgo
	framing       FramingMode
	compression   Compression
	ageWorkFactor int
}

// WithCipher selects the cipher used when a password is present.
func WithCipher(algo CipherAlgo) EnvelopeOption {
	return func(c *envelopeConfig) { c.cipher = algo }
}

// WithFraming selects the bit framing.
func WithFraming(mode FramingMode) EnvelopeOption {
	return func(c *envelopeConfig) { c.framing = mode }
}

// WithCompression selects the payload compression.
func WithCompression(comp Compression) EnvelopeOption {
	return func(c *envelopeConfig) { c.compression = comp }
}

// WithAgeWorkFactor sets the scrypt log2 cost for CipherAge.
func WithAgeWorkFactor(logN int) EnvelopeOption {
	return func(c *envelopeConfig) { c.ageWorkFactor = logN }
}

// NewEnvelope builds an Envelope. An empty password disables sealing.
func NewEnvelope(password string, opts ...EnvelopeOption) (Envelope, error) {
	cfg := envelopeConfig{
		cipher:      CipherFernet,
		framing:     FramingDelimiter,
		compression: CompressionNone,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !IsValidCompression(cfg.compression) {
		return Envelope{}, newConfigError("compression", string(cfg.compression))
	}
	framing, err := FramingFor(cfg.framing)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		framing:     framing,
		compression: cfg.compression,
	}
	if password != "" {
		env.enc, err = NewEncryptor(cfg.cipher, password, cfg.ageWorkFactor)
		if err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}

// Sealed reports whether payloads are encrypted.
func (e Envelope) Sealed() bool {
	return e.enc != nil
}

// Seal compresses and, when a password is set, encrypts payload.
func (e Envelope) Seal(payload []byte) ([]byte, error) {
	data, err := compress(e.compression, payload)
	if err != nil {
		return nil, err
	}
	if e.enc == nil {
		return data, nil
	}
	return e.enc.Encrypt(data)
}

// Open reverses Seal. A wrong password or a non-token input wraps
// ErrDecryptionFailed.
func (e Envelope) Open(data []byte) ([]byte, error) {
	if e.enc != nil {
		var err error
		if data, err = e.enc.Decrypt(data); err != nil {
			if !errors.Is(err, ErrDecryptionFailed) {
				err = fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
			}
			return nil, err
		}
	}
	return decompress(e.compression, data)
}

// Frame seals payload and expands it into framed carrier bits.
func (e Envelope) Frame(payload []byte) (Bits, error) {
	data, err := e.Seal(payload)
	if err != nil {
		return nil, err
	}
	return e.framingOrDefault().Frame(data), nil
}

// Unframe recovers a sealed payload from carrier bits and opens it.
// Bits without a frame fail with ErrNoHiddenData joined to ErrNoDelimiter.
func (e Envelope) Unframe(bits Bits) ([]byte, error) {
	data, err := e.framingOrDefault().Unframe(bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoHiddenData, err)
	}
	return e.Open(data)
}

// Overhead returns the framing overhead in bits.
func (e Envelope) Overhead() int {
	return e.framingOrDefault().Overhead()
}

func (e Envelope) framingOrDefault() Framing {
	if e.framing == nil {
		return DelimiterFraming{}
	}
	return e.framing
}
