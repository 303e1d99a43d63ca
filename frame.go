package stowaway

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Bits is an expanded bit sequence, one element per bit, each 0 or 1.
type Bits []byte

// Delimiter terminates a payload inside a bit carrier.
var Delimiter = Bits{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0}

// syncWord opens a length-prefixed frame.
const syncWord uint16 = 0xFFFE

// Framing converts payload bytes to carrier bits and back.
type Framing interface {
	// Frame expands payload into bits, including any framing overhead.
	Frame(payload []byte) Bits

	// Unframe recovers the payload from a carrier's bit sequence.
	// A sequence carrying no frame fails with ErrNoDelimiter.
	Unframe(bits Bits) ([]byte, error)

	// Overhead returns the number of framing bits added by Frame.
	Overhead() int
}

// ToBits expands each byte into 8 bits, most significant first.
func ToBits(data []byte) Bits {
	bits := make(Bits, 0, len(data)*8)
	return appendBits(bits, data)
}

func appendBits(bits Bits, data []byte) Bits {
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

// FromBits packs bits into bytes, most significant first.
// A trailing group of fewer than 8 bits is dropped.
func FromBits(bits Bits) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for _, bit := range bits[i*8 : i*8+8] {
			b = b<<1 | bit&1
		}
		out[i] = b
	}
	return out
}

// DelimiterFraming terminates the payload with Delimiter.
// A payload whose own bits contain the delimiter pattern is truncated on
// extraction at the first match.
type DelimiterFraming struct{}

// Frame returns the payload bits followed by Delimiter.
func (DelimiterFraming) Frame(payload []byte) Bits {
	bits := make(Bits, 0, len(payload)*8+len(Delimiter))
	bits = appendBits(bits, payload)
	return append(bits, Delimiter...)
}

// Unframe returns the bytes preceding the first delimiter match.
func (DelimiterFraming) Unframe(bits Bits) ([]byte, error) {
	end := bytes.Index(bits, Delimiter)
	if end < 0 {
		return nil, ErrNoDelimiter
	}
	return FromBits(bits[:end]), nil
}

// Overhead returns the delimiter length.
func (DelimiterFraming) Overhead() int {
	return len(Delimiter)
}

// LengthPrefixedFraming writes a 16-bit sync word and a 32-bit big-endian
// byte length ahead of the payload. Payload content never truncates.
type LengthPrefixedFraming struct{}

const lengthPrefixBits = 48

// Frame returns sync word, length and payload bits.
func (LengthPrefixedFraming) Frame(payload []byte) Bits {
	var header [6]byte
	binary.BigEndian.PutUint16(header[:2], syncWord)
	binary.BigEndian.PutUint32(header[2:], uint32(len(payload))) // #nosec G115 -- carriers cap payload size far below 4GiB
	bits := make(Bits, 0, lengthPrefixBits+len(payload)*8)
	bits = appendBits(bits, header[:])
	return appendBits(bits, payload)
}

// Unframe validates the sync word and returns exactly the announced bytes.
func (LengthPrefixedFraming) Unframe(bits Bits) ([]byte, error) {
	if len(bits) < lengthPrefixBits {
		return nil, fmt.Errorf("%w: frame header truncated", ErrNoDelimiter)
	}
	header := FromBits(bits[:lengthPrefixBits])
	if binary.BigEndian.Uint16(header[:2]) != syncWord {
		return nil, fmt.Errorf("%w: sync word missing", ErrNoDelimiter)
	}
	n := uint64(binary.BigEndian.Uint32(header[2:]))
	if n*8 > uint64(len(bits)-lengthPrefixBits) {
		return nil, fmt.Errorf("%w: frame announces %d bytes beyond carrier", ErrNoDelimiter, n)
	}
	return FromBits(bits[lengthPrefixBits : lengthPrefixBits+int(n)*8]), nil
}

// Overhead returns the header length.
func (LengthPrefixedFraming) Overhead() int {
	return lengthPrefixBits
}

// FramingFor returns the Framing implementing mode.
func FramingFor(mode FramingMode) (Framing, error) {
	switch mode {
	case FramingDelimiter, "":
		return DelimiterFraming{}, nil
	case FramingLengthPrefixed:
		return LengthPrefixedFraming{}, nil
	default:
		return nil, newConfigError("framing", string(mode))
	}
}
