package stowaway

import (
	"bytes"
	"errors"
	"testing"
)

func bitString(b Bits) string {
	s := make([]byte, len(b))
	for i, v := range b {
		s[i] = '0' + v
	}
	return string(s)
}

func TestDelimiterFraming_Frame(t *testing.T) {
	got := bitString(DelimiterFraming{}.Frame([]byte("Hi")))
	want := "0100100001101001" + "1111111111111110"
	if got != want {
		t.Errorf("Frame(Hi) = %s, want %s", got, want)
	}

	if got := bitString(DelimiterFraming{}.Frame(nil)); got != "1111111111111110" {
		t.Errorf("Frame(empty) = %s, want bare delimiter", got)
	}
}

func TestDelimiterFraming_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", []byte{}},
		{"ascii", []byte("Hello, World!")},
		{"binary", []byte{0x00, 0x01, 0x80, 0x7F}},
		{"unicode", []byte("héllo wörld ✓")},
	}

	f := DelimiterFraming{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits := f.Frame(tt.payload)
			if len(bits) != len(tt.payload)*8+f.Overhead() {
				t.Fatalf("len(bits) = %d, want %d", len(bits), len(tt.payload)*8+f.Overhead())
			}
			// Simulate unused carrier slots after the frame.
			bits = append(bits, 0, 1, 0, 1, 1)
			got, err := f.Unframe(bits)
			if err != nil {
				t.Fatalf("Unframe failed: %v", err)
			}
			if !bytes.Equal(got, tt.payload) {
				t.Errorf("Unframe = %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestDelimiterFraming_NoDelimiter(t *testing.T) {
	_, err := DelimiterFraming{}.Unframe(Bits{0, 1, 0, 1, 0, 1, 0, 1})
	if !errors.Is(err, ErrNoDelimiter) {
		t.Errorf("Unframe error = %v, want ErrNoDelimiter", err)
	}
}

func TestDelimiterFraming_CollisionTruncates(t *testing.T) {
	// 0xFF 0xFE is the delimiter itself.
	payload := []byte{'A', 0xFF, 0xFE, 'B'}
	got, err := DelimiterFraming{}.Unframe(DelimiterFraming{}.Frame(payload))
	if err != nil {
		t.Fatalf("Unframe failed: %v", err)
	}
	if !bytes.Equal(got, []byte{'A'}) {
		t.Errorf("Unframe = %v, want [A]", got)
	}
}

func TestDelimiterFraming_DropsPartialByte(t *testing.T) {
	bits := append(Bits{0, 1, 0, 0, 0, 0, 0, 1, 1, 0, 1}, Delimiter...)
	got, err := DelimiterFraming{}.Unframe(bits)
	if err != nil {
		t.Fatalf("Unframe failed: %v", err)
	}
	if !bytes.Equal(got, []byte{'A'}) {
		t.Errorf("Unframe = %v, want [A]", got)
	}
}

func TestLengthPrefixedFraming_RoundTrip(t *testing.T) {
	f := LengthPrefixedFraming{}
	payload := []byte{'A', 0xFF, 0xFE, 'B'}

	bits := f.Frame(payload)
	if len(bits) != len(payload)*8+48 {
		t.Fatalf("len(bits) = %d, want %d", len(bits), len(payload)*8+48)
	}

	got, err := f.Unframe(append(bits, 1, 1, 1, 1))
	if err != nil {
		t.Fatalf("Unframe failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Unframe = %v, want %v", got, payload)
	}
}

func TestLengthPrefixedFraming_Errors(t *testing.T) {
	f := LengthPrefixedFraming{}
	full := f.Frame([]byte("payload"))

	tests := []struct {
		name string
		bits Bits
	}{
		{"short header", full[:20]},
		{"no sync", make(Bits, 200)},
		{"truncated body", full[:len(full)-8]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.Unframe(tt.bits); !errors.Is(err, ErrNoDelimiter) {
				t.Errorf("Unframe error = %v, want ErrNoDelimiter", err)
			}
		})
	}
}

func TestFramingFor(t *testing.T) {
	if f, err := FramingFor(FramingDelimiter); err != nil || f.Overhead() != 16 {
		t.Errorf("FramingFor(delimiter) = %v, %v", f, err)
	}
	if f, err := FramingFor(FramingLengthPrefixed); err != nil || f.Overhead() != 48 {
		t.Errorf("FramingFor(length-prefixed) = %v, %v", f, err)
	}
	if _, err := FramingFor("morse"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("FramingFor(morse) error = %v, want ErrInvalidConfig", err)
	}
}
