package stowaway

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
)

// byteCarrier treats every byte of the carrier as one LSB slot.
type byteCarrier struct{}

func (byteCarrier) Kind() Kind { return KindImage }

func (byteCarrier) Capacity(carrier []byte, env Envelope) (int, error) {
	return max(len(carrier)-env.Overhead(), 0), nil
}

func (byteCarrier) Hide(_ context.Context, carrier, payload []byte, env Envelope) ([]byte, error) {
	bits, err := env.Frame(payload)
	if err != nil {
		return nil, err
	}
	if len(bits) > len(carrier) {
		return nil, &CapacityError{Need: len(bits), Have: len(carrier)}
	}
	out := bytes.Clone(carrier)
	for i, b := range bits {
		out[i] = out[i]&^1 | b
	}
	return out, nil
}

func (byteCarrier) Extract(_ context.Context, carrier []byte, env Envelope) ([]byte, error) {
	bits := make(Bits, len(carrier))
	for i, b := range carrier {
		bits[i] = b & 1
	}
	return env.Unframe(bits)
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New(DefaultConfig(), byteCarrier{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cipher = "rot13"
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	ctx := context.Background()
	carrier := bytes.Repeat([]byte{0xAA, 0x55, 0x00, 0xFF}, 400)
	original := bytes.Clone(carrier)

	for _, password := range []string{"", "test123"} {
		t.Run("password="+password, func(t *testing.T) {
			out, err := c.Hide(ctx, KindImage, carrier, []byte("Hello, World!"), password)
			if err != nil {
				t.Fatalf("Hide() error: %v", err)
			}
			if !bytes.Equal(carrier, original) {
				t.Fatal("Hide() modified the caller's carrier")
			}

			got, err := c.Extract(ctx, KindImage, out, password)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if string(got) != "Hello, World!" {
				t.Errorf("Extract() = %q", got)
			}
		})
	}
}

func TestCodec_WrongPassword(t *testing.T) {
	c := newTestCodec(t)
	ctx := context.Background()

	out, err := c.Hide(ctx, KindImage, make([]byte, 2048), []byte("secret"), "right")
	if err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if _, err := c.Extract(ctx, KindImage, out, "wrong"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Extract() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestCodec_Capacity(t *testing.T) {
	c := newTestCodec(t)
	got, err := c.Capacity(context.Background(), KindImage, make([]byte, 100))
	if err != nil {
		t.Fatalf("Capacity() error: %v", err)
	}
	if got != 84 {
		t.Errorf("Capacity() = %d, want 84", got)
	}

	_, err = c.Hide(context.Background(), KindImage, make([]byte, 100), make([]byte, 11), "")
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Hide() error = %v, want ErrCapacityExceeded", err)
	}
}

func TestCodec_UnsupportedKind(t *testing.T) {
	c := newTestCodec(t)
	ctx := context.Background()

	if _, err := c.Capacity(ctx, KindAudio, nil); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Capacity() error = %v, want ErrUnsupportedCarrier", err)
	}
	if _, err := c.Hide(ctx, KindPDF, nil, nil, ""); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Hide() error = %v, want ErrUnsupportedCarrier", err)
	}
	if _, err := c.Extract(ctx, "video", nil, ""); !errors.Is(err, ErrUnsupportedCarrier) {
		t.Errorf("Extract() error = %v, want ErrUnsupportedCarrier", err)
	}
}

func TestCodec_Registry(t *testing.T) {
	c := newTestCodec(t)

	if got := c.Kinds(); !slices.Equal(got, []Kind{KindImage}) {
		t.Errorf("Kinds() = %v", got)
	}
	if _, err := c.Carrier(KindImage); err != nil {
		t.Errorf("Carrier(image) error: %v", err)
	}

	c.Reset()
	if len(c.Kinds()) != 0 {
		t.Error("Reset() should clear carriers")
	}

	c.Register(byteCarrier{})
	if _, err := c.Carrier(KindImage); err != nil {
		t.Errorf("Carrier(image) after Register error: %v", err)
	}
}

func TestCodec_ConcurrentAccess(t *testing.T) {
	c := newTestCodec(t)
	ctx := context.Background()
	carrier := make([]byte, 4096)

	done := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func() {
			out, err := c.Hide(ctx, KindImage, carrier, []byte("concurrent"), "pw")
			if err == nil {
				_, err = c.Extract(ctx, KindImage, out, "pw")
			}
			done <- err
		}()
	}
	for i := 0; i < 16; i++ {
		if err := <-done; err != nil {
			t.Errorf("concurrent round-trip error: %v", err)
		}
	}
}
