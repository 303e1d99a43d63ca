package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/zoobzio/stowaway"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return buf.Bytes()
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 13), B: uint8(x + y), A: 0xFF})
		}
	}
	return img
}

func envelope(t *testing.T, password string, opts ...stowaway.EnvelopeOption) stowaway.Envelope {
	t.Helper()
	env, err := stowaway.NewEnvelope(password, opts...)
	if err != nil {
		t.Fatalf("NewEnvelope() error: %v", err)
	}
	return env
}

func TestCarrier_Kind(t *testing.T) {
	if New().Kind() != stowaway.KindImage {
		t.Errorf("Kind() = %s", New().Kind())
	}
}

func TestCarrier_Capacity(t *testing.T) {
	c := New()
	carrier := encodePNG(t, gradient(100, 100))

	got, err := c.Capacity(carrier, envelope(t, ""))
	if err != nil {
		t.Fatalf("Capacity() error: %v", err)
	}
	if got != 29984 {
		t.Errorf("Capacity() = %d, want 29984", got)
	}

	got, _ = c.Capacity(carrier, envelope(t, "", stowaway.WithFraming(stowaway.FramingLengthPrefixed)))
	if got != 29952 {
		t.Errorf("Capacity(length-prefixed) = %d, want 29952", got)
	}

	tiny := encodePNG(t, gradient(2, 2))
	if got, _ := c.Capacity(tiny, envelope(t, "")); got != 0 {
		t.Errorf("Capacity(2x2) = %d, want 0", got)
	}
}

func TestCarrier_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
		opts     []stowaway.EnvelopeOption
	}{
		{"plain", "", nil},
		{"fernet", "test123", nil},
		{"aes-gcm", "test123", []stowaway.EnvelopeOption{stowaway.WithCipher(stowaway.CipherAESGCM)}},
		{"length-prefixed", "", []stowaway.EnvelopeOption{stowaway.WithFraming(stowaway.FramingLengthPrefixed)}},
	}

	c := New()
	ctx := context.Background()
	carrier := encodePNG(t, gradient(100, 100))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := envelope(t, tt.password, tt.opts...)

			out, err := c.Hide(ctx, carrier, []byte("Hello, World!"), env)
			if err != nil {
				t.Fatalf("Hide() error: %v", err)
			}
			got, err := c.Extract(ctx, out, env)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if string(got) != "Hello, World!" {
				t.Errorf("Extract() = %q", got)
			}
		})
	}
}

func TestCarrier_CapacityBoundary(t *testing.T) {
	c := New()
	ctx := context.Background()
	env := envelope(t, "")
	carrier := encodePNG(t, gradient(100, 100))

	fits := []byte(strings.Repeat("A", 29984/8))
	out, err := c.Hide(ctx, carrier, fits, env)
	if err != nil {
		t.Fatalf("Hide(%d bytes) error: %v", len(fits), err)
	}
	got, err := c.Extract(ctx, out, env)
	if err != nil || !bytes.Equal(got, fits) {
		t.Fatalf("Extract() = %d bytes, %v", len(got), err)
	}

	_, err = c.Hide(ctx, carrier, append(fits, 'A'), env)
	var ce *stowaway.CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("Hide(one byte over) error = %v, want CapacityError", err)
	}
	if ce.Have != 30000 || ce.Need != 30008 {
		t.Errorf("CapacityError = %+v", ce)
	}

	_, err = c.Hide(ctx, carrier, []byte(strings.Repeat("x", 100000)), env)
	if !errors.Is(err, stowaway.ErrCapacityExceeded) {
		t.Errorf("Hide(100000 chars) error = %v, want ErrCapacityExceeded", err)
	}
}

func TestCarrier_OnlyLSBsChange(t *testing.T) {
	c := New()
	src := gradient(40, 30)
	out, err := c.Hide(context.Background(), encodePNG(t, src), []byte("lsb"), envelope(t, ""))
	if err != nil {
		t.Fatalf("Hide() error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if !img.(interface{ Opaque() bool }).Opaque() {
		t.Error("output should be fully opaque")
	}

	slots := (len("lsb") + 2) * 8
	i := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			want := src.RGBAAt(x, y)
			got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			for ch, pair := range [][2]uint8{{want.R, got.R}, {want.G, got.G}, {want.B, got.B}} {
				diff := pair[0] ^ pair[1]
				if diff&^1 != 0 {
					t.Fatalf("pixel (%d,%d) channel %d changed beyond LSB", x, y, ch)
				}
				if i >= slots && diff != 0 {
					t.Fatalf("slot %d past the frame changed", i)
				}
				i++
			}
		}
	}
}

func TestCarrier_InputFormats(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}

	pal := image.NewPaletted(image.Rect(0, 0, 32, 32), color.Palette{
		color.RGBA{0, 0, 0, 0xFF}, color.RGBA{0xFF, 0x80, 0x10, 0xFF},
	})
	for i := range pal.Pix {
		pal.Pix[i] = uint8(i % 2)
	}

	translucent := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := 0; i < len(translucent.Pix); i += 4 {
		translucent.Pix[i], translucent.Pix[i+1], translucent.Pix[i+2], translucent.Pix[i+3] = 10, 20, 30, 0x40
	}

	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, gradient(32, 32), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode() error: %v", err)
	}

	tests := []struct {
		name    string
		carrier []byte
	}{
		{"gray png", encodePNG(t, gray)},
		{"paletted png", encodePNG(t, pal)},
		{"translucent png", encodePNG(t, translucent)},
		{"jpeg", jpg.Bytes()},
	}

	c := New()
	ctx := context.Background()
	env := envelope(t, "pw")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Hide(ctx, tt.carrier, []byte("fmt"), env)
			if err != nil {
				t.Fatalf("Hide() error: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("\x89PNG")) {
				t.Error("output should be PNG")
			}
			got, err := c.Extract(ctx, out, env)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if string(got) != "fmt" {
				t.Errorf("Extract() = %q", got)
			}
		})
	}
}

func TestCarrier_DoesNotMutateInput(t *testing.T) {
	carrier := encodePNG(t, gradient(20, 20))
	original := bytes.Clone(carrier)

	if _, err := New().Hide(context.Background(), carrier, []byte("x"), envelope(t, "")); err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if !bytes.Equal(carrier, original) {
		t.Error("Hide() modified its input")
	}
}

func TestCarrier_NoHiddenData(t *testing.T) {
	blank := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 50, 50)))

	_, err := New().Extract(context.Background(), blank, envelope(t, ""))
	if !errors.Is(err, stowaway.ErrNoHiddenData) || !errors.Is(err, stowaway.ErrNoDelimiter) {
		t.Errorf("Extract() error = %v, want ErrNoHiddenData and ErrNoDelimiter", err)
	}
}

func TestCarrier_WrongPassword(t *testing.T) {
	c := New()
	ctx := context.Background()
	out, err := c.Hide(ctx, encodePNG(t, gradient(100, 100)), []byte("secret"), envelope(t, "right"))
	if err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if _, err := c.Extract(ctx, out, envelope(t, "wrong")); !errors.Is(err, stowaway.ErrDecryptionFailed) {
		t.Errorf("Extract() error = %v, want ErrDecryptionFailed", err)
	}
}

func TestCarrier_Unsupported(t *testing.T) {
	c := New()
	ctx := context.Background()
	junk := []byte("this is not an image")

	if _, err := c.Capacity(junk, envelope(t, "")); !errors.Is(err, stowaway.ErrUnsupportedCarrier) {
		t.Errorf("Capacity() error = %v", err)
	}
	if _, err := c.Hide(ctx, junk, []byte("x"), envelope(t, "")); !errors.Is(err, stowaway.ErrUnsupportedCarrier) {
		t.Errorf("Hide() error = %v", err)
	}
	if _, err := c.Extract(ctx, junk, envelope(t, "")); !errors.Is(err, stowaway.ErrUnsupportedCarrier) {
		t.Errorf("Extract() error = %v", err)
	}
}
