// Package raster hides payloads in the least significant bits of image pixels.
//
// Any decodable image (PNG, JPEG, GIF, BMP, TIFF, WebP) is normalized to
// three 8-bit channels. Slots are visited row-major, left to right, R then
// G then B; each carries one framed bit. Output is always a lossless,
// fully opaque PNG.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/zoobzio/stowaway"
)

// channels is the number of slots per pixel.
const channels = 3

// Carrier is the pixel raster carrier.
type Carrier struct {
	encoder png.Encoder
}

// Option configures a Carrier.
type Option func(*Carrier)

// WithCompressionLevel sets the PNG compression level of hidden output.
func WithCompressionLevel(level png.CompressionLevel) Option {
	return func(c *Carrier) { c.encoder.CompressionLevel = level }
}

// New returns a raster Carrier.
func New(opts ...Option) *Carrier {
	c := &Carrier{encoder: png.Encoder{CompressionLevel: png.DefaultCompression}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns stowaway.KindImage.
func (*Carrier) Kind() stowaway.Kind {
	return stowaway.KindImage
}

// Capacity returns width*height*3 minus the framing overhead.
// Only the image header is decoded.
func (*Carrier) Capacity(carrier []byte, env stowaway.Envelope) (int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(carrier))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", stowaway.ErrUnsupportedCarrier, err)
	}
	return max(cfg.Width*cfg.Height*channels-env.Overhead(), 0), nil
}

// Hide writes the framed payload into channel LSBs and encodes a PNG.
// The capacity check runs before any pixel is touched.
func (c *Carrier) Hide(ctx context.Context, carrier, payload []byte, env stowaway.Envelope) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	px, err := decode(carrier)
	if err != nil {
		return nil, err
	}

	bits, err := env.Frame(payload)
	if err != nil {
		return nil, err
	}
	if len(bits) > len(px.rgb) {
		return nil, &stowaway.CapacityError{Need: len(bits), Have: len(px.rgb)}
	}

	for i, bit := range bits {
		px.rgb[i] = px.rgb[i]&^1 | bit
	}

	var buf bytes.Buffer
	if err := c.encoder.Encode(&buf, px.toImage()); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// Extract reads every channel LSB and unframes the result.
func (*Carrier) Extract(ctx context.Context, carrier []byte, env stowaway.Envelope) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	px, err := decode(carrier)
	if err != nil {
		return nil, err
	}

	bits := make(stowaway.Bits, len(px.rgb))
	for i, v := range px.rgb {
		bits[i] = v & 1
	}
	return env.Unframe(bits)
}

// pixels is a packed RGB working buffer.
type pixels struct {
	width, height int
	rgb           []byte
}

// decode normalizes any supported image to packed RGB. Alpha is dropped
// without premultiplying so stored channel values survive as-is.
func decode(carrier []byte) (*pixels, error) {
	img, _, err := image.Decode(bytes.NewReader(carrier))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stowaway.ErrUnsupportedCarrier, err)
	}

	b := img.Bounds()
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = image.NewNRGBA(b)
		draw.Draw(src, b, img, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	px := &pixels{width: w, height: h, rgb: make([]byte, w*h*channels)}
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			s := x * 4
			d := (y*w + x) * channels
			px.rgb[d] = row[s]
			px.rgb[d+1] = row[s+1]
			px.rgb[d+2] = row[s+2]
		}
	}
	return px, nil
}

// toImage returns an opaque NRGBA view of the working buffer.
func (p *pixels) toImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	for i := 0; i < p.width*p.height; i++ {
		out.Pix[i*4] = p.rgb[i*channels]
		out.Pix[i*4+1] = p.rgb[i*channels+1]
		out.Pix[i*4+2] = p.rgb[i*channels+2]
		out.Pix[i*4+3] = 0xFF
	}
	return out
}
