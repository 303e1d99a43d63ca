// Package stowaway hides byte payloads inside ordinary files and recovers them.
//
// A Codec dispatches to one Carrier per Kind. Bit carriers (raster images and
// 16-bit PCM audio) overwrite the least significant bit of successive slots
// with a framed bit sequence; the PDF carrier writes text into document
// metadata through an ordered chain of strategies.
//
// # Carriers
//
//   - raster: PNG, JPEG, BMP, TIFF, GIF and WebP in; lossless PNG out
//   - pcm: 16-bit PCM WAV in; WAV out with every non-sample byte preserved
//   - pdf: any PDF in; PDF with an incremental metadata update out
//
// # Envelope
//
// Every call runs through an Envelope. With a password the payload is sealed
// into an ASCII token (Fernet by default) before framing; without one it is
// embedded verbatim. Framing is either the 16-bit delimiter 1111111111111110
// or a length-prefixed header.
//
// # Basic Usage
//
//	codec, _ := stowaway.New(stowaway.DefaultConfig(),
//	    raster.New(),
//	    pcm.New(),
//	    pdf.New(),
//	)
//
//	bits, _ := codec.Capacity(ctx, stowaway.KindImage, png)
//	out, _ := codec.Hide(ctx, stowaway.KindImage, png, []byte("Hello, World!"), "test123")
//	msg, _ := codec.Extract(ctx, stowaway.KindImage, out, "test123")
//
// # Errors
//
// Failures wrap sentinels such as ErrCapacityExceeded, ErrNoHiddenData and
// ErrDecryptionFailed; test for them with errors.Is.
package stowaway

import "context"

// Carrier embeds payloads into one family of files.
// Implementations never modify the carrier slice they are given.
type Carrier interface {
	// Kind returns the carrier family handled.
	Kind() Kind

	// Capacity returns the number of payload bits carrier can hold under env.
	Capacity(carrier []byte, env Envelope) (int, error)

	// Hide returns a new carrier holding payload.
	Hide(ctx context.Context, carrier, payload []byte, env Envelope) ([]byte, error)

	// Extract returns the payload hidden in carrier.
	Extract(ctx context.Context, carrier []byte, env Envelope) ([]byte, error)
}
