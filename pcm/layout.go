package pcm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	"github.com/zoobzio/stowaway"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
	sampleBits       = 16
)

// layout locates the sample bytes inside a container.
type layout struct {
	offset int // first byte of sample data
	size   int // sample data length in bytes
	width  int // bytes per sample
}

// samples returns the number of interleaved samples across all channels.
func (l layout) samples() int {
	return l.size / l.width
}

// slot returns the byte index carrying sample i's hidden bit. WAV samples
// are little-endian, so the first encoded byte holds the value's bit 0.
func (l layout) slot(i int) int {
	return l.offset + i*l.width
}

// parseWAV reads the fmt and data chunks of a RIFF/WAVE container.
// Only 16-bit linear PCM is accepted.
func parseWAV(carrier []byte) (layout, error) {
	d := wav.NewDecoder(bytes.NewReader(carrier))
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return layout{}, fmt.Errorf("%w: reading wav header: %w", stowaway.ErrUnsupportedCarrier, err)
	}
	if d.NumChans < 1 {
		return layout{}, fmt.Errorf("%w: wav header has no channels", stowaway.ErrUnsupportedCarrier)
	}
	if d.WavAudioFormat != formatPCM && d.WavAudioFormat != formatExtensible {
		return layout{}, fmt.Errorf("%w: %w: audio format %#x", stowaway.ErrUnsupportedCarrier, stowaway.ErrUnsupportedSampleFormat, d.WavAudioFormat)
	}
	if d.BitDepth != sampleBits {
		return layout{}, fmt.Errorf("%w: %w: %d-bit samples", stowaway.ErrUnsupportedCarrier, stowaway.ErrUnsupportedSampleFormat, d.BitDepth)
	}

	if err := d.FwdToPCM(); err != nil {
		return layout{}, fmt.Errorf("%w: locating sample data: %w", stowaway.ErrUnsupportedCarrier, err)
	}
	if d.PCMChunk == nil {
		return layout{}, fmt.Errorf("%w: no data chunk", stowaway.ErrUnsupportedCarrier)
	}
	pos, err := d.Seek(0, io.SeekCurrent)
	if err != nil {
		return layout{}, fmt.Errorf("%w: %w", stowaway.ErrUnsupportedCarrier, err)
	}

	offset := int(pos)
	if offset < 8 || offset > len(carrier) || string(carrier[offset-8:offset-4]) != "data" {
		return layout{}, fmt.Errorf("%w: misaligned data chunk", stowaway.ErrUnsupportedCarrier)
	}

	// The declared size excludes any pad byte; trust it over PCMSize.
	size := int(binary.LittleEndian.Uint32(carrier[offset-4 : offset]))
	size = min(size, len(carrier)-offset)

	return layout{
		offset: offset,
		size:   size,
		width:  sampleBits / 8,
	}, nil
}
