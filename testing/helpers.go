// Package testing provides fixture builders for stowaway tests.
package testing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TestPassword returns the password used across fixtures.
func TestPassword() string {
	return "test123"
}

// TestMessage returns the canonical round-trip payload.
func TestMessage() []byte {
	return []byte("Hello, World!")
}

// TestImage returns a w x h opaque gradient PNG.
func TestImage(tb testing.TB, w, h int) []byte {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 3), G: uint8(y * 5), B: uint8(x ^ y), A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encoding fixture png: %v", err)
	}
	return buf.Bytes()
}

// WAVOptions controls TestWAV output.
type WAVOptions struct {
	Channels   int
	SampleRate int
	BitDepth   int
	Metadata   *wav.Metadata
}

// TestWAV returns a 16-bit mono WAV holding samples total samples.
func TestWAV(tb testing.TB, samples int) []byte {
	tb.Helper()
	return TestWAVWith(tb, samples, WAVOptions{})
}

// TestWAVWith returns a WAV holding samples interleaved samples, written by
// the go-audio encoder. Zero options default to mono, 8kHz, 16-bit.
func TestWAVWith(tb testing.TB, samples int, opts WAVOptions) []byte {
	tb.Helper()
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = 8000
	}
	if opts.BitDepth == 0 {
		opts.BitDepth = 16
	}

	path := filepath.Join(tb.TempDir(), "fixture.wav")
	f, err := os.Create(path) // #nosec G304 -- test temp dir
	if err != nil {
		tb.Fatalf("creating fixture wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, opts.SampleRate, opts.BitDepth, opts.Channels, 1)
	enc.Metadata = opts.Metadata

	limit := 1<<(opts.BitDepth-1) - 1
	data := make([]int, samples)
	for i := range data {
		data[i] = (i*97)%(2*limit) - limit
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: opts.Channels, SampleRate: opts.SampleRate},
		Data:           data,
		SourceBitDepth: opts.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatalf("writing fixture samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("closing fixture encoder: %v", err)
	}

	out, err := os.ReadFile(path) // #nosec G304 -- test temp dir
	if err != nil {
		tb.Fatalf("reading fixture wav: %v", err)
	}
	return out
}

// TestPDF returns a one-page PDF with a classic xref table. A non-nil info
// map adds an Info dictionary with literal string values.
func TestPDF(tb testing.TB, info map[string]string) []byte {
	tb.Helper()
	if info == nil {
		return TestPDFInfo(tb, "")
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var dict bytes.Buffer
	dict.WriteString("<<")
	for _, k := range keys {
		fmt.Fprintf(&dict, " /%s (%s)", k, info[k])
	}
	dict.WriteString(" >>")
	return TestPDFInfo(tb, dict.String())
}

// TestPDFInfo returns a one-page PDF with a classic xref table whose Info
// object holds dict verbatim. An empty dict leaves Info out.
func TestPDFInfo(tb testing.TB, dict string) []byte {
	tb.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	if dict != "" {
		objects = append(objects, dict)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R", len(objects)+1)
	if dict != "" {
		fmt.Fprintf(&buf, " /Info %d 0 R", len(objects))
	}
	fmt.Fprintf(&buf, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

var startxrefValue = regexp.MustCompile(`startxref\s+\d+`)

// BreakStartXref points startxref at garbage so strict readers fail while
// the trailer stays intact.
func BreakStartXref(pdf []byte) []byte {
	return startxrefValue.ReplaceAll(bytes.Clone(pdf), []byte("startxref\n999999999"))
}

// StripTrailer removes every xref table, trailer and startxref, leaving
// only the objects.
func StripTrailer(pdf []byte) []byte {
	out := bytes.Clone(pdf)
	if i := bytes.Index(out, []byte("\nxref\n")); i >= 0 {
		out = out[:i+1]
	}
	return append(out, "%%EOF\n"...)
}
