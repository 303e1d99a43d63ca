// Package report describes codec operations and renders those descriptions
// in several wire formats.
package report

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownFormat is returned by CodecFor for unregistered formats.
var ErrUnknownFormat = errors.New("report: unknown format")

// Codec encodes and decodes reports.
type Codec interface {
	// ContentType returns the MIME type of the encoding.
	ContentType() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// Format names a report encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatXML     Format = "xml"
	FormatYAML    Format = "yaml"
	FormatMsgPack Format = "msgpack"
	FormatCBOR    Format = "cbor"
	FormatBSON    Format = "bson"
)

var codecs = map[Format]func() Codec{
	FormatJSON:    NewJSON,
	FormatXML:     NewXML,
	FormatYAML:    NewYAML,
	FormatMsgPack: NewMsgPack,
	FormatCBOR:    NewCBOR,
	FormatBSON:    NewBSON,
}

// CodecFor returns the codec for f.
func CodecFor(f Format) (Codec, error) {
	ctor, ok := codecs[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return ctor(), nil
}

// Formats returns every supported format, sorted.
func Formats() []Format {
	out := make([]Format, 0, len(codecs))
	for f := range codecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Binary reports whether f produces non-text output.
func (f Format) Binary() bool {
	return f == FormatMsgPack || f == FormatCBOR || f == FormatBSON
}
