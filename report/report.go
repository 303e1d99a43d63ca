package report

import (
	"encoding/xml"
	"unicode"
	"unicode/utf8"

	"github.com/zoobzio/stowaway"
)

// Operation names the codec call a Report describes.
type Operation string

const (
	OpCapacity Operation = "capacity"
	OpHide     Operation = "hide"
	OpExtract  Operation = "extract"
)

// Report summarizes one codec call for display or machine consumption.
type Report struct {
	XMLName xml.Name `json:"-" yaml:"-" msgpack:"-" cbor:"-" bson:"-" xml:"report"`

	Operation     Operation `json:"operation" yaml:"operation" msgpack:"operation" cbor:"operation" bson:"operation" xml:"operation"`
	Kind          string    `json:"kind" yaml:"kind" msgpack:"kind" cbor:"kind" bson:"kind" xml:"kind"`
	File          string    `json:"file,omitempty" yaml:"file,omitempty" msgpack:"file,omitempty" cbor:"file,omitempty" bson:"file,omitempty" xml:"file,omitempty"`
	CarrierSize   int       `json:"carrier_size" yaml:"carrier_size" msgpack:"carrier_size" cbor:"carrier_size" bson:"carrier_size" xml:"carrier_size"`
	CapacityBits  int       `json:"capacity_bits,omitempty" yaml:"capacity_bits,omitempty" msgpack:"capacity_bits,omitempty" cbor:"capacity_bits,omitempty" bson:"capacity_bits,omitempty" xml:"capacity_bits,omitempty"`
	CapacityBytes int       `json:"capacity_bytes,omitempty" yaml:"capacity_bytes,omitempty" msgpack:"capacity_bytes,omitempty" cbor:"capacity_bytes,omitempty" bson:"capacity_bytes,omitempty" xml:"capacity_bytes,omitempty"`
	PayloadSize   int       `json:"payload_size,omitempty" yaml:"payload_size,omitempty" msgpack:"payload_size,omitempty" cbor:"payload_size,omitempty" bson:"payload_size,omitempty" xml:"payload_size,omitempty"`
	Sealed        bool      `json:"sealed" yaml:"sealed" msgpack:"sealed" cbor:"sealed" bson:"sealed" xml:"sealed"`
	Output        string    `json:"output,omitempty" yaml:"output,omitempty" msgpack:"output,omitempty" cbor:"output,omitempty" bson:"output,omitempty" xml:"output,omitempty"`
	Payload       string    `json:"payload,omitempty" yaml:"payload,omitempty" msgpack:"payload,omitempty" cbor:"payload,omitempty" bson:"payload,omitempty" xml:"payload,omitempty"`
}

// Capacity describes a capacity query. Bits are floored to whole bytes.
func Capacity(kind stowaway.Kind, file string, carrierSize, bits int) Report {
	return Report{
		Operation:     OpCapacity,
		Kind:          string(kind),
		File:          file,
		CarrierSize:   carrierSize,
		CapacityBits:  bits,
		CapacityBytes: bits / 8,
	}
}

// Hide describes a completed hide.
func Hide(kind stowaway.Kind, file string, carrierSize, payloadSize int, sealed bool, output string) Report {
	return Report{
		Operation:   OpHide,
		Kind:        string(kind),
		File:        file,
		CarrierSize: carrierSize,
		PayloadSize: payloadSize,
		Sealed:      sealed,
		Output:      output,
	}
}

// Extract describes a completed extraction. The payload is included only
// when it is valid text.
func Extract(kind stowaway.Kind, file string, carrierSize int, payload []byte, sealed bool) Report {
	r := Report{
		Operation:   OpExtract,
		Kind:        string(kind),
		File:        file,
		CarrierSize: carrierSize,
		PayloadSize: len(payload),
		Sealed:      sealed,
	}
	if isText(payload) {
		r.Payload = string(payload)
	}
	return r
}

func isText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return false
		}
	}
	return true
}
