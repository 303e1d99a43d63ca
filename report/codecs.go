package report

import (
	"encoding/json"
	"encoding/xml"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

// jsonCodec implements Codec for indented JSON.
type jsonCodec struct{}

// NewJSON returns a JSON codec.
func NewJSON() Codec {
	return &jsonCodec{}
}

func (c *jsonCodec) ContentType() string {
	return "application/json"
}

func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// xmlCodec implements Codec for XML.
type xmlCodec struct{}

// NewXML returns an XML codec.
func NewXML() Codec {
	return &xmlCodec{}
}

func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	return xml.MarshalIndent(v, "", "  ")
}

func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}

// yamlCodec implements Codec for YAML.
type yamlCodec struct{}

// NewYAML returns a YAML codec.
func NewYAML() Codec {
	return &yamlCodec{}
}

func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// msgpackCodec implements Codec for MessagePack.
type msgpackCodec struct{}

// NewMsgPack returns a MessagePack codec.
func NewMsgPack() Codec {
	return &msgpackCodec{}
}

func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// cborEncMode uses Core Deterministic Encoding: the same report always
// produces the same bytes.
var cborEncMode, cborEncErr = cbor.CoreDetEncOptions().EncMode()

// cborCodec implements Codec for CBOR.
type cborCodec struct{}

// NewCBOR returns a CBOR codec.
func NewCBOR() Codec {
	return &cborCodec{}
}

func (c *cborCodec) ContentType() string {
	return "application/cbor"
}

func (c *cborCodec) Marshal(v any) ([]byte, error) {
	if cborEncErr != nil {
		return nil, cborEncErr
	}
	return cborEncMode.Marshal(v)
}

func (c *cborCodec) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// bsonCodec implements Codec for BSON.
type bsonCodec struct{}

// NewBSON returns a BSON codec.
func NewBSON() Codec {
	return &bsonCodec{}
}

func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
