package pdfinfo

import (
	"bytes"
	"sort"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Style selects how text values are written.
type Style int

const (
	// Literal writes (parenthesized) strings with escapes.
	Literal Style = iota
	// Hex writes <hexadecimal> strings.
	Hex
)

// Field is one text entry of an information dictionary.
type Field struct {
	Key   string
	Value string
}

// Info is a document information dictionary. Entries that are not text,
// such as /Trapped, are carried through updates unchanged.
type Info types.Dict

// NewInfo returns an empty Info.
func NewInfo() Info {
	return Info(types.NewDict())
}

// Get returns the text stored under key.
func (info Info) Get(key string) (string, bool) {
	v, ok := types.Dict(info).Find(key)
	if !ok {
		return "", false
	}
	return DecodeText(v)
}

// Set stores value under key, replacing any existing entry, and returns
// info.
func (info Info) Set(key, value string, style Style) Info {
	info[key] = EncodeText(value, style)
	return info
}

// Fields returns the text entries ordered by key.
func (info Info) Fields() []Field {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		if v, ok := DecodeText(info[k]); ok {
			fields = append(fields, Field{Key: k, Value: v})
		}
	}
	return fields
}

func isText(o types.Object) bool {
	switch o.(type) {
	case types.StringLiteral, types.HexLiteral:
		return true
	}
	return false
}

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts a string object to UTF-8. It reports false for
// objects that are not strings or do not decode.
func DecodeText(o types.Object) (string, bool) {
	switch v := o.(type) {
	case types.StringLiteral:
		s, err := types.StringLiteralToString(v)
		return s, err == nil
	case types.HexLiteral:
		b, err := v.Bytes()
		if err != nil {
			return "", false
		}
		if types.IsUTF16BE(b) {
			s, err := types.DecodeUTF16String(string(b))
			return s, err == nil
		}
		b = bytes.TrimPrefix(b, bomUTF8)
		if !utf8.Valid(b) {
			return types.CP1252ToUTF8(string(b)), true
		}
		return string(b), true
	}
	return "", false
}

// EncodeText converts s to a string object: ASCII as is, anything else as
// UTF-16BE with a byte order mark.
func EncodeText(s string, style Style) types.Object {
	raw := s
	if !isASCII(s) {
		raw = types.EncodeUTF16String(s)
	}
	if style == Hex {
		return types.NewHexLiteral([]byte(raw))
	}
	escaped, _ := types.Escape(raw)
	return types.StringLiteral(*escaped)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
