// Package pdfinfo reads and updates the document information dictionary of
// a PDF file.
//
// Documents are read with pdfcpu, so objects are resolved through their
// cross-reference tables, cross-reference streams and object streams.
// Updates are appended as an incremental section, so the original bytes are
// always a prefix of the result.
package pdfinfo

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var (
	ErrNoTrailer = errors.New("pdfinfo: no usable trailer")
	ErrNoInfo    = errors.New("pdfinfo: no document information dictionary")
	ErrMalformed = errors.New("pdfinfo: malformed document")
	ErrEncrypted = errors.New("pdfinfo: document is encrypted")
)

func init() {
	// Keep pdfcpu from creating a config.yml under the user's config dir.
	api.DisableConfigDir()
}

// Mode selects how the current cross-reference section is located.
type Mode int

const (
	// Strict follows the final startxref, which must point at a
	// cross-reference table or stream.
	Strict Mode = iota
	// Lenient reads from the last cross-reference table, or the last
	// cross-reference stream when the file has none, whatever startxref
	// says.
	Lenient
	// Repair ignores cross-reference data and rebuilds a table from the
	// object definitions in the file.
	Repair
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	case Repair:
		return "repair"
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// Document is a PDF opened for reading and updating its information
// dictionary.
type Document struct {
	base []byte // bytes updates are appended to
	prev int64  // offset of the section an update chains to
	ctx  *model.Context
}

// Open reads doc in the given mode. doc is not modified or retained beyond
// the returned Document.
func Open(doc []byte, mode Mode) (*Document, error) {
	var (
		base = doc
		read = doc
		prev int64
		err  error
	)
	switch mode {
	case Strict:
		prev, err = locateStrict(doc)
	case Lenient:
		prev, err = locateLenient(doc)
		if err == nil {
			read = pointStartxref(doc, prev)
		}
	case Repair:
		base, prev, err = rebuild(doc)
		read = base
	default:
		err = fmt.Errorf("pdfinfo: unknown mode %v", mode)
	}
	if err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(bytes.NewReader(read), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if ctx.Encrypt != nil {
		return nil, ErrEncrypted
	}
	if ctx.Root == nil {
		return nil, fmt.Errorf("%w: trailer has no /Root", ErrNoTrailer)
	}
	return &Document{base: base, prev: prev, ctx: ctx}, nil
}

// Info returns a copy of the information dictionary. Text values stored as
// separate objects are inlined; every other entry is kept as found.
func (d *Document) Info() (Info, error) {
	if d.ctx.Info == nil {
		return nil, ErrNoInfo
	}
	dict, err := d.ctx.DereferenceDict(*d.ctx.Info)
	if err != nil {
		return nil, fmt.Errorf("%w: info object %s: %w", ErrMalformed, d.ctx.Info, err)
	}
	if dict == nil {
		return nil, ErrNoInfo
	}

	info := make(Info, len(dict))
	for k, v := range dict {
		if ref, ok := v.(types.IndirectRef); ok {
			if o, err := d.ctx.Dereference(ref); err == nil && isText(o) {
				v = o
			}
		}
		info[k] = v
	}
	return info, nil
}

// Update appends info as a new object followed by a cross-reference section
// and trailer naming it, and returns the extended document.
func (d *Document) Update(info Info) ([]byte, error) {
	xt := d.ctx.XRefTable
	num := xt.MaxObjNr + 1
	if xt.Size != nil {
		num = max(num, *xt.Size)
	}

	out := make([]byte, 0, len(d.base)+1024)
	out = append(out, d.base...)
	if n := len(out); n > 0 && out[n-1] != '\n' && out[n-1] != '\r' {
		out = append(out, '\n')
	}

	objOffset := len(out)
	out = fmt.Appendf(out, "%d 0 obj\n%s\nendobj\n", num, types.Dict(info).PDFString())

	trailer := types.NewDict()
	trailer.Insert("Size", types.Integer(num+1))
	trailer.Insert("Root", *xt.Root)
	trailer.Insert("Info", *types.NewIndirectRef(num, 0))
	trailer.Insert("Prev", types.Integer(d.prev))
	if xt.ID != nil {
		trailer.Insert("ID", xt.ID)
	}

	xref := len(out)
	out = fmt.Appendf(out, "xref\n%d 1\n%010d 00000 n \n", num, objOffset)
	out = fmt.Appendf(out, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer.PDFString(), xref)
	return out, nil
}
