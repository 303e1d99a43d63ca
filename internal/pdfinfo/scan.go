package pdfinfo

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	pdfSpace = "\x00\t\n\f\r "

	// maxEndobjTries bounds how many "endobj" candidates are tried when an
	// earlier one turns out to sit inside a string.
	maxEndobjTries = 8
)

var (
	objHeader = regexp.MustCompile(`(\d+)[\x00\t\n\f\r ]+(\d+)[\x00\t\n\f\r ]+obj\b`)

	// tableHeader matches an "xref" line followed by a subsection header.
	tableHeader = regexp.MustCompile(`(?m)^xref[\t ]*\r?\n[\t ]*\d+[\t ]+\d+`)
)

func isRegular(c byte) bool {
	return !strings.ContainsRune(pdfSpace, rune(c)) && !strings.ContainsRune("()<>[]{}/%", rune(c))
}

// lastKeyword returns the offset of the last standalone occurrence of kw.
func lastKeyword(doc []byte, kw string) int {
	end := len(doc)
	for {
		i := bytes.LastIndex(doc[:end], []byte(kw))
		if i < 0 {
			return -1
		}
		j := i + len(kw)
		if (i == 0 || !isRegular(doc[i-1])) && (j == len(doc) || !isRegular(doc[j])) {
			return i
		}
		end = i
	}
}

// object is one indirect object definition found in the file.
type object struct {
	num    int
	gen    int
	offset int // start of the "N G obj" header
	value  types.Object
}

func (o object) dict() types.Dict {
	d, _ := o.value.(types.Dict)
	return d
}

func (o object) isType(name string) bool {
	t := o.dict().Type()
	return t != nil && *t == name
}

// objectAt parses the object whose header starts exactly at offset. It
// returns the offset just past the definition.
func objectAt(doc []byte, offset int) (object, int, bool) {
	m := objHeader.FindSubmatchIndex(doc[offset:])
	if m == nil || m[0] != 0 {
		return object{}, 0, false
	}
	num, err1 := strconv.Atoi(string(doc[offset+m[2] : offset+m[3]]))
	gen, err2 := strconv.Atoi(string(doc[offset+m[4] : offset+m[5]]))
	if err1 != nil || err2 != nil {
		return object{}, 0, false
	}

	v, next, ok := parseBody(doc, offset+m[1])
	if !ok {
		return object{}, 0, false
	}
	return object{num: num, gen: gen, offset: offset, value: v}, next, true
}

// parseBody parses the object value starting at body and skips any stream
// data that follows it.
func parseBody(doc []byte, body int) (types.Object, int, bool) {
	end := body
	for range maxEndobjTries {
		i := bytes.Index(doc[end:], []byte("endobj"))
		if i < 0 {
			return nil, 0, false
		}
		window := string(doc[body : end+i])
		end += i + len("endobj")

		rest := window
		v, err := model.ParseObject(&rest)
		if err != nil || v == nil {
			continue
		}
		rest = strings.TrimLeft(rest, pdfSpace)
		if !strings.HasPrefix(rest, "stream") {
			return v, end, true
		}
		return v, skipStream(doc, body+len(window)-len(rest), v), true
	}
	return nil, 0, false
}

// skipStream returns the offset after the endobj closing the stream whose
// keyword starts at offset.
func skipStream(doc []byte, offset int, v types.Object) int {
	data := offset + len("stream")
	if data < len(doc) && doc[data] == '\r' {
		data++
	}
	if data < len(doc) && doc[data] == '\n' {
		data++
	}

	from := data
	if d, ok := v.(types.Dict); ok {
		if n := d.IntEntry("Length"); n != nil && *n >= 0 && data+*n <= len(doc) {
			if bytes.HasPrefix(bytes.TrimLeft(doc[data+*n:], pdfSpace), []byte("endstream")) {
				from = data + *n
			}
		}
	}

	i := bytes.Index(doc[from:], []byte("endstream"))
	if i < 0 {
		return len(doc)
	}
	from += i + len("endstream")
	if j := bytes.Index(doc[from:], []byte("endobj")); j >= 0 {
		return from + j + len("endobj")
	}
	return from
}

// scanObjects returns every object definition in file order. Text inside
// strings and stream data is never mistaken for a header.
func scanObjects(doc []byte) []object {
	var objs []object
	for pos := 0; pos < len(doc); {
		m := objHeader.FindIndex(doc[pos:])
		if m == nil {
			break
		}
		start := pos + m[0]
		if start > 0 && isRegular(doc[start-1]) {
			pos = pos + m[1]
			continue
		}
		obj, next, ok := objectAt(doc, start)
		if !ok {
			pos = pos + m[1]
			continue
		}
		objs = append(objs, obj)
		pos = next
	}
	return objs
}

// startxref returns the value of the final startxref keyword.
func startxref(doc []byte) (int64, error) {
	i := lastKeyword(doc, "startxref")
	if i < 0 {
		return 0, fmt.Errorf("%w: no startxref", ErrNoTrailer)
	}
	rest := bytes.TrimLeft(doc[i+len("startxref"):], pdfSpace)
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	off, err := strconv.ParseInt(string(rest[:n]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad startxref value", ErrNoTrailer)
	}
	return off, nil
}

// isSection reports whether a cross-reference table or stream starts at
// offset.
func isSection(doc []byte, offset int64) bool {
	if offset < 0 || offset >= int64(len(doc)) {
		return false
	}
	at := doc[offset:]
	trimmed := bytes.TrimLeft(at, pdfSpace)
	if bytes.HasPrefix(trimmed, []byte("xref")) {
		return true
	}
	obj, _, ok := objectAt(doc, int(offset)+len(at)-len(trimmed))
	return ok && obj.isType("XRef")
}

func locateStrict(doc []byte) (int64, error) {
	off, err := startxref(doc)
	if err != nil {
		return 0, err
	}
	if !isSection(doc, off) {
		return 0, fmt.Errorf("%w: startxref %d does not point at a cross-reference section", ErrNoTrailer, off)
	}
	return off, nil
}

func locateLenient(doc []byte) (int64, error) {
	if all := tableHeader.FindAllIndex(doc, -1); len(all) > 0 {
		return int64(all[len(all)-1][0]), nil
	}
	objs := scanObjects(doc)
	for k := len(objs) - 1; k >= 0; k-- {
		if objs[k].isType("XRef") {
			return int64(objs[k].offset), nil
		}
	}
	return 0, fmt.Errorf("%w: no cross-reference table or stream", ErrNoTrailer)
}

// pointStartxref returns a copy of doc whose final startxref names offset.
// Every byte before the startxref keyword is unchanged.
func pointStartxref(doc []byte, offset int64) []byte {
	out := doc
	if i := lastKeyword(doc, "startxref"); i >= 0 {
		out = doc[:i]
	}
	out = bytes.Clone(out)
	if n := len(out); n > 0 && out[n-1] != '\n' && out[n-1] != '\r' {
		out = append(out, '\n')
	}
	return fmt.Appendf(out, "startxref\n%d\n%%%%EOF\n", offset)
}

// rebuild appends a cross-reference table and trailer built from the object
// definitions in doc. It returns the extended copy and the table's offset.
func rebuild(doc []byte) ([]byte, int64, error) {
	latest := make(map[int]object)
	var root, info *object
	for _, o := range scanObjects(doc) {
		switch {
		case o.isType("ObjStm"):
			return nil, 0, fmt.Errorf("%w: object %d is an object stream; its members cannot be listed in a rebuilt table", ErrMalformed, o.num)
		case o.isType("XRef"):
			if _, ok := o.dict().Find("Encrypt"); ok {
				return nil, 0, ErrEncrypted
			}
			continue
		case o.isType("Catalog"):
			root = &o
		case isInfoDict(o.dict()):
			info = &o
		}
		latest[o.num] = o
	}
	if root == nil {
		return nil, 0, fmt.Errorf("%w: no catalog object", ErrNoTrailer)
	}
	if encryptedTrailer(doc) {
		return nil, 0, ErrEncrypted
	}

	nums := make([]int, 0, len(latest))
	for n := range latest {
		if n > 0 {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)

	out := bytes.Clone(doc)
	if n := len(out); n > 0 && out[n-1] != '\n' && out[n-1] != '\r' {
		out = append(out, '\n')
	}
	xref := len(out)
	out = append(out, "xref\n0 1\n0000000000 65535 f \n"...)
	for i := 0; i < len(nums); {
		j := i + 1
		for j < len(nums) && nums[j] == nums[j-1]+1 {
			j++
		}
		out = fmt.Appendf(out, "%d %d\n", nums[i], j-i)
		for _, n := range nums[i:j] {
			out = fmt.Appendf(out, "%010d %05d n \n", latest[n].offset, latest[n].gen)
		}
		i = j
	}

	trailer := types.NewDict()
	size := 1
	if len(nums) > 0 {
		size = nums[len(nums)-1] + 1
	}
	trailer.Insert("Size", types.Integer(size))
	trailer.Insert("Root", *types.NewIndirectRef(root.num, root.gen))
	if info != nil {
		trailer.Insert("Info", *types.NewIndirectRef(info.num, info.gen))
	}
	out = fmt.Appendf(out, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer.PDFString(), xref)
	return out, int64(xref), nil
}

// encryptedTrailer reports whether any surviving trailer dictionary names
// a security handler.
func encryptedTrailer(doc []byte) bool {
	for end := len(doc); ; {
		i := lastKeyword(doc[:end], "trailer")
		if i < 0 {
			return false
		}
		rest := string(doc[i+len("trailer"):])
		if v, err := model.ParseObject(&rest); err == nil {
			if d, ok := v.(types.Dict); ok {
				if _, found := d.Find("Encrypt"); found {
					return true
				}
			}
		}
		end = i
	}
}

// infoKeys are the standard document information entries.
var infoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

func isInfoDict(d types.Dict) bool {
	if d == nil || d.Type() != nil {
		return false
	}
	for _, k := range infoKeys {
		if v, ok := d.Find(k); ok && isText(v) {
			return true
		}
	}
	return false
}
