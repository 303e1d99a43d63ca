package pdf

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/zoobzio/stowaway"
	"github.com/zoobzio/stowaway/internal/pdfinfo"
)

const (
	opHide    = "hide"
	opExtract = "extract"
)

// Placeholder values written alongside the payload.
const (
	defaultTitle    = "Stowaway Document"
	defaultAuthor   = "Stowaway"
	defaultCreator  = "Stowaway Steganography Tool"
	defaultProducer = "Stowaway"
	simpleSubject   = "Document with hidden data"

	previewPrefix = defaultTitle + " - "
	previewSuffix = "..."
	previewLength = 50

	// scanMinLength is the shortest value the full scan considers.
	scanMinLength = 10
)

var (
	placeholderPrefixes = []string{"Stowaway", "Document", "D:"}

	// sealedShape matches the URL-safe base64 text every cipher produces.
	sealedShape = regexp.MustCompile(`^[A-Za-z0-9_-]{16,}={0,2}$`)

	standardKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate", "Trapped"}
)

func isPlaceholder(v string) bool {
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}

// Primary stores text in Subject through the section named by startxref,
// keeping every other Info entry already present.
type Primary struct{}

// Name returns "primary".
func (Primary) Name() string { return string(stowaway.StrategyPrimary) }

// Hide appends an Info update with Subject set to text.
func (p Primary) Hide(raw []byte, text string) ([]byte, error) {
	doc, err := pdfinfo.Open(raw, pdfinfo.Strict)
	if err != nil {
		return nil, writeError(p.Name(), err)
	}
	info, err := doc.Info()
	switch {
	case errors.Is(err, pdfinfo.ErrNoInfo):
		info = pdfinfo.NewInfo()
	case err != nil:
		return nil, writeError(p.Name(), err)
	}

	info.
		Set("Title", defaultTitle, pdfinfo.Literal).
		Set("Author", defaultAuthor, pdfinfo.Literal).
		Set("Subject", text, pdfinfo.Literal).
		Set("Creator", defaultCreator, pdfinfo.Literal).
		Set("Producer", defaultProducer, pdfinfo.Literal)
	return update(p.Name(), doc, info)
}

// Extract opens the Subject value.
func (p Primary) Extract(raw []byte, env stowaway.Envelope) ([]byte, error) {
	info, err := readInfo(p.Name(), raw, pdfinfo.Strict)
	if err != nil {
		return nil, err
	}
	if v, ok := stored(info, "Subject"); ok && v != simpleSubject {
		return open(p.Name(), env, v)
	}
	return nil, stowaway.NewStrategyError(stowaway.ErrNoHiddenData, p.Name(), opExtract, errors.New("subject holds no payload"))
}

// Alternate writes a fresh Info object with hex strings through the last
// cross-reference section in the file, tolerating a broken startxref.
type Alternate struct{}

// Name returns "alternate".
func (Alternate) Name() string { return string(stowaway.StrategyAlternate) }

// Hide appends a new Info object with Subject set to text.
func (a Alternate) Hide(raw []byte, text string) ([]byte, error) {
	doc, err := pdfinfo.Open(raw, pdfinfo.Lenient)
	if err != nil {
		return nil, writeError(a.Name(), err)
	}
	info := pdfinfo.NewInfo().
		Set("Title", defaultTitle, pdfinfo.Hex).
		Set("Author", defaultAuthor, pdfinfo.Hex).
		Set("Subject", text, pdfinfo.Hex).
		Set("Creator", defaultCreator, pdfinfo.Hex).
		Set("Producer", defaultProducer, pdfinfo.Hex)
	return update(a.Name(), doc, info)
}

// Extract reads Subject, then scans every entry for a value shaped like a
// payload: sealed text that opens under env, or with no password, any
// non-placeholder value under a non-standard key.
func (a Alternate) Extract(raw []byte, env stowaway.Envelope) ([]byte, error) {
	info, err := readInfo(a.Name(), raw, pdfinfo.Lenient)
	if err != nil {
		return nil, err
	}
	if v, ok := stored(info, "Subject"); ok && v != simpleSubject {
		return open(a.Name(), env, v)
	}

	for _, f := range info.Fields() {
		if env.Sealed() {
			if !sealedShape.MatchString(f.Value) {
				continue
			}
		} else if slices.Contains(standardKeys, f.Key) || f.Value == "" || isPlaceholder(f.Value) {
			continue
		}
		if data, err := env.Open([]byte(f.Value)); err == nil {
			return data, nil
		}
	}
	return nil, stowaway.NewStrategyError(stowaway.ErrNoHiddenData, a.Name(), opExtract, errors.New("no entry shaped like a payload"))
}

// Simple rebuilds the cross-reference table from object definitions and
// stores text in Keywords, with a preview in Title.
type Simple struct{}

// Name returns "simple".
func (Simple) Name() string { return string(stowaway.StrategySimple) }

// Hide appends a rebuilt cross-reference table and an Info update on top
// of it.
func (s Simple) Hide(raw []byte, text string) ([]byte, error) {
	doc, err := pdfinfo.Open(raw, pdfinfo.Repair)
	if err != nil {
		return nil, writeError(s.Name(), err)
	}
	info := pdfinfo.NewInfo().
		Set("Title", preview(text), pdfinfo.Literal).
		Set("Author", defaultAuthor, pdfinfo.Literal).
		Set("Subject", simpleSubject, pdfinfo.Literal).
		Set("Creator", defaultCreator, pdfinfo.Literal).
		Set("Producer", defaultProducer, pdfinfo.Literal).
		Set("Keywords", text, pdfinfo.Literal)
	return update(s.Name(), doc, info)
}

// Extract tries Keywords, Subject and the Title preview in turn, then scans
// every long value. The scan is best effort: with a password a value must
// open, without one the first long non-placeholder value wins.
func (s Simple) Extract(raw []byte, env stowaway.Envelope) ([]byte, error) {
	info, err := readInfo(s.Name(), raw, pdfinfo.Repair)
	if err != nil {
		return nil, err
	}

	if v, ok := stored(info, "Keywords"); ok {
		return open(s.Name(), env, v)
	}
	if v, ok := stored(info, "Subject"); ok && v != simpleSubject {
		return open(s.Name(), env, v)
	}
	if title, _ := info.Get("Title"); strings.HasPrefix(title, previewPrefix) {
		if v := strings.TrimSuffix(strings.TrimPrefix(title, previewPrefix), previewSuffix); v != "" {
			return open(s.Name(), env, v)
		}
	}

	for _, f := range info.Fields() {
		if utf8.RuneCountInString(f.Value) <= scanMinLength {
			continue
		}
		if !env.Sealed() && isPlaceholder(f.Value) {
			continue
		}
		if data, err := env.Open([]byte(f.Value)); err == nil {
			return data, nil
		}
	}
	return nil, stowaway.NewStrategyError(stowaway.ErrNoHiddenData, s.Name(), opExtract, errors.New("no field holds a payload"))
}

// stored returns the text under key when it may hold a payload. An empty
// value counts only in an Info dictionary written by this package, where it
// is an empty payload stored without a password.
func stored(info pdfinfo.Info, key string) (string, bool) {
	v, ok := info.Get(key)
	switch {
	case !ok:
		return "", false
	case v == "":
		creator, _ := info.Get("Creator")
		return "", creator == defaultCreator
	}
	return v, true
}

// preview returns the Title value Simple writes for text.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return previewPrefix + string(runes) + previewSuffix
}

func update(name string, doc *pdfinfo.Document, info pdfinfo.Info) ([]byte, error) {
	out, err := doc.Update(info)
	if err != nil {
		return nil, writeError(name, err)
	}
	return out, nil
}

func writeError(name string, err error) error {
	return stowaway.NewStrategyError(stowaway.ErrMetadataWrite, name, opHide, err)
}

// readInfo opens doc and returns its Info dictionary, classifying failures
// for the resolver.
func readInfo(name string, raw []byte, mode pdfinfo.Mode) (pdfinfo.Info, error) {
	doc, err := pdfinfo.Open(raw, mode)
	if err != nil {
		return nil, stowaway.NewStrategyError(stowaway.ErrMetadataRead, name, opExtract, err)
	}
	info, err := doc.Info()
	switch {
	case errors.Is(err, pdfinfo.ErrNoInfo):
		return nil, stowaway.NewStrategyError(stowaway.ErrNoMetadata, name, opExtract, nil)
	case err != nil:
		return nil, stowaway.NewStrategyError(stowaway.ErrMetadataRead, name, opExtract, err)
	}
	return info, nil
}

func open(name string, env stowaway.Envelope, v string) ([]byte, error) {
	data, err := env.Open([]byte(v))
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, opExtract, err)
	}
	return data, nil
}
