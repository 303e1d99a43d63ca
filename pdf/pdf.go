// Package pdf hides payloads in the document information dictionary of a
// PDF file.
//
// The payload, sealed or plain, is stored as a text string. Readers and
// writers disagree about where document information lives, so the carrier
// runs an ordered chain of strategies through a stowaway.Resolver:
//
//   - primary: Subject, reached through startxref, existing entries kept
//   - alternate: Subject in a fresh hex-encoded object, reached through the
//     last cross-reference section
//   - simple: Keywords with a Title preview, trailer rebuilt from objects
//
// Every write is an incremental update appended to the original bytes.
// Capacity is a fixed ceiling rather than a property of the document.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/zoobzio/stowaway"
)

// headerWindow is how far into a file the %PDF- marker may appear.
const headerWindow = 1024

// Carrier is the PDF metadata carrier.
type Carrier struct {
	resolver *stowaway.Resolver
	capacity int
}

// Option configures a Carrier.
type Option func(*options)

type options struct {
	strategies []stowaway.StrategyName
	capacity   int
}

// WithStrategies sets the resolution order. Names StrategyFor does not know
// are skipped, and a list with no known name keeps the default order.
// Config.Validate rejects such lists before a Carrier is built.
func WithStrategies(names ...stowaway.StrategyName) Option {
	return func(o *options) { o.strategies = names }
}

// WithCapacity sets the capacity ceiling in bits. Non-positive values are
// ignored.
func WithCapacity(bits int) Option {
	return func(o *options) {
		if bits > 0 {
			o.capacity = bits
		}
	}
}

// DefaultStrategies is the resolution order used when none is configured.
func DefaultStrategies() []stowaway.StrategyName {
	return []stowaway.StrategyName{stowaway.StrategyPrimary, stowaway.StrategyAlternate, stowaway.StrategySimple}
}

// StrategyFor returns the built-in strategy with the given name.
func StrategyFor(name stowaway.StrategyName) (stowaway.Strategy, bool) {
	switch name {
	case stowaway.StrategyPrimary:
		return Primary{}, true
	case stowaway.StrategyAlternate:
		return Alternate{}, true
	case stowaway.StrategySimple:
		return Simple{}, true
	}
	return nil, false
}

// New returns a PDF Carrier.
func New(opts ...Option) *Carrier {
	o := options{
		strategies: DefaultStrategies(),
		capacity:   stowaway.MetadataCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	strategies := resolve(o.strategies)
	if len(strategies) == 0 {
		strategies = resolve(DefaultStrategies())
	}
	return &Carrier{
		resolver: stowaway.NewResolver(strategies...),
		capacity: o.capacity,
	}
}

// FromConfig returns a Carrier using cfg's strategy order and capacity.
func FromConfig(cfg stowaway.PDFConfig) *Carrier {
	return New(WithStrategies(cfg.Strategies...), WithCapacity(cfg.Capacity))
}

func resolve(names []stowaway.StrategyName) []stowaway.Strategy {
	out := make([]stowaway.Strategy, 0, len(names))
	for _, n := range names {
		if s, ok := StrategyFor(n); ok {
			out = append(out, s)
		}
	}
	return out
}

// Kind returns stowaway.KindPDF.
func (*Carrier) Kind() stowaway.Kind {
	return stowaway.KindPDF
}

// Strategies returns the strategy names in resolution order.
func (c *Carrier) Strategies() []string {
	return c.resolver.Strategies()
}

// Capacity returns the configured ceiling for any PDF.
func (c *Carrier) Capacity(carrier []byte, _ stowaway.Envelope) (int, error) {
	if err := checkHeader(carrier); err != nil {
		return 0, err
	}
	return c.capacity, nil
}

// Hide seals payload and stores it through the first strategy that can
// write the document.
func (c *Carrier) Hide(ctx context.Context, carrier, payload []byte, env stowaway.Envelope) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkHeader(carrier); err != nil {
		return nil, err
	}

	data, err := env.Seal(payload)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: stored payload is not UTF-8 text", stowaway.ErrHidingFailed)
	}
	if need := len(data) * 8; need > c.capacity {
		return nil, &stowaway.CapacityError{Need: need, Have: c.capacity}
	}

	out, _, err := c.resolver.Hide(ctx, carrier, string(data))
	return out, err
}

// Extract returns the payload found by the first strategy that yields one.
func (c *Carrier) Extract(ctx context.Context, carrier []byte, env stowaway.Envelope) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkHeader(carrier); err != nil {
		return nil, err
	}

	data, _, err := c.resolver.Extract(ctx, carrier, env)
	return data, err
}

func checkHeader(carrier []byte) error {
	head := carrier[:min(len(carrier), headerWindow)]
	if !bytes.Contains(head, []byte("%PDF-")) {
		return fmt.Errorf("%w: missing %%PDF- header", stowaway.ErrUnsupportedCarrier)
	}
	return nil
}
