package stowaway

import (
	"bytes"
	"context"
	"time"
)

// Codec hides and extracts payloads across registered carriers.
//
// Codecs are safe for concurrent use. Register may be called at any time;
// every other method only reads shared state.
type Codec struct {
	cfg      Config
	carriers *registry
}

// New validates cfg and returns a Codec serving the given carriers.
func New(cfg Config, carriers ...Carrier) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Codec{cfg: cfg, carriers: newRegistry()}
	for _, carrier := range carriers {
		c.carriers.register(carrier)
	}
	emitCodecCreated(context.Background(), len(carriers))
	return c, nil
}

// Config returns the configuration the codec was built with.
func (c *Codec) Config() Config {
	return c.cfg
}

// Register adds or replaces the carrier for its kind.
func (c *Codec) Register(carrier Carrier) {
	c.carriers.register(carrier)
}

// Carrier returns the carrier registered for kind.
// An unregistered kind fails with ErrUnsupportedCarrier.
func (c *Codec) Carrier(kind Kind) (Carrier, error) {
	return c.carriers.lookup(kind)
}

// Kinds returns the registered kinds in sorted order.
func (c *Codec) Kinds() []Kind {
	return c.carriers.kinds()
}

// Reset removes every registered carrier.
// This is primarily useful for test isolation.
func (c *Codec) Reset() {
	c.carriers.reset()
}

// Envelope returns the envelope the codec applies for password.
func (c *Codec) Envelope(password string) (Envelope, error) {
	return NewEnvelope(password, c.cfg.EnvelopeOptions()...)
}

// Capacity returns how many payload bits carrier can hold.
func (c *Codec) Capacity(ctx context.Context, kind Kind, carrier []byte) (int, error) {
	var capacity int
	var retErr error
	defer func() {
		emitCapacityComplete(ctx, kind, len(carrier), capacity, retErr)
	}()

	impl, err := c.carriers.lookup(kind)
	if err != nil {
		retErr = err
		return 0, retErr
	}
	env, err := c.Envelope("")
	if err != nil {
		retErr = err
		return 0, retErr
	}

	capacity, retErr = impl.Capacity(bytes.Clone(carrier), env)
	return capacity, retErr
}

// Hide embeds payload into carrier, sealing it first when password is not
// empty. The caller's slices are never modified.
func (c *Codec) Hide(ctx context.Context, kind Kind, carrier, payload []byte, password string) ([]byte, error) {
	start := time.Now()
	emitHideStart(ctx, kind, len(carrier), len(payload), password != "")

	var retErr error
	var retData []byte
	defer func() {
		emitHideComplete(ctx, kind, len(retData), time.Since(start), retErr)
	}()

	impl, err := c.carriers.lookup(kind)
	if err != nil {
		retErr = err
		return nil, retErr
	}
	env, err := c.Envelope(password)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	retData, retErr = impl.Hide(ctx, bytes.Clone(carrier), bytes.Clone(payload), env)
	return retData, retErr
}

// Extract recovers the payload hidden in carrier, opening it with password
// when not empty.
func (c *Codec) Extract(ctx context.Context, kind Kind, carrier []byte, password string) ([]byte, error) {
	start := time.Now()
	emitExtractStart(ctx, kind, len(carrier), password != "")

	var retErr error
	var retData []byte
	defer func() {
		emitExtractComplete(ctx, kind, len(retData), time.Since(start), retErr)
	}()

	impl, err := c.carriers.lookup(kind)
	if err != nil {
		retErr = err
		return nil, retErr
	}
	env, err := c.Envelope(password)
	if err != nil {
		retErr = err
		return nil, retErr
	}

	retData, retErr = impl.Extract(ctx, bytes.Clone(carrier), env)
	return retData, retErr
}
