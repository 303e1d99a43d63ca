package stowaway

import (
	"context"
	"errors"
)

const (
	opHide    = "hide"
	opExtract = "extract"
)

// Strategy is one way of storing text in a document's metadata.
type Strategy interface {
	// Name identifies the strategy in errors and events.
	Name() string

	// Hide stores text and returns the rewritten document.
	// Recoverable failures wrap ErrMetadataWrite.
	Hide(doc []byte, text string) ([]byte, error)

	// Extract locates stored text and opens it with env.
	// Recoverable failures wrap ErrMetadataRead, ErrNoMetadata or ErrNoHiddenData.
	Extract(doc []byte, env Envelope) ([]byte, error)
}

// Resolver runs strategies in a fixed order, falling through on
// recoverable failures.
type Resolver struct {
	strategies []Strategy
}

// NewResolver returns a Resolver trying strategies in the given order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: append([]Strategy(nil), strategies...)}
}

// Strategies returns the strategy names in resolution order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Hide tries each strategy until one writes text. It returns the rewritten
// document and the winning strategy's name. Errors other than
// ErrMetadataWrite stop the chain immediately.
func (r *Resolver) Hide(ctx context.Context, doc []byte, text string) ([]byte, string, error) {
	attempts := make([]error, 0, len(r.strategies))
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		emitStrategyAttempt(ctx, s.Name(), opHide)

		out, err := s.Hide(doc, text)
		if err == nil {
			return out, s.Name(), nil
		}
		if !errors.Is(err, ErrMetadataWrite) {
			return nil, s.Name(), err
		}

		emitStrategyFallthrough(ctx, s.Name(), opHide, err)
		attempts = append(attempts, err)
	}
	return nil, "", &ChainError{Err: ErrHidingFailed, Op: opHide, Attempts: attempts}
}

// Extract tries each strategy until one yields a payload. A strategy that
// opens its stored text wins even when the plaintext is empty.
// ErrDecryptionFailed and other unclassified errors stop the chain.
func (r *Resolver) Extract(ctx context.Context, doc []byte, env Envelope) ([]byte, string, error) {
	attempts := make([]error, 0, len(r.strategies))
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		emitStrategyAttempt(ctx, s.Name(), opExtract)

		data, err := s.Extract(doc, env)
		if err == nil {
			return data, s.Name(), nil
		}
		if !recoverableRead(err) {
			return nil, s.Name(), err
		}

		emitStrategyFallthrough(ctx, s.Name(), opExtract, err)
		attempts = append(attempts, err)
	}
	return nil, "", &ChainError{Err: ErrExtractionFailed, Op: opExtract, Attempts: attempts}
}

func recoverableRead(err error) bool {
	if errors.Is(err, ErrDecryptionFailed) {
		return false
	}
	return errors.Is(err, ErrMetadataRead) ||
		errors.Is(err, ErrNoMetadata) ||
		errors.Is(err, ErrNoHiddenData)
}
