package stowaway

import (
	"slices"
	"sync"
)

// registry maps kinds to carriers.
type registry struct {
	mu       sync.RWMutex
	carriers map[Kind]Carrier
}

func newRegistry() *registry {
	return &registry{carriers: make(map[Kind]Carrier)}
}

// register adds or replaces the carrier for its kind.
func (r *registry) register(c Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carriers[c.Kind()] = c
}

// lookup returns the carrier for kind.
func (r *registry) lookup(kind Kind) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.carriers[kind]
	if !ok {
		return nil, &ConfigError{Err: ErrUnsupportedCarrier, Field: "kind", Value: string(kind)}
	}
	return c, nil
}

// kinds returns the registered kinds in sorted order.
func (r *registry) kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.carriers))
	for k := range r.carriers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// reset removes every carrier.
func (r *registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carriers = make(map[Kind]Carrier)
}
