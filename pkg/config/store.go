package config

import (
	"sync/atomic"
)

// Store holds the live configuration as an atomically-swapped snapshot.
// A refresh publishes a whole new *Config pointer rather than mutating
// fields in place, so readers never observe a torn configuration: a call
// site reads one snapshot and uses it for the lifetime of the operation,
// while spans started after a refresh see the new snapshot.
type Store struct {
	current atomic.Pointer[Config]

	// onSwap callbacks run after each successful swap, in registration
	// order, with the new snapshot. Registered before Run; not mutated
	// concurrently with swaps.
	onSwap []func(*Config)
}

// NewStore creates a store publishing the given configuration as the first
// snapshot. The configuration must already be validated.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Snapshot returns the current configuration snapshot. The returned value
// must be treated as immutable; it is shared by every concurrent reader.
func (s *Store) Snapshot() *Config {
	return s.current.Load()
}

// Swap validates and publishes a new configuration snapshot. On validation
// failure the previous snapshot stays live and the error is returned.
func (s *Store) Swap(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	s.current.Store(cfg)
	for _, fn := range s.onSwap {
		fn(cfg)
	}
	return nil
}

// OnSwap registers a callback invoked with each newly published snapshot.
// Components that cache derived state (feature-flag gates, sampler rates,
// sanitizer key sets) subscribe here. Must be called during wiring, before
// any concurrent Swap.
func (s *Store) OnSwap(fn func(*Config)) {
	s.onSwap = append(s.onSwap, fn)
}
