package config

import "sync/atomic"

// Store hands out configuration snapshots to concurrent readers. Request
// handlers read the snapshot current at the time they run; a reload swaps
// the pointer and in-flight requests keep the snapshot they started with.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a store seeded with the given configuration.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Current returns the active configuration snapshot. Callers must not
// mutate the returned value.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Replace publishes a new configuration snapshot.
func (s *Store) Replace(cfg *Config) {
	s.current.Store(cfg)
}
