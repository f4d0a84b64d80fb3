// Package credentials holds provider API keys handed over by the UI.
// Values live in memory only; a production deployment would back this with
// the OS keyring.
package credentials

import (
	"fmt"
	"sync"
)

// Store is a concurrency-safe service:key → value map.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty credential store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

func fullKey(service, key string) string {
	return fmt.Sprintf("%s:%s", service, key)
}

// Set stores a credential value for service/key.
func (s *Store) Set(service, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[fullKey(service, key)] = value
}

// Get returns the stored value and whether it exists.
func (s *Store) Get(service, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[fullKey(service, key)]
	return v, ok
}

// Delete removes a credential. Deleting a missing key is a no-op.
func (s *Store) Delete(service, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, fullKey(service, key))
}

// GetOr returns the stored value, or fallback when absent or empty.
func (s *Store) GetOr(service, key, fallback string) string {
	if v, ok := s.Get(service, key); ok && v != "" {
		return v
	}
	return fallback
}
