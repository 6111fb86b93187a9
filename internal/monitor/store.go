package monitor

import (
	"sync"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// Store holds the last completed Summary. The poll cycle publishes a fully
// built snapshot; handlers read it concurrently and never observe a partial
// one.
type Store struct {
	mu      sync.RWMutex
	current *model.Summary
}

func NewStore() *Store {
	return &Store{}
}

// Publish replaces the current snapshot.
func (s *Store) Publish(summary *model.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = summary
}

// Current returns the last published snapshot, or nil before the first
// completed cycle.
func (s *Store) Current() *model.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
