package memory

import (
	"sync"

	"github.com/itchan-dev/postdesk/internal/service"
)

// Storage keeps slots in a map. Contents are lost on exit.
type Storage struct {
	slots map[string]string
	mu    sync.RWMutex
}

var _ service.KVStorage = (*Storage)(nil)

func New() *Storage {
	return &Storage{slots: make(map[string]string)}
}

func (s *Storage) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.slots[key]
	return value, ok, nil
}

func (s *Storage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = value
	return nil
}

func (s *Storage) Cleanup() error {
	return nil
}
