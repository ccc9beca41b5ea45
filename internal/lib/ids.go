package lib

import (
	"strconv"
	"sync"
)

// IDs gives a short, stable identifier to each unique string, in first-seen order. It
// stores a map of [string]int rather than hashing, which keeps generated output small
// and free of characters that need quoting.
type IDs struct {
	mu      *sync.Mutex
	prefix  string
	ids     map[string]int
	counter int
}

func NewIDs(prefix string) *IDs {
	return &IDs{
		mu:     &sync.Mutex{},
		prefix: prefix,
		ids:    make(map[string]int),
	}
}

// Get returns the identifier for str, allocating one on first sight.
func (s *IDs) Get(str string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.ids[str]
	if !ok {
		s.counter++
		id = s.counter
		s.ids[str] = id
	}
	return s.prefix + strconv.Itoa(id)
}
