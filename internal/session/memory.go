package session

import (
	"context"
	"log"
	"sync"
	"time"
)

type entry struct {
	content string
	expires time.Time
}

// MemoryStore is an in-process Store. Expired entries are invisible to Get
// immediately and removed from memory by the sweep loop.
type MemoryStore struct {
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]entry

	stopMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL sets how long an entry stays readable.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often expired entries are removed.
func WithSweepInterval(interval time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates a MemoryStore. Call Start to run the sweep loop.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		ttl:      DefaultTTL,
		interval: DefaultSweepInterval,
		now:      time.Now,
		entries:  make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores content under id, replacing any previous value and resetting its TTL.
func (s *MemoryStore) Put(_ context.Context, id, content string) error {
	if err := checkKey(id); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[id] = entry{content: content, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Get returns the content stored under id.
func (s *MemoryStore) Get(_ context.Context, id string) (string, error) {
	if err := checkKey(id); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expires) {
		return "", ErrNotFound
	}
	return e.content, nil
}

// Len returns the number of entries held in memory, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Start runs the sweep loop until Stop. Calling Start twice is a no-op.
func (s *MemoryStore) Start() {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Stop ends the sweep loop and waits for it to exit.
func (s *MemoryStore) Stop() {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *MemoryStore) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[session] swept %d expired entries", n)
			}
		case <-stop:
			return
		}
	}
}
