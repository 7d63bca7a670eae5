package flow

import (
	"context"
	"sync"
	"time"
)

// searchDebounce is how long input must stay quiet before a query fires.
const searchDebounce = 400 * time.Millisecond

// Searcher debounces roster search input and delivers results last-query-wins:
// a late response for a superseded query is dropped, never overwriting a newer
// one. Results are delivered on the callback from a background goroutine.
type Searcher struct {
	mu      sync.Mutex
	client  Client
	delay   time.Duration
	timer   *time.Timer
	seq     uint64
	closed  bool
	deliver func(query string, players []Player, err error)
}

// NewSearcher returns a Searcher with the standard 400ms debounce.
// deliver is called once per fired query that is still current on arrival.
func NewSearcher(client Client, deliver func(query string, players []Player, err error)) *Searcher {
	return newSearcher(client, searchDebounce, deliver)
}

func newSearcher(client Client, delay time.Duration, deliver func(query string, players []Player, err error)) *Searcher {
	return &Searcher{
		client:  client,
		delay:   delay,
		deliver: deliver,
	}
}

// Input records a keystroke: any armed query is superseded and the debounce
// window restarts.
func (s *Searcher) Input(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(seq, query)
	})
}

func (s *Searcher) fire(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	players, err := s.client.SearchPlayers(context.Background(), query)

	s.mu.Lock()
	// Re-check: a newer query may have been typed while this one was in flight.
	stale := s.closed || seq != s.seq
	deliver := s.deliver
	s.mu.Unlock()
	if stale || deliver == nil {
		return
	}
	deliver(query, players, err)
}

// Close cancels any armed or in-flight query. No deliveries happen after Close.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
