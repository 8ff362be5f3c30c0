package kanim

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// LoadState is the lifecycle state of a cache entry. An entry moves from
// StateLoading to exactly one of the other states.
type LoadState uint8

const (
	StateLoading LoadState = iota // fetch in flight
	StateLoaded                   // Value is valid
	StateInvalid                  // loader returned nothing (ErrNotFound)
	StateError                    // transport or decode failure (ErrTransport)
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateInvalid:
		return "invalid"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("LoadState(%d)", uint8(s))
	}
}

// CacheEntry is a snapshot of one cache slot.
type CacheEntry[T any] struct {
	State LoadState
	Value T
	// Err is ErrNotFound for StateInvalid and wraps ErrTransport for StateError.
	Err error
}

// Ready reports whether the entry holds a value.
func (e CacheEntry[T]) Ready() bool { return e.State == StateLoaded }

type cacheSlot[T any] struct {
	entry CacheEntry[T]
	done  chan struct{} // closed when entry leaves StateLoading
}

// FetchFunc performs one load. ok=false with a nil error means "not found".
type FetchFunc[T any] func(ctx context.Context) (value T, ok bool, err error)

// Cache holds per-key load state and guarantees at most one fetch per key
// while it is in flight. Entries live until RetryFailed or process exit.
type Cache[T any] struct {
	// ctx is handed to every fetch. Loads are never cancelled by requesters.
	ctx     context.Context
	mu      sync.Mutex
	slots   map[string]*cacheSlot[T]
	tracker *loadTracker
	// onDone is called from the fetching goroutine after the entry resolves
	// and before waiters are released.
	onDone  func(key string, entry CacheEntry[T])
}

func newCache[T any](ctx context.Context, tracker *loadTracker, onDone func(string, CacheEntry[T])) *Cache[T] {
	return &Cache[T]{
		ctx:     ctx,
		slots:   make(map[string]*cacheSlot[T]),
		tracker: tracker,
		onDone:  onDone,
	}
}

// Get returns the entry for key without starting a load.
func (c *Cache[T]) Get(key string) (CacheEntry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	if !ok {
		return CacheEntry[T]{}, false
	}
	return s.entry, true
}

// Request returns the entry for key, starting one asynchronous fetch if the
// key has never been requested. It never blocks on the fetch.
func (c *Cache[T]) Request(key string, fetch FetchFunc[T]) CacheEntry[T] {
	s, started := c.slot(key)
	if started {
		go c.run(key, s, fetch)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.entry
}

// Await is Request followed by waiting for the entry to resolve. A load
// already in flight is joined, not repeated. ctx bounds the wait only.
func (c *Cache[T]) Await(ctx context.Context, key string, fetch FetchFunc[T]) (CacheEntry[T], error) {
	s, started := c.slot(key)
	if started {
		go c.run(key, s, fetch)
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		return CacheEntry[T]{State: StateLoading}, ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return s.entry, s.entry.Err
}

// slot returns the slot for key, creating it in StateLoading if absent.
// started reports whether the caller must run the fetch.
func (c *Cache[T]) slot(key string) (s *cacheSlot[T], started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[key]; ok {
		return s, false
	}
	s = &cacheSlot[T]{
		entry: CacheEntry[T]{State: StateLoading},
		done:  make(chan struct{}),
	}
	c.slots[key] = s
	c.tracker.add()
	return s, true
}

func (c *Cache[T]) run(key string, s *cacheSlot[T], fetch FetchFunc[T]) {
	defer c.tracker.done()

	var entry CacheEntry[T]
	value, ok, err := fetch(c.ctx)
	switch {
	case err != nil:
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %s: %w", ErrTransport, key, err)
		}
		entry = CacheEntry[T]{State: StateError, Err: err}
	case !ok:
		entry = CacheEntry[T]{State: StateInvalid, Err: ErrNotFound}
	default:
		entry = CacheEntry[T]{State: StateLoaded, Value: value}
	}

	c.mu.Lock()
	s.entry = entry
	c.mu.Unlock()

	// Waiters wake only after the completion is queued, so a Poll that
	// follows Await always sees it.
	if c.onDone != nil {
		c.onDone(key, entry)
	}
	close(s.done)
}

// RetryFailed forgets every StateError entry so that the next request fetches
// it again. It returns the number of entries dropped.
func (c *Cache[T]) RetryFailed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, s := range c.slots {
		if s.entry.State == StateError {
			delete(c.slots, key)
			n++
		}
	}
	return n
}

// Len returns the number of known keys in any state.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// loadTracker counts in-flight fetches across all caches of one Assets.
type loadTracker struct {
	mu       sync.Mutex
	inflight int
	idle     chan struct{} // closed while inflight == 0
}

func newLoadTracker() *loadTracker {
	idle := make(chan struct{})
	close(idle)
	return &loadTracker{idle: idle}
}

func (t *loadTracker) add() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.inflight == 0 {
		t.idle = make(chan struct{})
	}
	t.inflight++
}

func (t *loadTracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inflight--
	if t.inflight == 0 {
		close(t.idle)
	}
}

func (t *loadTracker) wait(ctx context.Context) error {
	for {
		t.mu.Lock()
		idle, n := t.idle, t.inflight
		t.mu.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
