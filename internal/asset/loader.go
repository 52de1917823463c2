// Package asset decodes and caches bitmap sources for the renderer.
// Sources are cached by source string, so two layers sharing one source
// share one decode. Each load settles against the exact entry it
// claimed: a load that resolves after its source was invalidated or
// replaced is discarded instead of clobbering newer state.
package asset

import (
	"context"
	"image"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// State is the lifecycle of one cached source.
type State int

const (
	StateUnknown State = iota
	StatePending
	StateReady
	StateBroken
)

type entry struct {
	img   *image.NRGBA
	state State
	err   error
}

// Loader is a concurrency-safe decode cache.
type Loader struct {
	mu      sync.RWMutex
	entries map[string]*entry

	fetcher Fetcher
	warn    func(source string, err error)
	limit   int
}

// Options configures a Loader.
type Options struct {
	// Fetcher resolves remote URL sources. Nil leaves URL sources
	// broken; the engine itself makes no network calls.
	Fetcher Fetcher

	// Warn is called when a source fails to decode. Defaults to log.
	Warn func(source string, err error)

	// Concurrency limits parallel decodes in Ensure. Defaults to 4.
	Concurrency int
}

// NewLoader creates an empty loader.
func NewLoader(opts Options) *Loader {
	warn := opts.Warn
	if warn == nil {
		warn = func(source string, err error) {
			log.Printf("asset: %s: %v", truncate(source, 64), err)
		}
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}
	return &Loader{
		entries: make(map[string]*entry),
		fetcher: opts.Fetcher,
		warn:    warn,
		limit:   limit,
	}
}

// Ensure decodes every source not already cached and waits until all of
// them settle (ready or broken). Decode failures mark the source broken
// and surface through the warn callback; only context cancellation is
// returned as an error.
func (l *Loader) Ensure(ctx context.Context, sources []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	for _, src := range sources {
		src := src
		e, fresh := l.claim(src)
		if !fresh {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				l.release(src, e)
				return err
			}
			img, err := l.decode(ctx, src)
			l.settle(src, e, img, err)
			return nil
		})
	}
	return g.Wait()
}

// Get returns the decoded bitmap for a source, or nil unless ready.
func (l *Loader) Get(source string) *image.NRGBA {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[source]; ok && e.state == StateReady {
		return e.img
	}
	return nil
}

// State returns the cache state for a source.
func (l *Loader) State(source string) State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[source]; ok {
		return e.state
	}
	return StateUnknown
}

// Err returns the decode error for a broken source, or nil.
func (l *Loader) Err(source string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e, ok := l.entries[source]; ok {
		return e.err
	}
	return nil
}

// Invalidate drops a source from the cache. An in-flight load of it
// keeps pointing at the removed entry and resolves into the void.
func (l *Loader) Invalidate(source string) {
	l.mu.Lock()
	delete(l.entries, source)
	l.mu.Unlock()
}

// claim registers a pending entry for src. It reports false when the
// source is already cached or being loaded.
func (l *Loader) claim(src string) (*entry, bool) {
	if src == "" {
		return nil, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[src]; exists {
		return nil, false
	}
	e := &entry{state: StatePending}
	l.entries[src] = e
	return e, true
}

// release removes a claimed entry that was never decoded.
func (l *Loader) release(src string, e *entry) {
	l.mu.Lock()
	if cur, ok := l.entries[src]; ok && cur == e {
		delete(l.entries, src)
	}
	l.mu.Unlock()
}

// settle applies a decode result, unless the entry was superseded while
// the load was in flight.
func (l *Loader) settle(src string, e *entry, img *image.NRGBA, err error) {
	l.mu.Lock()
	cur, ok := l.entries[src]
	if !ok || cur != e {
		// Invalidated mid-flight: discard the stale resolution.
		l.mu.Unlock()
		return
	}
	if err != nil {
		e.state = StateBroken
		e.err = err
	} else {
		e.state = StateReady
		e.img = img
	}
	l.mu.Unlock()

	if err != nil {
		l.warn(src, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
