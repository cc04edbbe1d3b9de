package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"toolboard/utils"
)

// LoadFunc recomputes an aggregate value from scratch.
type LoadFunc[S any] func(ctx context.Context) (S, error)

// Feed holds a single aggregate record (dashboard stats) recomputed
// wholesale on every change signal from the subscribed tables. Nothing is
// patched incrementally; events are used purely as an invalidation signal.
type Feed[S any] struct {
	tables []string
	bus    Bus
	ping   PingFunc
	load   LoadFunc[S]
	delay  time.Duration

	mu      sync.Mutex
	value   S
	loading bool
	err     error
	subs    []Subscription
	timer   *time.Timer
	alive   bool
}

// NewFeed builds a feed recomputed by load whenever any of the given tables
// reports a change.
func NewFeed[S any](bus Bus, ping PingFunc, load LoadFunc[S], tables ...string) *Feed[S] {
	return &Feed[S]{
		tables:  tables,
		bus:     bus,
		ping:    ping,
		load:    load,
		delay:   defaultSubscribeDelay,
		loading: true,
	}
}

// SetSubscribeDelay overrides the pause before subscription setup. Call
// before Start.
func (f *Feed[S]) SetSubscribeDelay(d time.Duration) { f.delay = d }

// Start computes the initial value and schedules the subscriptions.
func (f *Feed[S]) Start(ctx context.Context) {
	f.mu.Lock()
	if f.alive {
		f.mu.Unlock()
		return
	}
	f.alive = true
	f.loading = true
	f.mu.Unlock()

	if f.ping != nil {
		if err := f.ping(ctx); err != nil {
			f.fail(fmt.Errorf("backend unreachable: %w", err))
			return
		}
	}

	v, err := f.load(ctx)
	if err != nil {
		f.fail(err)
		return
	}

	f.mu.Lock()
	if !f.alive {
		f.mu.Unlock()
		return
	}
	f.value = v
	f.loading = false
	f.err = nil
	f.timer = time.AfterFunc(f.delay, f.openSubscriptions)
	f.mu.Unlock()
}

func (f *Feed[S]) fail(err error) {
	utils.Sugar.Errorf("stats feed load failed: %v", err)
	f.mu.Lock()
	f.err = err
	f.loading = false
	f.mu.Unlock()
}

func (f *Feed[S]) openSubscriptions() {
	f.mu.Lock()
	if !f.alive || len(f.subs) > 0 {
		f.mu.Unlock()
		return
	}
	tables := f.tables
	f.mu.Unlock()

	subs := make([]Subscription, 0, len(tables))
	for _, table := range tables {
		subs = append(subs, f.bus.Subscribe(table, f.onChange))
	}

	f.mu.Lock()
	if !f.alive {
		f.mu.Unlock()
		for _, s := range subs {
			s.Unsubscribe()
		}
		return
	}
	f.subs = subs
	f.mu.Unlock()
}

// onChange treats any event as an invalidation and recomputes off the
// caller's goroutine.
func (f *Feed[S]) onChange(Event) {
	go f.reload(context.Background())
}

func (f *Feed[S]) reload(ctx context.Context) {
	v, err := f.load(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.alive {
		return
	}
	if err != nil {
		f.err = err
		return
	}
	f.value = v
	f.err = nil
}

// Refetch recomputes the value on demand.
func (f *Feed[S]) Refetch(ctx context.Context) error {
	v, err := f.load(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.alive {
		return err
	}
	if err != nil {
		f.err = err
		return err
	}
	f.value = v
	f.err = nil
	return nil
}

// Stop tears the feed down; late recomputations are discarded.
func (f *Feed[S]) Stop() {
	f.mu.Lock()
	if !f.alive {
		f.mu.Unlock()
		return
	}
	f.alive = false
	timer := f.timer
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	for _, s := range subs {
		s.Unsubscribe()
	}
}

// Value returns the current aggregate.
func (f *Feed[S]) Value() S {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Err returns the recorded load error, if any.
func (f *Feed[S]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Loading reports whether the initial load is still in progress.
func (f *Feed[S]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}
