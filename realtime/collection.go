package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"toolboard/utils"
)

// Row is implemented by every model held in a Collection.
type Row interface {
	RowID() string
}

// ListFunc loads the full collection from the repository.
type ListFunc[T Row] func(ctx context.Context) ([]T, error)

// PingFunc checks backend reachability before the first load.
type PingFunc func(ctx context.Context) error

const defaultSubscribeDelay = time.Second

// Collection keeps an ordered in-memory copy of one entity table, patched
// in place from change events instead of re-fetched. Once the initial load
// succeeds the in-memory list is the sole source of truth; Refetch replaces
// it wholesale on demand.
type Collection[T Row] struct {
	table   string
	bus     Bus
	ping    PingFunc
	list    ListFunc[T]
	prepend bool
	delay   time.Duration

	mu      sync.Mutex
	items   []T
	loading bool
	err     error
	sub     Subscription
	timer   *time.Timer
	alive   bool
}

// NewCollection builds a collection for one table. prependNewest selects
// where INSERT events land: links and users show newest first, categories
// append in arrival order.
func NewCollection[T Row](table string, bus Bus, ping PingFunc, list ListFunc[T], prependNewest bool) *Collection[T] {
	return &Collection[T]{
		table:   table,
		bus:     bus,
		ping:    ping,
		list:    list,
		prepend: prependNewest,
		delay:   defaultSubscribeDelay,
		loading: true,
	}
}

// SetSubscribeDelay overrides the pause between the initial load and the
// subscription setup. Call before Start.
func (c *Collection[T]) SetSubscribeDelay(d time.Duration) { c.delay = d }

// Start performs the initial load and schedules the subscription. An
// unreachable backend or a failed load leaves the collection failed; a
// failed subscription setup leaves it ready but without live updates.
func (c *Collection[T]) Start(ctx context.Context) {
	c.mu.Lock()
	if c.alive {
		c.mu.Unlock()
		return
	}
	c.alive = true
	c.loading = true
	c.mu.Unlock()

	if c.ping != nil {
		if err := c.ping(ctx); err != nil {
			c.fail(fmt.Errorf("backend unreachable: %w", err))
			return
		}
	}

	rows, err := c.list(ctx)
	if err != nil {
		c.fail(err)
		return
	}

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	c.items = rows
	c.loading = false
	c.err = nil
	// The short delay avoids doubled channels when a consumer restarts the
	// collection in quick succession.
	c.timer = time.AfterFunc(c.delay, c.openSubscription)
	c.mu.Unlock()
}

func (c *Collection[T]) fail(err error) {
	utils.Sugar.Errorf("collection %s load failed: %v", c.table, err)
	c.mu.Lock()
	c.err = err
	c.loading = false
	c.mu.Unlock()
}

func (c *Collection[T]) openSubscription() {
	c.mu.Lock()
	if !c.alive || c.sub != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	sub := c.bus.Subscribe(c.table, c.apply)

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	c.sub = sub
	c.mu.Unlock()
}

// apply merges one change event into the in-memory list. Events for ids the
// list does not hold (a load racing the subscription) are safe no-ops.
func (c *Collection[T]) apply(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return
	}

	switch ev.Kind {
	case KindInsert:
		var row T
		if err := json.Unmarshal(ev.NewRow, &row); err != nil {
			return
		}
		if c.indexOf(row.RowID()) >= 0 {
			return
		}
		if c.prepend {
			c.items = append([]T{row}, c.items...)
		} else {
			c.items = append(c.items, row)
		}
	case KindUpdate:
		var row T
		if err := json.Unmarshal(ev.NewRow, &row); err != nil {
			return
		}
		if i := c.indexOf(row.RowID()); i >= 0 {
			c.items[i] = row
		}
	case KindDelete:
		var row T
		if err := json.Unmarshal(ev.OldRow, &row); err != nil {
			return
		}
		if i := c.indexOf(row.RowID()); i >= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
	}
}

func (c *Collection[T]) indexOf(id string) int {
	for i, it := range c.items {
		if it.RowID() == id {
			return i
		}
	}
	return -1
}

// Refetch re-runs the full load and replaces the list wholesale,
// independent of subscription state.
func (c *Collection[T]) Refetch(ctx context.Context) error {
	rows, err := c.list(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return err
	}
	if err != nil {
		c.err = err
		return err
	}
	c.items = rows
	c.err = nil
	return nil
}

// Stop tears the collection down. Safe to call repeatedly, and safe when
// the subscription was never established; late completions are discarded.
func (c *Collection[T]) Stop() {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return
	}
	c.alive = false
	timer := c.timer
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Snapshot returns a copy of the current list.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Err returns the recorded load error, if any.
func (c *Collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Loading reports whether the initial load is still in progress.
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Collection[T]) subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub != nil
}
