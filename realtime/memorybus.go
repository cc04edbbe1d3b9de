package realtime

import (
	"context"
	"sync"
)

// MemoryBus is the in-process Bus used in tests and as a degraded fallback
// when Redis is unreachable; events then only reach subscribers inside the
// same process.
type MemoryBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]*memorySub
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[string][]*memorySub{}}
}

// Publish delivers the event to every current subscriber of the table,
// synchronously and in subscription order.
func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[ev.Table]))
	for _, s := range b.subs[ev.Table] {
		handlers = append(handlers, s.h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *MemoryBus) Subscribe(table string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &memorySub{bus: b, table: table, id: b.nextID, h: h}
	b.subs[table] = append(b.subs[table], sub)
	return sub
}

func (b *MemoryBus) remove(table string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[table]
	for i, s := range subs {
		if s.id == id {
			b.subs[table] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

type memorySub struct {
	bus   *MemoryBus
	table string
	id    int
	h     Handler
	once  sync.Once
}

func (s *memorySub) Unsubscribe() {
	s.once.Do(func() { s.bus.remove(s.table, s.id) })
}
