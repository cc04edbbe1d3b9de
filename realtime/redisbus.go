package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"toolboard/utils"
)

// RedisBus carries change events over Redis pub/sub so every running
// instance (and every open admin session) observes mutations committed by
// any of them.
type RedisBus struct {
	rc *redis.Client
}

func NewRedisBus(rc *redis.Client) *RedisBus {
	return &RedisBus{rc: rc}
}

func topic(table string) string {
	return "events:" + table
}

// Publish sends the event to the table topic. Publish failures propagate to
// the caller; the mutation itself has already been committed by then.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rc.Publish(ctx, topic(ev.Table), payload).Err()
}

// Subscribe opens a dedicated pub/sub connection for this consumer. Each
// call gets its own uniquely named consumer so concurrent subscribers
// (several sessions, or a fast remount) never collide.
func (b *RedisBus) Subscribe(table string, h Handler) Subscription {
	name := fmt.Sprintf("%s_%d_%s", table, time.Now().UnixMilli(), uuid.NewString()[:8])

	ps := b.rc.Subscribe(context.Background(), topic(table))

	// Confirm the subscription before handing back the handle; setup
	// failures degrade to a no-op handle instead of propagating.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := ps.Receive(ctx); err != nil {
		utils.Sugar.Warnf("subscription setup failed table=%s consumer=%s err=%v", table, name, err)
		_ = ps.Close()
		return NoopSubscription()
	}

	go func() {
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				utils.Sugar.Warnf("malformed change event on %s: %v", msg.Channel, err)
				continue
			}
			h(ev)
		}
	}()

	utils.Sugar.Debugf("subscribed consumer=%s", name)
	return &redisSubscription{ps: ps, name: name}
}

type redisSubscription struct {
	ps   *redis.PubSub
	name string
	once sync.Once
}

func (s *redisSubscription) Unsubscribe() {
	s.once.Do(func() {
		if err := s.ps.Close(); err != nil {
			utils.Sugar.Warnf("unsubscribe consumer=%s err=%v", s.name, err)
			return
		}
		utils.Sugar.Debugf("unsubscribed consumer=%s", s.name)
	})
}
