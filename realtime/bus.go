package realtime

import "context"

// Handler receives change events for one table. Delivery is asynchronous
// and best-effort; a missed event is only remedied by a full refetch.
type Handler func(Event)

// Subscription is the disposable handle returned by Subscribe.
type Subscription interface {
	// Unsubscribe is idempotent and safe to call on a handle whose setup
	// never succeeded.
	Unsubscribe()
}

// Bus is the change-notification channel of the backend connector:
// mutations publish, open sessions subscribe per table.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe never fails; when channel setup breaks it logs and hands
	// back a no-op handle so a broken feed cannot block a CRUD action.
	Subscribe(table string, h Handler) Subscription
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}

// NoopSubscription returns the handle used when subscription setup failed.
func NoopSubscription() Subscription { return noopSubscription{} }
