package realtime

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRow struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (r testRow) RowID() string { return r.ID }

func listOf(rows ...testRow) ListFunc[testRow] {
	return func(context.Context) ([]testRow, error) {
		out := make([]testRow, len(rows))
		copy(out, rows)
		return out, nil
	}
}

// startCollection runs Start with no subscribe delay and waits for the
// subscription to land.
func startCollection(t *testing.T, c *Collection[testRow]) {
	t.Helper()
	c.SetSubscribeDelay(0)
	c.Start(context.Background())
	deadline := time.Now().Add(time.Second)
	for !c.subscribed() {
		if time.Now().After(deadline) {
			t.Fatal("subscription never established")
		}
		time.Sleep(time.Millisecond)
	}
}

func ids(rows []testRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCollectionInitialLoad(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil, listOf(testRow{ID: "1"}, testRow{ID: "2"}), true)
	defer c.Stop()

	if !c.Loading() {
		t.Fatal("not loading before Start")
	}
	startCollection(t, c)

	if c.Loading() {
		t.Fatal("still loading after Start")
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
	if got := ids(c.Snapshot()); !equalIDs(got, []string{"1", "2"}) {
		t.Fatalf("snapshot: %v", got)
	}
}

func TestCollectionFailedPing(t *testing.T) {
	bus := NewMemoryBus()
	ping := func(context.Context) error { return errors.New("connection refused") }
	c := NewCollection("t", bus, ping, listOf(), true)
	defer c.Stop()

	c.SetSubscribeDelay(0)
	c.Start(context.Background())

	if c.Err() == nil {
		t.Fatal("expected error after failed ping")
	}
	if c.Loading() {
		t.Fatal("loading should settle on failure")
	}
	// No subscription is opened for a failed collection.
	time.Sleep(10 * time.Millisecond)
	if c.subscribed() {
		t.Fatal("failed collection subscribed anyway")
	}
}

func TestCollectionInsertPrepend(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil, listOf(testRow{ID: "1"}), true)
	defer c.Stop()
	startCollection(t, c)

	bus.Publish(context.Background(), Inserted("t", testRow{ID: "2", Title: "new"}))

	if got := ids(c.Snapshot()); !equalIDs(got, []string{"2", "1"}) {
		t.Fatalf("prepend order: %v", got)
	}

	// A duplicate insert for a held id is a no-op.
	bus.Publish(context.Background(), Inserted("t", testRow{ID: "2", Title: "again"}))
	if got := c.Snapshot(); len(got) != 2 || got[0].Title != "new" {
		t.Fatalf("duplicate insert applied: %+v", got)
	}
}

func TestCollectionInsertAppend(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil, listOf(testRow{ID: "1"}), false)
	defer c.Stop()
	startCollection(t, c)

	bus.Publish(context.Background(), Inserted("t", testRow{ID: "2"}))

	if got := ids(c.Snapshot()); !equalIDs(got, []string{"1", "2"}) {
		t.Fatalf("append order: %v", got)
	}
}

func TestCollectionUpdateInPlace(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil,
		listOf(testRow{ID: "1", Title: "a"}, testRow{ID: "2", Title: "b"}), true)
	defer c.Stop()
	startCollection(t, c)

	bus.Publish(context.Background(), Updated("t",
		testRow{ID: "2", Title: "b"}, testRow{ID: "2", Title: "b2"}))

	got := c.Snapshot()
	if !equalIDs(ids(got), []string{"1", "2"}) {
		t.Fatalf("order changed on update: %v", ids(got))
	}
	if got[1].Title != "b2" {
		t.Fatalf("update not applied: %+v", got[1])
	}

	// Update for an id the list does not hold is a safe no-op.
	bus.Publish(context.Background(), Updated("t",
		testRow{ID: "9"}, testRow{ID: "9", Title: "ghost"}))
	if len(c.Snapshot()) != 2 {
		t.Fatal("unknown-id update mutated the list")
	}
}

func TestCollectionDelete(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil,
		listOf(testRow{ID: "1"}, testRow{ID: "2"}, testRow{ID: "3"}), true)
	defer c.Stop()
	startCollection(t, c)

	bus.Publish(context.Background(), Deleted("t", testRow{ID: "2"}))
	if got := ids(c.Snapshot()); !equalIDs(got, []string{"1", "3"}) {
		t.Fatalf("delete: %v", got)
	}

	bus.Publish(context.Background(), Deleted("t", testRow{ID: "9"}))
	if len(c.Snapshot()) != 2 {
		t.Fatal("unknown-id delete mutated the list")
	}
}

func TestCollectionRowLifecycleRestores(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil,
		listOf(testRow{ID: "1", Title: "a"}, testRow{ID: "2", Title: "b"}), true)
	defer c.Stop()
	startCollection(t, c)

	before := c.Snapshot()
	bus.Publish(context.Background(), Inserted("t", testRow{ID: "3", Title: "c"}))
	bus.Publish(context.Background(), Updated("t",
		testRow{ID: "3", Title: "c"}, testRow{ID: "3", Title: "c2"}))
	bus.Publish(context.Background(), Deleted("t", testRow{ID: "3"}))

	after := c.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("lifecycle left %d rows, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("row %d changed: %+v != %+v", i, after[i], before[i])
		}
	}
}

func TestCollectionRefetchReplacesWholesale(t *testing.T) {
	bus := NewMemoryBus()
	rows := []testRow{{ID: "1"}}
	c := NewCollection("t", bus, nil, func(context.Context) ([]testRow, error) {
		out := make([]testRow, len(rows))
		copy(out, rows)
		return out, nil
	}, true)
	defer c.Stop()
	startCollection(t, c)

	rows = []testRow{{ID: "7"}, {ID: "8"}}
	if err := c.Refetch(context.Background()); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got := ids(c.Snapshot()); !equalIDs(got, []string{"7", "8"}) {
		t.Fatalf("refetch did not replace: %v", got)
	}
}

func TestCollectionStopDiscardsLateEvents(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil, listOf(testRow{ID: "1"}), true)
	startCollection(t, c)

	c.Stop()
	bus.Publish(context.Background(), Inserted("t", testRow{ID: "2"}))

	if len(c.Snapshot()) != 1 {
		t.Fatal("event applied after Stop")
	}

	// Stop is idempotent, including when called again immediately.
	c.Stop()
	c.Stop()
}

func TestCollectionStopBeforeSubscription(t *testing.T) {
	bus := NewMemoryBus()
	c := NewCollection("t", bus, nil, listOf(testRow{ID: "1"}), true)
	c.SetSubscribeDelay(time.Hour)
	c.Start(context.Background())

	// Tear down while the subscription timer is still pending.
	c.Stop()
	if c.subscribed() {
		t.Fatal("subscription opened after Stop")
	}
}
