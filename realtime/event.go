package realtime

import "encoding/json"

// Table topics carried on the change bus, one per entity table.
const (
	TableLinks          = "automation_links"
	TableCategories     = "categories"
	TableUsers          = "users"
	TableClickAnalytics = "click_analytics"
)

// Kind tags a change event.
type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

// Event is the tagged change payload delivered for every committed
// mutation. NewRow is set for INSERT/UPDATE, OldRow for UPDATE/DELETE;
// rows travel as raw JSON so subscribers decode into their own types.
type Event struct {
	Kind   Kind            `json:"kind"`
	Table  string          `json:"table"`
	NewRow json.RawMessage `json:"new,omitempty"`
	OldRow json.RawMessage `json:"old,omitempty"`
}

// Inserted builds an INSERT event for the given row.
func Inserted(table string, row any) Event {
	b, _ := json.Marshal(row)
	return Event{Kind: KindInsert, Table: table, NewRow: b}
}

// Updated builds an UPDATE event carrying both versions of the row.
func Updated(table string, oldRow, newRow any) Event {
	ob, _ := json.Marshal(oldRow)
	nb, _ := json.Marshal(newRow)
	return Event{Kind: KindUpdate, Table: table, NewRow: nb, OldRow: ob}
}

// Deleted builds a DELETE event for the removed row.
func Deleted(table string, row any) Event {
	b, _ := json.Marshal(row)
	return Event{Kind: KindDelete, Table: table, OldRow: b}
}
