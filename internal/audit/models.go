package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	id "aidtrack/pkg/domain"
)

// Action is the verb of an audit record.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Entity names used as audit targets. Kept as strings so the trail can
// absorb new entities without a schema change.
const (
	EntityDelivery       = "Delivery"
	EntityDuplicateAlert = "DuplicateAlert"
	EntityReceipt        = "Receipt"
)

// Record is one append-only fact: who did what to which entity, when, with
// the prior and new state attached as opaque JSON snapshots. Records are
// never mutated or deleted through normal operation.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Action    Action          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	ActorID   *id.UserID      `json:"actor_id,omitempty"` // nil denotes a system-initiated change
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	Station   string          `json:"station,omitempty"`
	ClientIP  string          `json:"client_ip,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
