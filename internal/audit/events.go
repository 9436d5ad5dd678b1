package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a queue lifecycle event on the audit stream
type EventType string

const (
	EventQueueCreated      EventType = "queue.created"
	EventQueueTransitioned EventType = "queue.transitioned"
	EventQueueUpdated      EventType = "queue.updated"
	EventQueueDeleted      EventType = "queue.deleted"
	EventQueueReassigned   EventType = "queue.reassigned"
	EventBatchCompleted    EventType = "queue.batch_completed"
)

// QueueEvent is one immutable record on the queue audit stream. Events are
// partitioned by shop so per-shop ordering is preserved.
type QueueEvent struct {
	ID         uuid.UUID              `json:"id"`
	Type       EventType              `json:"type"`
	ShopID     uuid.UUID              `json:"shop_id"`
	QueueID    uuid.UUID              `json:"queue_id,omitempty"`
	FromStatus string                 `json:"from_status,omitempty"`
	ToStatus   string                 `json:"to_status,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NewQueueEvent builds an event with identity and timestamp filled in
func NewQueueEvent(eventType EventType, shopID, queueID uuid.UUID) *QueueEvent {
	return &QueueEvent{
		ID:         uuid.New(),
		Type:       eventType,
		ShopID:     shopID,
		QueueID:    queueID,
		OccurredAt: time.Now().UTC(),
	}
}

// WithStatusChange records the transition endpoints on the event
func (e *QueueEvent) WithStatusChange(from, to string) *QueueEvent {
	e.FromStatus = from
	e.ToStatus = to
	return e
}

// WithPayload attaches free-form context to the event
func (e *QueueEvent) WithPayload(payload map[string]interface{}) *QueueEvent {
	e.Payload = payload
	return e
}

// ToJSON serializes the event for the wire
func (e *QueueEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one shop to the same partition
func (e *QueueEvent) PartitionKey() string {
	return e.ShopID.String()
}
