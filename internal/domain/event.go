package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventTeamCreated      EventType = "team.created"
	EventTeamUpdated      EventType = "team.updated"
	EventPlayerRegistered EventType = "player.registered"
	EventCatalogSeeded    EventType = "catalog.seeded"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateTeam    AggregateType = "team"
	AggregatePlayer  AggregateType = "player"
	AggregateCatalog AggregateType = "catalog"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is an unpublished outbox entry with its sequence id.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}

// Topic returns the Kafka topic for the event under the given prefix.
func (d OutboxDraft) Topic(prefix string) string {
	return prefix + "." + string(d.AggregateType) + "." + string(d.EventType)
}

// GuardResult is the outcome of a guard check.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"` // which guard blocked
}
