package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewTeamEvent creates a team lifecycle event carrying the chosen player ids.
func NewTeamEvent(evtType EventType, t Team) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"team_id":    t.ID.String(),
		"user_id":    t.UserID,
		"player_ids": t.PlayerIDs,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateTeam,
		AggregateID:   t.UserID,
		EventType:     evtType,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPlayerRegisteredEvent creates the event for an admin-added player.
func NewPlayerRegisteredEvent(p Player, registeredBy string) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"player":        p,
		"registered_by": registeredBy,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregatePlayer,
		AggregateID:   p.ID,
		EventType:     EventPlayerRegistered,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewCatalogSeededEvent records a bootstrap of the player catalog.
func NewCatalogSeededEvent(inserted int64, ids []string) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"inserted":   inserted,
		"player_ids": ids,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateCatalog,
		AggregateID:   "players",
		EventType:     EventCatalogSeeded,
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
