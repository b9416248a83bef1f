package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team is a user_teams row.
type Team struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	PlayerIDs []string  `json:"player_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamView is a team with its player ids resolved against the catalog.
type TeamView struct {
	Team
	Players []Player `json:"players"`
}

// Hydrate builds the view of t from the catalog players found for its ids.
// Ids with no matching player are dropped; the order of player_ids is kept.
func Hydrate(t Team, found []Player) TeamView {
	byID := make(map[string]Player, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	players := make([]Player, 0, len(t.PlayerIDs))
	for _, id := range t.PlayerIDs {
		if p, ok := byID[id]; ok {
			players = append(players, p)
		}
	}

	if t.PlayerIDs == nil {
		t.PlayerIDs = []string{}
	}
	return TeamView{Team: t, Players: players}
}

// TeamLookupState tags the outcome of reading a user's team.
type TeamLookupState int

const (
	TeamAbsent TeamLookupState = iota
	TeamFound
	TeamLookupFailed
)

// TeamLookup is the tagged result of a team read: Found carries View,
// LookupFailed carries Err.
type TeamLookup struct {
	State TeamLookupState
	View  *TeamView
	Err   error
}
