package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// --- Normalization Tests ---

func TestPlayerRecord_NormalizeDefaults(t *testing.T) {
	rec := PlayerRecord{ID: "42", Name: "Bukayo Saka", Position: "midfielder"}

	p := rec.Normalize()

	assert.Equal(t, "42", p.ID)
	assert.Equal(t, "Bukayo Saka", p.Name)
	assert.Equal(t, "midfielder", p.Position)
	assert.Equal(t, 0.0, p.Price)
	assert.NotNil(t, p.PointsHistory)
	assert.Empty(t, p.PointsHistory)
	assert.NotNil(t, p.Last3)
	assert.Empty(t, p.Last3)
	assert.Zero(t, p.Points)
	assert.Zero(t, p.GoalsScored)
	assert.Zero(t, p.Assists)
	assert.Zero(t, p.CleanSheets)
	assert.Nil(t, p.CreatedAt)
}

func TestPlayerRecord_NormalizeKeepsPresentValues(t *testing.T) {
	created := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := PlayerRecord{
		ID:            "7",
		Name:          "Erling Haaland",
		Position:      "forward",
		Price:         ptr(12.0),
		PointsHistory: []float64{2, 13, 6},
		Last3:         []float64{2, 13, 6},
		Points:        ptr(180),
		GoalsScored:   ptr(25),
		Assists:       ptr(3),
		CleanSheets:   ptr(0),
		CreatedAt:     &created,
	}

	p := rec.Normalize()

	assert.Equal(t, 12.0, p.Price)
	assert.Equal(t, []float64{2, 13, 6}, p.PointsHistory)
	assert.Equal(t, []float64{2, 13, 6}, p.Last3)
	assert.Equal(t, 180, p.Points)
	assert.Equal(t, 25, p.GoalsScored)
	assert.Equal(t, 3, p.Assists)
	assert.Equal(t, &created, p.CreatedAt)
}

func TestNormalizePlayer_TrimsLast3ToTrailingWindow(t *testing.T) {
	p := NormalizePlayer(Player{ID: "1", Last3: []float64{1, 2, 3, 4, 5}})
	assert.Equal(t, []float64{3, 4, 5}, p.Last3)
}

func TestNormalizePlayer_Idempotent(t *testing.T) {
	inputs := []Player{
		{ID: "1"},
		{ID: "2", Price: 5.5, PointsHistory: []float64{}, Last3: nil},
		{ID: "3", Last3: []float64{9, 8, 7, 6}},
		{ID: "4", PointsHistory: []float64{1.5}, Points: 10, GoalsScored: 1, Assists: 2, CleanSheets: 3},
	}

	for _, in := range inputs {
		t.Run(in.ID, func(t *testing.T) {
			once := NormalizePlayer(in)
			twice := NormalizePlayer(once)
			assert.Equal(t, once, twice)
		})
	}
}

func TestNormalizePlayer_DoesNotAliasInput(t *testing.T) {
	history := []float64{1, 2}
	p := NormalizePlayer(Player{ID: "1", PointsHistory: history})
	p.PointsHistory[0] = 99
	assert.Equal(t, 1.0, history[0])
}

func TestRecordOf_RoundTrip(t *testing.T) {
	p := Player{ID: "5", Name: "Trent Alexander-Arnold", Position: "defender", Price: 7.5, Points: 140, Assists: 10}
	assert.Equal(t, NormalizePlayer(p), RecordOf(p).Normalize())
}

// --- Hydration Tests ---

func TestHydrate_DropsUnknownIDsPreservingOrder(t *testing.T) {
	team := Team{ID: uuid.New(), UserID: "u1", PlayerIDs: []string{"1", "2", "nonexistent"}}
	found := []Player{{ID: "2", Name: "Ederson"}, {ID: "1", Name: "Alisson"}}

	view := Hydrate(team, found)

	require.Len(t, view.Players, 2)
	assert.Equal(t, "1", view.Players[0].ID)
	assert.Equal(t, "2", view.Players[1].ID)
	assert.Equal(t, []string{"1", "2", "nonexistent"}, view.PlayerIDs)
}

func TestHydrate_RepeatsDuplicatedIDs(t *testing.T) {
	team := Team{PlayerIDs: []string{"3", "3"}}
	view := Hydrate(team, []Player{{ID: "3"}})
	assert.Len(t, view.Players, 2)
}

func TestHydrate_EmptyTeam(t *testing.T) {
	view := Hydrate(Team{UserID: "u1"}, nil)
	assert.NotNil(t, view.Players)
	assert.Empty(t, view.Players)
	assert.NotNil(t, view.PlayerIDs)
}

func TestTeamView_JSONFlattensTeam(t *testing.T) {
	view := Hydrate(Team{ID: uuid.New(), UserID: "u1", PlayerIDs: []string{"1"}}, []Player{NormalizePlayer(Player{ID: "1"})})
	data, err := json.Marshal(view)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "u1", decoded["user_id"])
	assert.Contains(t, decoded, "players")
	assert.Contains(t, decoded, "player_ids")
}

// --- Validator Tests ---

func TestValidatePlayer(t *testing.T) {
	valid := Player{ID: "12", Name: "Declan Rice", Position: "midfielder", Price: 6.5}

	tests := []struct {
		name    string
		mutate  func(p *Player)
		wantErr string
	}{
		{"valid", func(p *Player) {}, ""},
		{"missing id", func(p *Player) { p.ID = " " }, "id is required"},
		{"missing name", func(p *Player) { p.Name = "" }, "name is required"},
		{"missing position", func(p *Player) { p.Position = "" }, "position is required"},
		{"negative price", func(p *Player) { p.Price = -1 }, "price must be non-negative"},
		{"negative goals", func(p *Player) { p.GoalsScored = -2 }, "goals_scored must be non-negative"},
		{"negative clean sheets", func(p *Player) { p.CleanSheets = -1 }, "clean_sheets must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidatePlayer(p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFirstMissing(t *testing.T) {
	id, name := "u1", "Jane"
	field, missing := FirstMissing([]string{"id", "full_name", "email"}, &id, &name, nil)
	assert.True(t, missing)
	assert.Equal(t, "email", field)

	field, missing = FirstMissing([]string{"id", "full_name", "email"}, nil, nil, nil)
	assert.True(t, missing)
	assert.Equal(t, "id", field)

	_, missing = FirstMissing([]string{"id"}, &id)
	assert.False(t, missing)
}

// --- Error Tests ---

func TestAppError_Statuses(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
		code   string
	}{
		{ErrNotFound("x"), http.StatusNotFound, "NOT_FOUND"},
		{ErrConflict("x"), http.StatusConflict, "CONFLICT"},
		{ErrTeamExists(), http.StatusBadRequest, "CONFLICT"},
		{ErrValidation("x"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{ErrBadRequest("x"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{ErrUnauthorized("x"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{ErrForbidden("x"), http.StatusForbidden, "FORBIDDEN"},
		{ErrRateLimited("x"), http.StatusTooManyRequests, "RATE_LIMITED"},
		{ErrAccountLocked("x"), http.StatusTooManyRequests, "ACCOUNT_LOCKED"},
		{ErrStoreUnavailable("x", nil), http.StatusInternalServerError, "STORE_UNAVAILABLE"},
		{ErrStoreInconsistent("x"), http.StatusInternalServerError, "STORE_INCONSISTENT"},
		{ErrInternal("x", nil), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestAppError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list players: %w", ErrStoreUnavailable("list players", cause))

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, appErr.Error(), "connection refused")
}

// --- Event Tests ---

func TestNewTeamEvent(t *testing.T) {
	team := Team{ID: uuid.New(), UserID: "u1", PlayerIDs: []string{"1", "7"}}
	evt := NewTeamEvent(EventTeamCreated, team)

	assert.Equal(t, AggregateTeam, evt.AggregateType)
	assert.Equal(t, "u1", evt.AggregateID)
	assert.Equal(t, "fantasy.team.team.created", evt.Topic("fantasy"))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, team.ID.String(), payload["team_id"])
	assert.Equal(t, []interface{}{"1", "7"}, payload["player_ids"])
}

func TestNewCatalogSeededEvent(t *testing.T) {
	evt := NewCatalogSeededEvent(11, []string{"1", "2"})
	assert.Equal(t, EventCatalogSeeded, evt.EventType)
	assert.NotEqual(t, uuid.Nil, evt.EventID)
}
