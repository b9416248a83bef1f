package service

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kickoff/fantasy/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed seed/players.yaml
var rosterYAML []byte

type rosterEntry struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Position      string    `yaml:"position"`
	Price         float64   `yaml:"price"`
	PointsHistory []float64 `yaml:"points_history"`
	Last3         []float64 `yaml:"last_3"`
	Points        int       `yaml:"points"`
	GoalsScored   int       `yaml:"goals_scored"`
	Assists       int       `yaml:"assists"`
	CleanSheets   int       `yaml:"clean_sheets"`
}

var (
	rosterOnce sync.Once
	roster     []domain.Player
	rosterErr  error
)

// SamplePlayers returns a fresh copy of the bootstrap roster, normalized.
func SamplePlayers() ([]domain.Player, error) {
	rosterOnce.Do(func() {
		roster, rosterErr = parseRoster(rosterYAML)
	})
	if rosterErr != nil {
		return nil, rosterErr
	}
	out := make([]domain.Player, len(roster))
	for i, p := range roster {
		out[i] = domain.NormalizePlayer(p)
	}
	return out, nil
}

func parseRoster(data []byte) ([]domain.Player, error) {
	var doc struct {
		Players []rosterEntry `yaml:"players"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	seen := make(map[string]bool, len(doc.Players))
	players := make([]domain.Player, 0, len(doc.Players))
	for _, e := range doc.Players {
		p := domain.NormalizePlayer(domain.Player{
			ID:            e.ID,
			Name:          e.Name,
			Position:      e.Position,
			Price:         e.Price,
			PointsHistory: e.PointsHistory,
			Last3:         e.Last3,
			Points:        e.Points,
			GoalsScored:   e.GoalsScored,
			Assists:       e.Assists,
			CleanSheets:   e.CleanSheets,
		})
		if err := domain.ValidatePlayer(p); err != nil {
			return nil, fmt.Errorf("roster entry %q: %w", e.ID, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("roster entry %q: duplicate id", e.ID)
		}
		seen[p.ID] = true
		players = append(players, p)
	}
	return players, nil
}
