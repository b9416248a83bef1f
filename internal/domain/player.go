package domain

import "time"

// Last3Window is the size of the most-recent scoring window.
const Last3Window = 3

// Player is a fully populated catalog entry as returned to callers.
type Player struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Position      string     `json:"position"`
	Price         float64    `json:"price"`
	PointsHistory []float64  `json:"points_history"`
	Last3         []float64  `json:"last_3"`
	Points        int        `json:"points"`
	GoalsScored   int        `json:"goals_scored"`
	Assists       int        `json:"assists"`
	CleanSheets   int        `json:"clean_sheets"`
	CreatedAt     *time.Time `json:"created_at"`
}

// PlayerRecord is the storage shape of a players row. Optional columns are
// nullable and must go through Normalize before leaving the service layer.
type PlayerRecord struct {
	ID            string
	Name          string
	Position      string
	Price         *float64
	PointsHistory []float64
	Last3         []float64
	Points        *int
	GoalsScored   *int
	Assists       *int
	CleanSheets   *int
	CreatedAt     *time.Time
}

// Normalize fills every optional field with its zero default.
func (r PlayerRecord) Normalize() Player {
	return NormalizePlayer(Player{
		ID:            r.ID,
		Name:          r.Name,
		Position:      r.Position,
		Price:         deref(r.Price),
		PointsHistory: r.PointsHistory,
		Last3:         r.Last3,
		Points:        deref(r.Points),
		GoalsScored:   deref(r.GoalsScored),
		Assists:       deref(r.Assists),
		CleanSheets:   deref(r.CleanSheets),
		CreatedAt:     r.CreatedAt,
	})
}

// RecordOf converts a player into its storage shape with every column set.
func RecordOf(p Player) PlayerRecord {
	p = NormalizePlayer(p)
	return PlayerRecord{
		ID:            p.ID,
		Name:          p.Name,
		Position:      p.Position,
		Price:         &p.Price,
		PointsHistory: p.PointsHistory,
		Last3:         p.Last3,
		Points:        &p.Points,
		GoalsScored:   &p.GoalsScored,
		Assists:       &p.Assists,
		CleanSheets:   &p.CleanSheets,
		CreatedAt:     p.CreatedAt,
	}
}

// NormalizePlayer returns p with nil sequences replaced by empty ones and the
// last_3 window trimmed to its trailing entries. It is idempotent.
func NormalizePlayer(p Player) Player {
	p.PointsHistory = cloneOrEmpty(p.PointsHistory)
	last3 := p.Last3
	if len(last3) > Last3Window {
		last3 = last3[len(last3)-Last3Window:]
	}
	p.Last3 = cloneOrEmpty(last3)
	return p
}

// NormalizeRecords normalizes a batch of stored rows, preserving order.
func NormalizeRecords(records []PlayerRecord) []Player {
	out := make([]Player, 0, len(records))
	for _, r := range records {
		out = append(out, r.Normalize())
	}
	return out
}

func cloneOrEmpty(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
