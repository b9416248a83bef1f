package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplePlayers_Roster(t *testing.T) {
	players, err := SamplePlayers()
	require.NoError(t, err)
	require.Len(t, players, 11)

	positions := map[string]int{}
	for i, p := range players {
		assert.NotEmpty(t, p.Name)
		assert.NotNil(t, p.PointsHistory)
		assert.NotNil(t, p.Last3)
		assert.Equal(t, i+1, mustAtoi(t, p.ID), "ids run 1..11 in order")
		positions[p.Position]++
	}
	assert.Equal(t, map[string]int{"goalkeeper": 2, "defender": 4, "forward": 5}, positions)

	haaland := players[6]
	assert.Equal(t, "Erling Haaland", haaland.Name)
	assert.Equal(t, 12.0, haaland.Price)
	assert.Equal(t, 180, haaland.Points)
	assert.Equal(t, 25, haaland.GoalsScored)
	assert.Equal(t, 3, haaland.Assists)
	assert.Zero(t, haaland.CleanSheets)
}

func TestSamplePlayers_ReturnsFreshCopies(t *testing.T) {
	first, err := SamplePlayers()
	require.NoError(t, err)
	first[0].Name = "changed"
	first[0].PointsHistory = append(first[0].PointsHistory, 1)

	second, err := SamplePlayers()
	require.NoError(t, err)
	assert.Equal(t, "Alisson", second[0].Name)
	assert.Empty(t, second[0].PointsHistory)
}

func TestParseRoster_Rejects(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":  "players: [",
		"missing name":  "players:\n  - id: \"1\"\n    position: forward\n",
		"duplicate id":  "players:\n  - {id: \"1\", name: A, position: forward}\n  - {id: \"1\", name: B, position: forward}\n",
		"negative cost": "players:\n  - {id: \"1\", name: A, position: forward, price: -1}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseRoster([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		require.True(t, r >= '0' && r <= '9', "non-numeric id %q", s)
		n = n*10 + int(r-'0')
	}
	return n
}
