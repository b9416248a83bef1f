//go:build integration

package integration

import (
	"net/http"
	"sync"
	"testing"

	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayers_RequiresToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.GET("/players")
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
}

func TestPlayers_SeedsEmptyCatalogOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.Token("u1", false)

	var first []domain.Player
	resp := env.AuthGET("/players", token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.DecodeJSON(t, resp, &first)
	require.Len(t, first, 11)
	assert.Equal(t, "1", first[0].ID)
	assert.Equal(t, "10", first[9].ID, "ids order numerically")

	var second []domain.Player
	testutil.DecodeJSON(t, env.AuthGET("/players", token), &second)
	require.Len(t, second, 11)
	assert.NotNil(t, second[0].CreatedAt, "stored rows carry created_at")

	assert.Equal(t, 11, testutil.Count(t, env, `SELECT COUNT(*) FROM players`))
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, string(domain.EventCatalogSeeded)))
}

func TestPlayers_ConcurrentBootstrapNeverDuplicates(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.Token("u1", false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.AuthGET("/players", token)
			resp.Body.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 11, testutil.Count(t, env, `SELECT COUNT(*) FROM players`))
}

func TestPlayers_NullColumnsNormalized(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, err := env.Pool.Exec(t.Context(),
		`INSERT INTO players (id, name, position) VALUES ('99', 'Bare Row', 'forward')`)
	require.NoError(t, err)

	var raw []map[string]interface{}
	testutil.DecodeJSON(t, env.AuthGET("/players", env.Token("u1", false)), &raw)
	require.Len(t, raw, 1, "a non-empty catalog is not seeded")
	assert.Equal(t, 0.0, raw[0]["price"])
	assert.Equal(t, []interface{}{}, raw[0]["points_history"])
	assert.Equal(t, []interface{}{}, raw[0]["last_3"])
	assert.Equal(t, 0.0, raw[0]["clean_sheets"])
}

func TestPlayers_AdminAdd(t *testing.T) {
	env := testutil.NewTestEnv(t)
	body := map[string]interface{}{
		"id": "12", "name": "Declan Rice", "position": "midfielder",
		"price": 6.5, "last_3": []float64{1, 2, 3, 4},
	}

	resp := env.POST("/players", body, env.Token("u1", false))
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	var created domain.Player
	resp = env.POST("/players", body, env.Token("admin", true))
	testutil.AssertStatus(t, resp, http.StatusCreated)
	testutil.DecodeJSON(t, resp, &created)
	assert.Equal(t, []float64{2, 3, 4}, created.Last3)
	assert.NotNil(t, created.CreatedAt)

	resp = env.POST("/players", body, env.Token("admin", true))
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "CONFLICT")

	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, string(domain.EventPlayerRegistered)))
}
