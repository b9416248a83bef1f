package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	"github.com/kickoff/fantasy/internal/auth"
	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/infra"
	"github.com/kickoff/fantasy/internal/provider"
	"github.com/kickoff/fantasy/internal/repository/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type passwordBook map[string]*domain.Identity

func (b passwordBook) SignInWithPassword(_ context.Context, email, password string) (*domain.Identity, error) {
	id, ok := b[email+":"+password]
	if !ok {
		return nil, fmt.Errorf("%w: status 400", provider.ErrRejected)
	}
	return id, nil
}

type testEnv struct {
	t       *testing.T
	store   *memstore.Store
	jwt     *auth.JWTManager
	book    passwordBook
	metrics *infra.Metrics
	router  http.Handler
}

func newTestEnv(t *testing.T, mutate ...func(*RouterDeps)) *testEnv {
	t.Helper()
	store := memstore.New(nil)
	jwtMgr := auth.NewJWTManager("router-test-secret", time.Hour)
	book := passwordBook{}
	metrics := infra.NewMetrics()

	deps := RouterDeps{
		Tx:     store,
		Health: okPinger{},
		Repos: Repositories{
			Players:       store.Players(),
			Teams:         store.Teams(),
			Users:         store.Users(),
			Outbox:        store.Outbox(),
			LoginAttempts: store.LoginAttempts(),
		},
		Resolver:           auth.NewJWTResolver(jwtMgr),
		Authenticator:      book,
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:            metrics,
		Clock:              clockwork.NewFakeClock(),
		CORSAllowedOrigins: "*",
		LoginRateLimit:     100,
	}
	for _, m := range mutate {
		m(&deps)
	}

	return &testEnv{t: t, store: store, jwt: jwtMgr, book: book, metrics: metrics, router: NewRouter(deps)}
}

func (e *testEnv) token(sub string, admin bool) string {
	e.t.Helper()
	tok, err := e.jwt.GenerateToken(sub, sub+"@example.com", admin)
	require.NoError(e.t, err)
	return tok
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fantasy_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/players"},
		{http.MethodPost, "/players"},
		{http.MethodGet, "/team"},
		{http.MethodPost, "/team"},
		{http.MethodPut, "/team"},
	} {
		rec := env.do(tc.method, tc.path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "not authenticated", body["message"])
	}
}

func TestPlayers_BootstrapThenStable(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token("u1", false)

	rec := env.do(http.MethodGet, "/players", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[[]domain.Player](t, rec)
	require.Len(t, first, 11)
	assert.Equal(t, "1", first[0].ID)
	assert.Equal(t, "11", first[10].ID)

	rec = env.do(http.MethodGet, "/players", tok, nil)
	second := decode[[]domain.Player](t, rec)
	require.Len(t, second, 11)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Points, second[i].Points)
	}

	raw := decode[[]map[string]interface{}](t, rec)
	assert.Equal(t, []interface{}{}, raw[0]["points_history"])
	assert.Equal(t, []interface{}{}, raw[0]["last_3"])
}

func TestPlayers_AdminAdd(t *testing.T) {
	env := newTestEnv(t)
	player := map[string]interface{}{"id": "12", "name": "Declan Rice", "position": "midfielder", "price": 6.5}

	rec := env.do(http.MethodPost, "/players", env.token("u1", false), player)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, env.store.PlayerCount())

	rec = env.do(http.MethodPost, "/players", env.token("admin", true), player)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[domain.Player](t, rec)
	assert.Equal(t, "Declan Rice", got.Name)
	assert.Equal(t, []float64{}, got.PointsHistory)

	rec = env.do(http.MethodPost, "/players", env.token("admin", true), player)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/players", env.token("admin", true), map[string]interface{}{"id": "13"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(http.MethodPost, "/players", env.token("admin", true), `{"id": 13`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeam_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token("u1", false)
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/players", tok, nil).Code)

	rec := env.do(http.MethodGet, "/team", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = env.do(http.MethodPut, "/team", tok, map[string]interface{}{"player_ids": []string{"1"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no team found for user", decode[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodPost, "/team", tok, map[string]interface{}{"player_ids": []string{"1", "2", "nonexistent"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Team domain.TeamView `json:"team"`
	}](t, rec)
	assert.Equal(t, "u1", created.Team.UserID)
	require.Len(t, created.Team.Players, 2)
	assert.Equal(t, "Alisson", created.Team.Players[0].Name)
	assert.Equal(t, "Ederson", created.Team.Players[1].Name)

	rec = env.do(http.MethodPost, "/team", tok, map[string]interface{}{"player_ids": []string{"3"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CONFLICT", decode[map[string]string](t, rec)["code"])
	assert.Equal(t, 1, env.store.TeamCount())

	rec = env.do(http.MethodPut, "/team", tok, map[string]interface{}{"player_ids": []string{"7", "8"}})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[struct {
		Team domain.TeamView `json:"team"`
	}](t, rec)
	assert.Equal(t, created.Team.ID, updated.Team.ID)
	assert.Equal(t, []string{"7", "8"}, updated.Team.PlayerIDs)

	rec = env.do(http.MethodGet, "/team", tok, nil)
	got := decode[domain.TeamView](t, rec)
	assert.Equal(t, []string{"7", "8"}, got.PlayerIDs)
	assert.Len(t, got.Players, 2)

	rec = env.do(http.MethodGet, "/team", env.token("u2", false), nil)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()), "teams are per identity")
}

func TestTeam_MissingPlayerIDsMeansEmpty(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token("u1", false)

	rec := env.do(http.MethodPost, "/team", tok, `{}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Team domain.TeamView `json:"team"`
	}](t, rec)
	assert.Equal(t, []string{}, created.Team.PlayerIDs)
	assert.Empty(t, created.Team.Players)

	rec = env.do(http.MethodPut, "/team", tok, map[string]interface{}{"player_ids": []string{"1"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPut, "/team", tok, `{"player_ids": null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[struct {
		Team domain.TeamView `json:"team"`
	}](t, rec)
	assert.Equal(t, []string{}, updated.Team.PlayerIDs)
}

func TestTeam_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token("u1", false)

	// Without a team, PUT reports the missing team before the bad body.
	rec := env.do(http.MethodPut, "/team", tok, `not json`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no team found for user", decode[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodPost, "/team", tok, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode[map[string]string](t, rec)["message"])
	assert.Zero(t, env.store.TeamCount())

	rec = env.do(http.MethodPost, "/team", tok, `{"player_ids": []}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// With a team, POST reports the conflict before the bad body.
	rec = env.do(http.MethodPost, "/team", tok, `{"player_ids": "1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user already has a team", decode[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodPut, "/team", tok, `{"player_ids": [1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decode[map[string]string](t, rec)["message"])
}

func TestTeam_ReadFailureLenientVsStrict(t *testing.T) {
	lenient := newTestEnv(t)
	lenient.store.Fail(memstore.OpTeamsFind, errors.New("connection reset"))
	rec := lenient.do(http.MethodGet, "/team", lenient.token("u1", false), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	strict := newTestEnv(t, func(d *RouterDeps) { d.TeamStrictReads = true })
	strict.store.Fail(memstore.OpTeamsFind, errors.New("connection reset"))
	rec = strict.do(http.MethodGet, "/team", strict.token("u1", false), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "STORE_UNAVAILABLE", body["code"])
	assert.Equal(t, "connection reset", body["detail"])
}

func TestUsers_SyncLoginLookup(t *testing.T) {
	env := newTestEnv(t)
	f := gofakeit.New(2024)
	id, name, email := f.UUID(), f.Name(), f.Email()
	env.book[email+":s3cret"] = &domain.Identity{ID: id, Email: email}

	sync := map[string]string{"id": id, "full_name": name, "email": email}
	rec := env.do(http.MethodPost, "/sync-user", "", sync)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User inserted", decode[map[string]interface{}](t, rec)["message"])

	rec = env.do(http.MethodPost, "/sync-user", "", sync)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "User already exists", body["message"])
	assert.NotContains(t, body, "data")

	rec = env.do(http.MethodPost, "/sync-user", "", map[string]string{"id": id})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "full_name is required", decode[map[string]string](t, rec)["message"])

	rec = env.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": "s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[struct {
		Message string      `json:"message"`
		User    domain.User `json:"user"`
	}](t, rec)
	assert.Equal(t, "Login successful", login.Message)
	assert.Equal(t, name, login.User.FullName)

	rec = env.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/users/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, email, decode[domain.User](t, rec).Username)

	rec = env.do(http.MethodGet, "/users/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin_RateLimitedPerIP(t *testing.T) {
	env := newTestEnv(t, func(d *RouterDeps) { d.LoginRateLimit = 2 })
	creds := map[string]string{"email": "a@b.c", "password": "x"}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/login", "", creds).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/login", "", creds).Code)

	rec := env.do(http.MethodPost, "/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[map[string]string](t, rec)["code"])
}
