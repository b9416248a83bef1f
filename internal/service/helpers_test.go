package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/kickoff/fantasy/internal/domain"
	"github.com/kickoff/fantasy/internal/repository/memstore"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCatalog(store *memstore.Store) *CatalogService {
	return NewCatalogService(nil, store, store.Players(), store.Outbox(), discardLogger())
}

func newTeams(store *memstore.Store, strict bool) *TeamService {
	return NewTeamService(nil, store, store.Teams(), store.Players(), store.Outbox(), discardLogger(), strict)
}

func requireAppError(t *testing.T, err error, status int, code string) *domain.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, status, appErr.Status, "status for %v", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func str(s string) *string { return &s }
