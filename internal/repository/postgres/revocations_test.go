package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatx/beatx-server/pkg/database"
)

func newRevocationRepo(t *testing.T) (*RevocationRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewRevocationRepository(mock), mock
}

func TestRevocations_Insert(t *testing.T) {
	repo, mock := newRevocationRepo(t)

	expiresAt := time.Now().UTC().Add(time.Hour)

	mock.ExpectExec("INSERT INTO token_blacklist").
		WithArgs("token-abc", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Insert(context.Background(), "token-abc", expiresAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocations_Insert_DuplicateIsNoop(t *testing.T) {
	repo, mock := newRevocationRepo(t)

	expiresAt := time.Now().UTC().Add(time.Hour)

	mock.ExpectExec("INSERT INTO token_blacklist").
		WithArgs("token-abc", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.Insert(context.Background(), "token-abc", expiresAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocations_IsRevoked(t *testing.T) {
	repo, mock := newRevocationRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("token-abc").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	revoked, err := repo.IsRevoked(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocations_IsRevoked_QueryError(t *testing.T) {
	repo, mock := newRevocationRepo(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("token-abc").
		WillReturnError(errors.New("connection refused"))

	_, err := repo.IsRevoked(context.Background(), "token-abc")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "check revocation")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevocations_PurgeExpired(t *testing.T) {
	repo, mock := newRevocationRepo(t)

	now := time.Now().UTC()

	mock.ExpectExec("DELETE FROM token_blacklist").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	purged, err := repo.PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), purged)

	assert.NoError(t, mock.ExpectationsWereMet())
}
