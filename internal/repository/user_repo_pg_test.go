package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/flightsearch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now))

	user := &domain.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(3), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGUserRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "hash"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestPGUserRepository_GetByUsername(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=$1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(int64(3), "alice", "hash", now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username=$1")).
		WithArgs("bob").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)

	user, err = repo.GetByUsername(context.Background(), "bob")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
