package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "phone", "google_id",
		"role", "email_verified", "refresh_token_hash", "created_at", "updated_at",
	})
}

func TestUserCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(context.Background(), "  Buyer@Example.COM ", "hunter22", nil, nil, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysqlError{msg: "Error 1062 (23000): Duplicate entry 'buyer@example.com' for key 'email'"})

	_, err = repo.Create(context.Background(), "buyer@example.com", "hunter22", nil, nil, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByEmailNormalizes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	hash := "$2a$04$abcdefghijklmnopqrstuv"
	now := time.Now()
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WithArgs("buyer@example.com").
		WillReturnRows(userRows().AddRow(
			7, "buyer@example.com", hash, nil, nil, nil, nil,
			"user", true, nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "  BUYER@example.com ")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	require.NotNil(t, u.PasswordHash)
	assert.Equal(t, hash, *u.PasswordHash)
	assert.Nil(t, u.GoogleID)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnRows(userRows())

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetRefreshTokenHashClear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WithArgs(nil, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetRefreshTokenHash(context.Background(), 7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
