package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"github.com/dmitrijs2005/genpass/internal/vault/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newAccount(username string) *models.Account {
	return &models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "salt$hash",
		CreatedAt:    time.Date(2025, 3, 1, 10, 0, 0, 123, time.UTC),
	}
}

func TestCreateAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	want := newAccount("Alice")
	require.NoError(t, r.Create(ctx, want))

	got, err := r.GetByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "Alice", got.Username, "original spelling is kept")
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.PasswordHash, got.PasswordHash)
	assert.False(t, got.TwoFactorEnabled)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Nil(t, got.LastLogin)
}

func TestGetByUsername_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreate_DuplicateAnyCase(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newAccount("alice")))
	err := r.Create(ctx, newAccount("ALICE"))
	require.ErrorIs(t, err, common.ErrDuplicateUsername)
}

func TestSetLastLogin(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := newAccount("bob")
	require.NoError(t, r.Create(ctx, a))

	at := time.Date(2025, 4, 5, 6, 7, 8, 9, time.UTC)
	require.NoError(t, r.SetLastLogin(ctx, a.ID, at))

	got, err := r.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	require.ErrorIs(t, r.SetLastLogin(ctx, "missing-id", at), common.ErrUserNotFound)
}

func TestSetTwoFactor_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newAccount("carol")))

	for range 2 {
		require.NoError(t, r.SetTwoFactor(ctx, "CAROL", true))
	}
	got, err := r.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.True(t, got.TwoFactorEnabled)

	require.NoError(t, r.SetTwoFactor(ctx, "carol", false))
	got, err = r.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.False(t, got.TwoFactorEnabled)

	require.ErrorIs(t, r.SetTwoFactor(ctx, "nobody", true), common.ErrUserNotFound)
}

func TestSetPasswordHash(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	a := newAccount("dave")
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.SetPasswordHash(ctx, a.ID, "newsalt$newhash"))

	got, err := r.GetByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, "newsalt$newhash", got.PasswordHash)

	require.ErrorIs(t, r.SetPasswordHash(ctx, "missing-id", "x"), common.ErrUserNotFound)
}

func TestErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.GetByUsername(ctx, "x")
	require.ErrorContains(t, err, "failed to get account[x]")

	err = r.Create(ctx, newAccount("x"))
	require.ErrorContains(t, err, "failed to insert account[x]")
	require.NotErrorIs(t, err, common.ErrDuplicateUsername)

	require.ErrorContains(t, r.SetTwoFactor(ctx, "x", true), "failed to set two factor[x]")
	require.ErrorContains(t, r.SetLastLogin(ctx, "id", time.Now()), "failed to set last login[id]")
}

func TestSetLastLogin_RowsAffectedError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(`UPDATE accounts SET last_login`).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no stats")))

	err = NewSQLiteRepository(db).SetLastLogin(context.Background(), "id", time.Now())
	require.ErrorContains(t, err, "failed to get rows affected")
	require.NoError(t, mock.ExpectationsWereMet())
}
