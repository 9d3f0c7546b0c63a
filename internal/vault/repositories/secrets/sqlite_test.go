package secrets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"github.com/dmitrijs2005/genpass/internal/vault/storage"
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

func secret(account, site, ct string, at time.Time) *models.SiteSecret {
	return &models.SiteSecret{AccountID: account, Site: site, Ciphertext: ct, UpdatedAt: at}
}

func TestUpsertAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Upsert(ctx, secret("acct", "example.com", "ct-1", at)))

	got, err := r.Get(ctx, "acct", "example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ct-1", got.Ciphertext)
	assert.True(t, at.Equal(got.UpdatedAt))
}

func TestUpsert_LastWriteWins(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Upsert(ctx, secret("acct", "example.com", "old", t0)))
	require.NoError(t, r.Upsert(ctx, secret("acct", "example.com", "new", t0.Add(time.Hour))))

	got, err := r.Get(ctx, "acct", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Ciphertext)
	assert.True(t, t0.Add(time.Hour).Equal(got.UpdatedAt))

	list, err := r.List(ctx, "acct")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "acct", "unknown.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestList_ScopedToAccountAndSorted(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, r.Upsert(ctx, secret("a", "zeta.io", "1", now)))
	require.NoError(t, r.Upsert(ctx, secret("a", "alpha.io", "2", now)))
	require.NoError(t, r.Upsert(ctx, secret("b", "beta.io", "3", now)))

	list, err := r.List(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha.io", list[0].Site)
	assert.Equal(t, "zeta.io", list[1].Site)

	empty, err := r.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDelete_RemovesAndIsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, secret("acct", "example.com", "ct", time.Now())))
	require.NoError(t, r.Delete(ctx, "acct", "example.com"))

	got, err := r.Get(ctx, "acct", "example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, r.Delete(ctx, "acct", "example.com"))
}

func TestErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Upsert(ctx, secret("a", "s", "c", time.Now())), "failed to upsert secret[s]")
	_, err := r.Get(ctx, "a", "s")
	require.ErrorContains(t, err, "failed to get secret[s]")
	_, err = r.List(ctx, "a")
	require.ErrorContains(t, err, "failed to list secrets")
	require.ErrorContains(t, r.Delete(ctx, "a", "s"), "failed to delete secret[s]")
}

func TestList_ScanAndIterationErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := NewSQLiteRepository(db)

	mock.ExpectQuery(`SELECT site, updated_at FROM site_secrets`).
		WillReturnRows(sqlmock.NewRows([]string{"site", "updated_at"}).AddRow("x", "not-a-number"))
	_, err = r.List(context.Background(), "a")
	require.ErrorContains(t, err, "failed to scan secret row")

	mock.ExpectQuery(`SELECT site, updated_at FROM site_secrets`).
		WillReturnRows(sqlmock.NewRows([]string{"site", "updated_at"}).
			AddRow("x", int64(1)).
			RowError(0, errors.New("io")))
	_, err = r.List(context.Background(), "a")
	require.ErrorContains(t, err, "failed to iterate secret rows")

	require.NoError(t, mock.ExpectationsWereMet())
}
