package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/genpass/internal/common"
	"github.com/dmitrijs2005/genpass/internal/dbx"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func normalize(username string) string {
	return strings.ToLower(username)
}

func (r *SQLiteRepository) Create(ctx context.Context, a *models.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, username_norm, email, password_hash, two_factor_enabled, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Username, normalize(a.Username), a.Email, a.PasswordHash, a.TwoFactorEnabled,
		a.CreatedAt.UnixNano(), nullableTime(a.LastLogin))
	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrDuplicateUsername
		}
		return fmt.Errorf("failed to insert account[%s]: %w", a.Username, err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	var (
		a         models.Account
		createdAt int64
		lastLogin sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, two_factor_enabled, created_at, last_login
		FROM accounts WHERE username_norm = ?
	`, normalize(username)).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.TwoFactorEnabled, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account[%s]: %w", username, err)
	}

	a.CreatedAt = time.Unix(0, createdAt).UTC()
	if lastLogin.Valid {
		t := time.Unix(0, lastLogin.Int64).UTC()
		a.LastLogin = &t
	}
	return &a, nil
}

func (r *SQLiteRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET last_login = ? WHERE id = ?`, at.UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to set last login[%s]: %w", id, err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) SetTwoFactor(ctx context.Context, username string, enabled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET two_factor_enabled = ? WHERE username_norm = ?`, enabled, normalize(username))
	if err != nil {
		return fmt.Errorf("failed to set two factor[%s]: %w", username, err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) SetPasswordHash(ctx context.Context, id string, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("failed to set password hash[%s]: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

func nullableTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}
