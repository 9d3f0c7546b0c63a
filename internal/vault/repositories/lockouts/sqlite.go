package lockouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/genpass/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, subject string) (time.Time, bool, error) {
	var until int64
	err := r.db.QueryRowContext(ctx, `SELECT locked_until FROM lockouts WHERE subject = ?`, subject).Scan(&until)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get lockout[%s]: %w", subject, err)
	}
	return time.Unix(0, until).UTC(), true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, subject string, until time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lockouts (subject, locked_until) VALUES (?, ?)
		ON CONFLICT(subject) DO UPDATE SET locked_until = excluded.locked_until
	`, subject, until.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to set lockout[%s]: %w", subject, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, subject string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM lockouts WHERE subject = ?`, subject)
	if err != nil {
		return fmt.Errorf("failed to delete lockout[%s]: %w", subject, err)
	}
	return nil
}

func (r *SQLiteRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lockouts WHERE locked_until <= ?`, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge lockouts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
