package secrets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/genpass/internal/dbx"
	"github.com/dmitrijs2005/genpass/internal/vault/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.SiteSecret) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_secrets (account_id, site, ciphertext, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id, site) DO UPDATE SET
			ciphertext = excluded.ciphertext,
			updated_at = excluded.updated_at
	`, s.AccountID, s.Site, s.Ciphertext, s.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert secret[%s]: %w", s.Site, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, accountID, site string) (*models.SiteSecret, error) {
	s := models.SiteSecret{AccountID: accountID, Site: site}
	var updatedAt int64

	err := r.db.QueryRowContext(ctx,
		`SELECT ciphertext, updated_at FROM site_secrets WHERE account_id = ? AND site = ?`,
		accountID, site).Scan(&s.Ciphertext, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secret[%s]: %w", site, err)
	}

	s.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &s, nil
}

func (r *SQLiteRepository) List(ctx context.Context, accountID string) ([]models.SecretSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT site, updated_at FROM site_secrets WHERE account_id = ? ORDER BY site`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	defer rows.Close()

	result := make([]models.SecretSummary, 0)
	for rows.Next() {
		var (
			item      models.SecretSummary
			updatedAt int64
		)
		if err := rows.Scan(&item.Site, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret row: %w", err)
		}
		item.UpdatedAt = time.Unix(0, updatedAt).UTC()
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate secret rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, accountID, site string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM site_secrets WHERE account_id = ? AND site = ?`, accountID, site)
	if err != nil {
		return fmt.Errorf("failed to delete secret[%s]: %w", site, err)
	}
	return nil
}
