package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindVendor(ctx context.Context, counterpartyKey string) (string, error) {
	query := `
		SELECT vendor
		FROM vendor_aliases
		WHERE $1 LIKE '%' || counterparty_key || '%'
		ORDER BY LENGTH(counterparty_key) DESC, updated_at DESC
		LIMIT 1
	`

	var vendor string

	err := s.db.QueryRowContext(ctx, query, counterpartyKey).Scan(&vendor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding vendor: %w", err)
	}

	return vendor, nil
}

// SaveAlias upserts so the most recent confirmation wins.
func (s *Store) SaveAlias(ctx context.Context, counterpartyKey, vendor string) error {
	query := `
		INSERT INTO vendor_aliases (counterparty_key, vendor, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (counterparty_key) DO UPDATE
		SET vendor = EXCLUDED.vendor, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, counterpartyKey, vendor); err != nil {
		return fmt.Errorf("saving alias: %w", err)
	}

	return nil
}

func (s *Store) ListAliases(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT counterparty_key, vendor FROM vendor_aliases`)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)

	for rows.Next() {
		var key, vendor string
		if err := rows.Scan(&key, &vendor); err != nil {
			return nil, fmt.Errorf("scanning alias: %w", err)
		}

		aliases[key] = vendor
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating aliases: %w", err)
	}

	return aliases, nil
}
