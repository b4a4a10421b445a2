package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/socialconnect/internal/settings"
)

// CoreStore reads grant and advanced settings from the core_store table.
type CoreStore struct {
	pool *pgxpool.Pool
}

var _ settings.Source = (*CoreStore)(nil)

func (s *CoreStore) Grants(ctx context.Context) (map[string]settings.Grant, error) {
	out := map[string]settings.Grant{}
	found, err := s.get(ctx, settings.GrantKey, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]settings.Grant{}, nil
	}
	return out, nil
}

func (s *CoreStore) Advanced(ctx context.Context) (settings.Advanced, error) {
	out := settings.DefaultAdvanced()
	if _, err := s.get(ctx, settings.AdvancedKey, &out); err != nil {
		return settings.Advanced{}, err
	}
	return out, nil
}

// Seed writes grants and advanced only when the rows are absent, so values
// edited in the database survive restarts.
func (s *CoreStore) Seed(ctx context.Context, grants map[string]settings.Grant, adv settings.Advanced) error {
	if err := s.putIfAbsent(ctx, settings.GrantKey, grants); err != nil {
		return err
	}
	return s.putIfAbsent(ctx, settings.AdvancedKey, adv)
}

// Put overwrites one document.
func (s *CoreStore) Put(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO core_store (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, b)
	if err != nil {
		return fmt.Errorf("pg: put %s: %w", key, err)
	}
	return nil
}

func (s *CoreStore) get(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM core_store WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pg: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("pg: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *CoreStore) putIfAbsent(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO core_store (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`, key, b); err != nil {
		return fmt.Errorf("pg: seed %s: %w", key, err)
	}
	return nil
}
