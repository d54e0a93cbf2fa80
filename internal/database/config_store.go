package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfigStore is the key/value pricematcher_config table
type ConfigStore struct {
	pool *pgxpool.Pool
}

// NewConfigStore creates a config store
func NewConfigStore(pool *pgxpool.Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// GetConfig returns every config row
func (s *ConfigStore) GetConfig(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, value FROM pricematcher_config`)
	if err != nil {
		return nil, fmt.Errorf("error querying config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("error scanning config: %w", err)
		}
		values[name] = value
	}
	return values, rows.Err()
}

// SetConfig upserts values in one transaction
func (s *ConfigStore) SetConfig(ctx context.Context, values map[string]string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for name, value := range values {
			_, err := tx.Exec(ctx, `
				INSERT INTO pricematcher_config (name, value, date_upd)
				VALUES ($1, $2, now())
				ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, date_upd = now()`,
				name, value)
			if err != nil {
				return fmt.Errorf("error saving config %s: %w", name, err)
			}
		}
		return nil
	})
}

// SeedConfig inserts defaults for keys that do not exist yet
func (s *ConfigStore) SeedConfig(ctx context.Context, defaults map[string]string) error {
	for name, value := range defaults {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO pricematcher_config (name, value) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, name, value)
		if err != nil {
			return fmt.Errorf("error seeding config %s: %w", name, err)
		}
	}
	return nil
}
