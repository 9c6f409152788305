package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// EngineConfigRepository persists build-knob overrides.
type EngineConfigRepository struct {
	db *sqlx.DB
}

// NewEngineConfigRepository constructs the repository.
func NewEngineConfigRepository(db *sqlx.DB) *EngineConfigRepository {
	return &EngineConfigRepository{db: db}
}

// ListAll returns every override entry, used to seed a build's Config.
func (r *EngineConfigRepository) ListAll(ctx context.Context) ([]models.EngineConfig, error) {
	const query = `SELECT key, value, type, description, updated_by, updated_at FROM engine_config ORDER BY key ASC`
	var configs []models.EngineConfig
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list engine config: %w", err)
	}
	return configs, nil
}

// ListByKeys returns overrides whose key is in the provided slice.
func (r *EngineConfigRepository) ListByKeys(ctx context.Context, keys []string) ([]models.EngineConfig, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT key, value, type, description, updated_by, updated_at
FROM engine_config WHERE key IN (%s) ORDER BY key ASC`, placeholders(len(keys)))
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	var configs []models.EngineConfig
	if err := r.db.SelectContext(ctx, &configs, query, args...); err != nil {
		return nil, fmt.Errorf("list engine config by keys: %w", err)
	}
	return configs, nil
}

// Get fetches a single override by key.
func (r *EngineConfigRepository) Get(ctx context.Context, key string) (*models.EngineConfig, error) {
	const query = `SELECT key, value, type, description, updated_by, updated_at FROM engine_config WHERE key = $1`
	var cfg models.EngineConfig
	if err := r.db.GetContext(ctx, &cfg, query, key); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert inserts or updates an override entry.
func (r *EngineConfigRepository) Upsert(ctx context.Context, cfg *models.EngineConfig) error {
	const query = `INSERT INTO engine_config (key, value, type, description, updated_by, updated_at)
VALUES (:key, :value, :type, :description, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type, description = EXCLUDED.description,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	cfg.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, cfg); err != nil {
		return fmt.Errorf("upsert engine config: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	values := make([]string, n)
	for i := 1; i <= n; i++ {
		values[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(values, ",")
}
