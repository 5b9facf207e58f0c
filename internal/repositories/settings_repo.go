package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"sitecms/pkg/database"
)

type SettingsRepository interface {
	GetAll(ctx context.Context, tenantID string) (map[string]string, error)
	Get(ctx context.Context, tenantID, key string) (string, bool, error)
	SetMany(ctx context.Context, tenantID string, values map[string]string) error
}

type settingsRepo struct {
	db Database
}

func NewSettingsRepo(db Database) SettingsRepository {
	return &settingsRepo{db: db}
}

// GetAll never returns a nil map; a site with no settings yields an empty one.
func (r *settingsRepo) GetAll(ctx context.Context, tenantID string) (map[string]string, error) {
	query := `SELECT key, value FROM settings WHERE tenant_id = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		if database.IsUndefinedTable(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

func (r *settingsRepo) Get(ctx context.Context, tenantID, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE tenant_id = $1 AND key = $2`
	var value string
	err := r.db.QueryRow(ctx, query, tenantID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) || database.IsUndefinedTable(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetMany upserts each key with its own statement. Keys are written in sorted
// order; a failure part way leaves earlier keys applied.
func (r *settingsRepo) SetMany(ctx context.Context, tenantID string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	query := `
		INSERT INTO settings (tenant_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tenant_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := r.db.Exec(ctx, query, tenantID, key, values[key]); err != nil {
			return fmt.Errorf("upsert setting %q: %w", key, err)
		}
	}
	return nil
}
