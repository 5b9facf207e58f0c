package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"sitecms/internal/logging"
	"sitecms/internal/models"
	"sitecms/pkg/database"
)

type CollectionRepository interface {
	List(ctx context.Context, tenantID, collectionName string) ([]models.CollectionItem, error)
	Save(ctx context.Context, item *models.CollectionItem) error
	Delete(ctx context.Context, tenantID, collectionName, id string) error
}

type collectionRepo struct {
	db Database
}

func NewCollectionRepo(db Database) CollectionRepository {
	return &collectionRepo{db: db}
}

// List returns items newest first. A database where the collections table has
// not been created yet is treated as having no items.
func (r *collectionRepo) List(ctx context.Context, tenantID, collectionName string) ([]models.CollectionItem, error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM collections
		WHERE tenant_id = $1 AND collection_name = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, tenantID, collectionName)
	if err != nil {
		if database.IsUndefinedTable(err) {
			return []models.CollectionItem{}, nil
		}
		return nil, fmt.Errorf("list collection %q: %w", collectionName, err)
	}
	defer rows.Close()

	items := []models.CollectionItem{}
	for rows.Next() {
		var (
			raw  []byte
			item = models.CollectionItem{TenantID: tenantID, CollectionName: collectionName}
		)
		if err := rows.Scan(&item.ID, &raw, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan collection item: %w", err)
		}
		if err := json.Unmarshal(raw, &item.Data); err != nil {
			// keep the item addressable so the admin can still delete it
			logging.Ctx(ctx).Warn().Err(err).Str("collection", collectionName).Str("id", item.ID).Msg("unreadable collection item data")
			item.Data = nil
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		if database.IsUndefinedTable(err) {
			return []models.CollectionItem{}, nil
		}
		return nil, fmt.Errorf("list collection %q: %w", collectionName, err)
	}
	return items, nil
}

// Save upserts by (id, tenant_id), replacing data wholesale. If the table is
// missing it is created and the write retried once.
func (r *collectionRepo) Save(ctx context.Context, item *models.CollectionItem) error {
	payload := item.Data
	if _, ok := payload["id"]; ok {
		payload = make(models.JSONObject, len(item.Data))
		for k, v := range item.Data {
			if k != "id" {
				payload[k] = v
			}
		}
	}
	if payload == nil {
		payload = models.JSONObject{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode collection item: %w", err)
	}

	err = r.upsert(ctx, item, string(data))
	if database.IsUndefinedTable(err) {
		logging.Ctx(ctx).Info().Msg("collections table missing, creating it")
		if _, cerr := r.db.Exec(ctx, database.CollectionsSchema); cerr != nil {
			return fmt.Errorf("create collections table: %w", cerr)
		}
		err = r.upsert(ctx, item, string(data))
	}
	if err != nil {
		return fmt.Errorf("save collection item: %w", err)
	}
	item.Data = payload
	return nil
}

func (r *collectionRepo) upsert(ctx context.Context, item *models.CollectionItem, data string) error {
	query := `
		INSERT INTO collections (id, tenant_id, collection_name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id, tenant_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx, query, item.ID, item.TenantID, item.CollectionName, data, now)
	if err == nil {
		item.UpdatedAt = now
	}
	return err
}

// Delete is idempotent: removing a missing item is not an error.
func (r *collectionRepo) Delete(ctx context.Context, tenantID, collectionName, id string) error {
	query := `DELETE FROM collections WHERE id = $1 AND tenant_id = $2 AND collection_name = $3`
	if _, err := r.db.Exec(ctx, query, id, tenantID, collectionName); err != nil {
		if database.IsUndefinedTable(err) {
			return nil
		}
		return fmt.Errorf("delete collection item: %w", err)
	}
	return nil
}
