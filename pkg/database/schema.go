package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"sitecms/internal/logging"
)

// Execer is the part of pgxpool.Pool the schema statements need.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CollectionsSchema is applied lazily by the collection store as well as by Migrate.
const CollectionsSchema = `
CREATE TABLE IF NOT EXISTS collections (
	id TEXT NOT NULL,
	tenant_id TEXT NOT NULL,
	collection_name TEXT NOT NULL,
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (id, tenant_id)
);
CREATE INDEX IF NOT EXISTS collections_tenant_name_created_idx
	ON collections (tenant_id, collection_name, created_at DESC)`

var schema = []struct {
	name string
	sql  string
}{
	{"admin_credentials", `
CREATE TABLE IF NOT EXISTS admin_credentials (
	tenant_id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`},
	{"settings", `
CREATE TABLE IF NOT EXISTS settings (
	tenant_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (tenant_id, key)
)`},
	{"collections", CollectionsSchema},
	{"leads", `
CREATE TABLE IF NOT EXISTS leads (
	id BIGSERIAL PRIMARY KEY,
	tenant_id TEXT NOT NULL,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	notify_status TEXT NOT NULL DEFAULT 'pending',
	notify_attempts INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS leads_tenant_created_idx ON leads (tenant_id, created_at DESC);
CREATE INDEX IF NOT EXISTS leads_notify_status_idx ON leads (notify_status) WHERE notify_status = 'failed'`},
}

// Migrate creates every table. All statements are idempotent.
func Migrate(ctx context.Context, db Execer) error {
	for _, s := range schema {
		if _, err := db.Exec(ctx, s.sql); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
		logging.Debug().Str("table", s.name).Msg("schema applied")
	}
	return nil
}
