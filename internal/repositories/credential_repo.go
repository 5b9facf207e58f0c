package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sitecms/internal/common"
	"sitecms/internal/models"
)

type CredentialRepository interface {
	Exists(ctx context.Context, tenantID string) (bool, error)
	Create(ctx context.Context, cred *models.Credential) error
	GetByUsername(ctx context.Context, tenantID, username string) (*models.Credential, error)
}

type credentialRepo struct {
	db Database
}

func NewCredentialRepo(db Database) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) Exists(ctx context.Context, tenantID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM admin_credentials WHERE tenant_id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check admin credentials: %w", err)
	}
	return exists, nil
}

// Create inserts the site's only credential. The primary key on tenant_id
// makes a second registration a no-op that is reported as ErrAlreadyRegistered.
func (r *credentialRepo) Create(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO admin_credentials (tenant_id, username, password_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tenant_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, cred.TenantID, cred.Username, cred.PasswordHash)
	if err != nil {
		return fmt.Errorf("create admin credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrAlreadyRegistered
	}
	return nil
}

func (r *credentialRepo) GetByUsername(ctx context.Context, tenantID, username string) (*models.Credential, error) {
	cred := &models.Credential{}
	query := `
		SELECT tenant_id, username, password_hash, created_at
		FROM admin_credentials
		WHERE tenant_id = $1 AND username = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, username).Scan(&cred.TenantID, &cred.Username, &cred.PasswordHash, &cred.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin credential: %w", err)
	}
	return cred, nil
}
