package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"sitecms/internal/common"
	"sitecms/internal/models"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id int64) (*models.Lead, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*models.Lead, error)
	ListFailed(ctx context.Context, maxAttempts, limit int) ([]*models.Lead, error)
	RecordNotification(ctx context.Context, id int64, status models.NotifyStatus) error
}

type leadRepo struct {
	db Database
}

func NewLeadRepo(db Database) LeadRepository {
	return &leadRepo{db: db}
}

func (r *leadRepo) Create(ctx context.Context, lead *models.Lead) error {
	data, err := json.Marshal(lead.Data)
	if err != nil {
		return fmt.Errorf("encode lead: %w", err)
	}
	query := `
		INSERT INTO leads (tenant_id, data, created_at, notify_status, notify_attempts)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id
	`
	if err := r.db.QueryRow(ctx, query, lead.TenantID, string(data), lead.CreatedAt, string(lead.NotifyStatus)).Scan(&lead.ID); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *leadRepo) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	query := `
		SELECT id, tenant_id, data, created_at, notify_status, notify_attempts
		FROM leads
		WHERE id = $1
	`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead %d: %w", id, err)
	}
	return lead, nil
}

func (r *leadRepo) List(ctx context.Context, tenantID string, limit, offset int) ([]*models.Lead, error) {
	query := `
		SELECT id, tenant_id, data, created_at, notify_status, notify_attempts
		FROM leads
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return collectLeads(rows)
}

// ListFailed returns leads of every tenant whose notification failed and may
// still be retried, oldest first.
func (r *leadRepo) ListFailed(ctx context.Context, maxAttempts, limit int) ([]*models.Lead, error) {
	query := `
		SELECT id, tenant_id, data, created_at, notify_status, notify_attempts
		FROM leads
		WHERE notify_status = 'failed' AND notify_attempts < $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("list failed leads: %w", err)
	}
	return collectLeads(rows)
}

// RecordNotification stores the outcome of a delivery attempt. Only real
// attempts (sent or failed) count towards notify_attempts.
func (r *leadRepo) RecordNotification(ctx context.Context, id int64, status models.NotifyStatus) error {
	query := `
		UPDATE leads
		SET notify_status = $1,
			notify_attempts = notify_attempts + CASE WHEN $1::text IN ('sent', 'failed') THEN 1 ELSE 0 END
		WHERE id = $2
	`
	if _, err := r.db.Exec(ctx, query, string(status), id); err != nil {
		return fmt.Errorf("record lead notification: %w", err)
	}
	return nil
}

func collectLeads(rows pgx.Rows) ([]*models.Lead, error) {
	defer rows.Close()

	leads := []*models.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var (
		lead   models.Lead
		raw    []byte
		status string
	)
	if err := row.Scan(&lead.ID, &lead.TenantID, &raw, &lead.CreatedAt, &status, &lead.NotifyAttempts); err != nil {
		return nil, err
	}
	lead.NotifyStatus = models.NotifyStatus(status)
	if err := json.Unmarshal(raw, &lead.Data); err != nil {
		lead.Data = models.JSONObject{}
	}
	return &lead, nil
}
