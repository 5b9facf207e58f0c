package models

import "time"

// Credential is the single admin login of a site.
type Credential struct {
	TenantID     string    `json:"tenant_id" db:"tenant_id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize in JSON
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
