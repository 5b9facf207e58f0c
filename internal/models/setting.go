package models

import "time"

// Setting is one key/value pair of a site's configuration. Values are always strings.
type Setting struct {
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
