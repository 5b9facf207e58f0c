package models

import "time"

// NotifyStatus tracks delivery of the lead notification.
type NotifyStatus string

const (
	NotifyPending NotifyStatus = "pending"
	NotifySent    NotifyStatus = "sent"
	NotifyFailed  NotifyStatus = "failed"
	// NotifySkipped means the site has no notification target configured.
	NotifySkipped NotifyStatus = "skipped"
)

// Lead is a form submission from the public site.
type Lead struct {
	ID             int64        `json:"id" db:"id"`
	TenantID       string       `json:"tenant_id" db:"tenant_id"`
	Data           JSONObject   `json:"data" db:"data"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	NotifyStatus   NotifyStatus `json:"notify_status" db:"notify_status"`
	NotifyAttempts int          `json:"notify_attempts" db:"notify_attempts"`
}
