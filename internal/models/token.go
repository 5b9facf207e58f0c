package models

import "time"

// TokenResponse is returned by a successful register or login.
type TokenResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}
