package model

import "time"

// User is a registered account that can own snippets.
//
// Two login paths feed this table: local username/password accounts
// (PasswordHash set) and GitHub OAuth accounts (GitHubID set). An account
// created through OAuth has no password and can only log in via GitHub.
//
// Staff users bypass all snippet visibility and ownership restrictions.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Staff        bool      `json:"staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
