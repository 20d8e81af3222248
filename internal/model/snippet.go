// Package model defines the data structures shared across the application.
package model

import "time"

// Snippet is a stored text document with its highlighting and privacy
// options. It may be owned by a user; snippets created anonymously have an
// empty OwnerID.
//
// ID, Created, Updated and OwnerID are server-assigned: the handler layer
// ignores them on input, and OwnerID is fixed at creation time for the
// lifetime of the record.
type Snippet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Language    string    `json:"language"`
	Style       string    `json:"style"`
	LineNumbers bool      `json:"line_numbers"`
	EmbedTitle  bool      `json:"embed_title"`
	Private     bool      `json:"private"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	OwnerID     string    `json:"owner"`
}

// OwnedBy reports whether the snippet belongs to the given user ID. An
// ownerless snippet belongs to nobody, not even to anonymous requesters.
func (s *Snippet) OwnedBy(userID string) bool {
	return s.OwnerID != "" && s.OwnerID == userID
}
