// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage provides the production
// implementation; tests substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/sakif/pastebin/internal/model"
	"github.com/sakif/pastebin/internal/policy"
)

// Cursor marks a position in the (created DESC, id DESC) listing order.
// Reverse walks toward newer records, for "previous page" traversal.
//
// Because snippet IDs are time-ordered and unique, the (Created, ID) pair is
// a stable total order: concurrent writes elsewhere cannot make a cursor
// duplicate or skip records it has already passed.
type Cursor struct {
	Created time.Time
	ID      string
	Reverse bool
}

// ListOptions filters and paginates snippet listings. Scope is always
// applied; OwnerID additionally restricts to one owner (the user-scoped
// list). Limit of 0 means no limit.
type ListOptions struct {
	Scope   policy.Scope
	OwnerID string
	Limit   int
	Cursor  *Cursor
}

// SnippetRepository persists snippets.
//
// GetByID applies the caller's visibility scope: a record outside the scope
// is reported as not found, exactly like a record that doesn't exist.
type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string, scope policy.Scope) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpsertByGitHubID creates or refreshes the account tied to
	// user.GitHubID and fills in the stored record's fields.
	UpsertByGitHubID(ctx context.Context, user *model.User) error
}
