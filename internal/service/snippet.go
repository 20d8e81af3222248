// Package service contains the business logic layer: field validation, the
// permission checks, visibility scoping, pagination and highlight
// orchestration. Handlers parse HTTP and delegate here; repositories only
// see already-validated data.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/pastebin/internal/apperror"
	"github.com/sakif/pastebin/internal/config"
	"github.com/sakif/pastebin/internal/highlight"
	"github.com/sakif/pastebin/internal/model"
	"github.com/sakif/pastebin/internal/policy"
	"github.com/sakif/pastebin/internal/repository"
)

// SnippetService handles business logic for snippets.
type SnippetService struct {
	repo     repository.SnippetRepository
	users    repository.UserRepository
	policy   *policy.Policy
	registry *highlight.Registry
	renderer *highlight.Renderer
	opts     *config.Options
	logger   *slog.Logger
}

// NewSnippetService wires the service. The registry provides the closed sets
// that language and style fields are validated against.
func NewSnippetService(
	repo repository.SnippetRepository,
	users repository.UserRepository,
	pol *policy.Policy,
	registry *highlight.Registry,
	renderer *highlight.Renderer,
	opts *config.Options,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		repo:     repo,
		users:    users,
		policy:   pol,
		registry: registry,
		renderer: renderer,
		opts:     opts,
		logger:   logger,
	}
}

// SnippetInput carries the client-writable snippet fields. Pointer fields
// distinguish "absent" from the zero value: absent booleans take their
// configured defaults on create and keep the stored value on update.
type SnippetInput struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Language    *string `json:"language"`
	Style       *string `json:"style"`
	LineNumbers *bool   `json:"line_numbers"`
	EmbedTitle  *bool   `json:"embed_title"`
	Private     *bool   `json:"private"`
}

// Page is one page of a listing. Next and Previous are opaque cursor tokens,
// empty when there is no page in that direction. Paginated is false when
// pagination is disabled and Items holds the entire result set.
type Page struct {
	Items     []model.Snippet
	Next      string
	Previous  string
	Paginated bool
}

// Create validates the input and persists a new snippet. The owner is the
// acting identity when authenticated; anonymous creations are ownerless. An
// anonymous actor asking for a private snippet is a validation failure, not
// a permission one: the request itself is malformed under the policy.
func (s *SnippetService) Create(ctx context.Context, actor policy.Actor, input SnippetInput) (*model.Snippet, error) {
	if !s.policy.CanAccessCollection(actor, policy.OpCreate) {
		return nil, apperror.Forbidden("snippet creation is not permitted")
	}

	snippet := &model.Snippet{
		LineNumbers: s.opts.DefaultLineNumbers,
		EmbedTitle:  s.opts.DefaultEmbedTitle,
		Private:     s.opts.DefaultPrivate,
	}
	if err := s.applyInput(snippet, input, false); err != nil {
		return nil, err
	}

	if !actor.Authenticated && snippet.Private {
		return nil, apperror.ValidationFailed("private",
			"anonymous users cannot create private snippets")
	}

	if actor.Authenticated {
		snippet.OwnerID = actor.ID
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.Bool("private", snippet.Private),
		slog.Bool("anonymous", !actor.Authenticated),
	)

	return snippet, nil
}

// Get retrieves one snippet visible to the actor. A snippet outside the
// actor's scope is not found; no distinct "exists but hidden" signal leaks.
func (s *SnippetService) Get(ctx context.Context, actor policy.Actor, id string) (*model.Snippet, error) {
	return s.fetch(ctx, actor, http.MethodGet, id)
}

// List returns the snippets visible to the actor, newest first, as one page
// when pagination is configured.
func (s *SnippetService) List(ctx context.Context, actor policy.Actor, cursor string) (*Page, error) {
	if !s.policy.CanAccessCollection(actor, policy.OpList) {
		return nil, apperror.Forbidden("snippet listing is not permitted")
	}

	return s.page(ctx, s.policy.ScopeFor(actor), "", cursor)
}

// ListByUser returns the snippets owned by userID that the actor may see.
// An unknown user is a 404 regardless of the actor's scope.
func (s *SnippetService) ListByUser(ctx context.Context, actor policy.Actor, userID, cursor string) (*Page, error) {
	if !s.policy.CanAccessCollection(actor, policy.OpUserList) {
		return nil, apperror.Forbidden("snippet listing is not permitted")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.page(ctx, s.policy.ScopeFor(actor), userID, cursor)
}

// Update applies a full (PUT) or partial (PATCH) update. Full updates
// require content; both kinds leave absent fields untouched and never change
// id, owner or created.
func (s *SnippetService) Update(ctx context.Context, actor policy.Actor, id string, input SnippetInput, partial bool) (*model.Snippet, error) {
	method := http.MethodPut
	if partial {
		method = http.MethodPatch
	}

	snippet, err := s.fetch(ctx, actor, method, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyInput(snippet, input, partial); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	return snippet, nil
}

// Delete removes a snippet the actor may delete.
func (s *SnippetService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	snippet, err := s.fetch(ctx, actor, http.MethodDelete, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, snippet.ID); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// Highlight renders a snippet the actor may read as HTML, standalone when
// full is set.
func (s *SnippetService) Highlight(ctx context.Context, actor policy.Actor, id string, full bool) (string, error) {
	snippet, err := s.fetch(ctx, actor, http.MethodGet, id)
	if err != nil {
		return "", err
	}

	html, err := s.renderer.Render(snippet, full)
	if err != nil {
		s.logger.Error("failed to render snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("rendering snippet: %w", err)
	}
	return html, nil
}

// fetch runs the detail-path gauntlet: collection check, scoped fetch (404
// for anything the scope hides), then the object-level check (403 for a
// reachable record the actor may not touch with this method).
func (s *SnippetService) fetch(ctx context.Context, actor policy.Actor, method, id string) (*model.Snippet, error) {
	if !s.policy.CanAccessCollection(actor, policy.OpDetail) {
		return nil, apperror.Forbidden("snippet access is not permitted")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id, s.policy.ScopeFor(actor))
	if err != nil {
		return nil, err
	}

	if !s.policy.CanAccessObject(actor, method, snippet) {
		return nil, apperror.Forbidden("you do not have permission to perform this action")
	}

	return snippet, nil
}

// applyInput validates the provided fields and writes them onto the snippet.
// With partial unset (create and PUT), content is required.
func (s *SnippetService) applyInput(snippet *model.Snippet, input SnippetInput, partial bool) error {
	if input.Content != nil {
		if *input.Content == "" {
			return apperror.ValidationFailed("content", "content must not be empty")
		}
		snippet.Content = *input.Content
	} else if !partial {
		return apperror.ValidationFailed("content", "content is required")
	}

	if input.Title != nil {
		if len(*input.Title) > s.opts.TitleMaxLength {
			return apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", s.opts.TitleMaxLength))
		}
		snippet.Title = *input.Title
	}

	if input.Language != nil {
		if *input.Language != "" && !s.registry.KnownLanguage(*input.Language) {
			return apperror.ValidationFailed("language",
				fmt.Sprintf("%q is not a known language", *input.Language))
		}
		snippet.Language = *input.Language
	}

	if input.Style != nil {
		if *input.Style != "" && !s.registry.KnownStyle(*input.Style) {
			return apperror.ValidationFailed("style",
				fmt.Sprintf("%q is not a known style", *input.Style))
		}
		snippet.Style = *input.Style
	}

	if input.LineNumbers != nil {
		snippet.LineNumbers = *input.LineNumbers
	}
	if input.EmbedTitle != nil {
		snippet.EmbedTitle = *input.EmbedTitle
	}
	if input.Private != nil {
		snippet.Private = *input.Private
	}

	return nil
}

// page fetches one page of the scoped listing. With pagination disabled the
// whole result set comes back in a single unpaginated Page.
func (s *SnippetService) page(ctx context.Context, scope policy.Scope, ownerID, token string) (*Page, error) {
	size := s.opts.PageSize
	if size <= 0 {
		items, err := s.repo.List(ctx, repository.ListOptions{
			Scope:   scope,
			OwnerID: ownerID,
		})
		if err != nil {
			s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
			return nil, fmt.Errorf("listing snippets: %w", err)
		}
		return &Page{Items: items}, nil
	}

	cursor, err := decodeCursor(token)
	if err != nil {
		return nil, err
	}

	// Fetch one extra record to learn whether another page exists beyond
	// this one.
	items, err := s.repo.List(ctx, repository.ListOptions{
		Scope:   scope,
		OwnerID: ownerID,
		Limit:   size + 1,
		Cursor:  cursor,
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	reverse := cursor != nil && cursor.Reverse
	hasMore := len(items) > size
	if hasMore {
		if reverse {
			// Items arrive newest-first; walking backward the extra
			// record is the newest one.
			items = items[1:]
		} else {
			items = items[:size]
		}
	}

	page := &Page{Items: items, Paginated: true}
	if len(items) > 0 {
		first, last := items[0], items[len(items)-1]
		if reverse || hasMore {
			page.Next = encodeCursor(repository.Cursor{
				Created: last.Created, ID: last.ID,
			})
		}
		if (reverse && hasMore) || (!reverse && cursor != nil) {
			page.Previous = encodeCursor(repository.Cursor{
				Created: first.Created, ID: first.ID, Reverse: true,
			})
		}
	}

	return page, nil
}
