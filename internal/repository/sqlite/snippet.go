package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/pastebin/internal/apperror"
	"github.com/sakif/pastebin/internal/model"
	"github.com/sakif/pastebin/internal/policy"
	"github.com/sakif/pastebin/internal/repository"
)

// Compile-time check that *DB satisfies the repository interface.
var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `id, title, content, language, style,
	line_numbers, embed_title, private, created, updated, owner_id`

// Create inserts a new snippet, assigning its ID and timestamps. The caller's
// struct is updated in place.
//
// Timestamps are stored in UTC so that the text comparison SQLite performs on
// DATETIME columns agrees with chronological order.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now().UTC()
	snippet.Created = now
	snippet.Updated = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.Title,
		snippet.Content,
		snippet.Language,
		snippet.Style,
		snippet.LineNumbers,
		snippet.EmbedTitle,
		snippet.Private,
		snippet.Created,
		snippet.Updated,
		nullString(snippet.OwnerID),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	return nil
}

// GetByID fetches a snippet by primary key, restricted to the caller's
// visibility scope. A record outside the scope is reported as not found;
// its existence is never revealed.
func (db *DB) GetByID(ctx context.Context, id string, scope policy.Scope) (*model.Snippet, error) {
	clause, args := scopeClause(scope)
	args = append([]any{id}, args...)

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ? AND `+clause,
		args...,
	)

	snippet, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	return snippet, nil
}

// List returns snippets inside opts.Scope ordered newest first, optionally
// filtered to one owner and continued from a cursor.
//
// A forward cursor selects records strictly older than its position; a
// reverse cursor selects strictly newer records in ascending order, and the
// page is flipped before returning so callers always see newest-first pages.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	clause, args := scopeClause(opts.Scope)
	conds := []string{clause}

	if opts.OwnerID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, opts.OwnerID)
	}

	order := "ORDER BY created DESC, id DESC"
	if c := opts.Cursor; c != nil {
		if c.Reverse {
			conds = append(conds, "(created > ? OR (created = ? AND id > ?))")
			order = "ORDER BY created ASC, id ASC"
		} else {
			conds = append(conds, "(created < ? OR (created = ? AND id < ?))")
		}
		created := c.Created.UTC()
		args = append(args, created, created, c.ID)
	}

	query := `SELECT ` + snippetColumns + ` FROM snippets
		WHERE ` + strings.Join(conds, " AND ") + ` ` + order
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	var snippets []model.Snippet
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	if opts.Cursor != nil && opts.Cursor.Reverse {
		for i, j := 0, len(snippets)-1; i < j; i, j = i+1, j-1 {
			snippets[i], snippets[j] = snippets[j], snippets[i]
		}
	}

	return snippets, nil
}

// Update rewrites the snippet's mutable fields. ID, created and owner_id are
// never touched.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.Updated = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, content = ?, language = ?, style = ?,
		     line_numbers = ?, embed_title = ?, private = ?, updated = ?
		 WHERE id = ?`,
		snippet.Title,
		snippet.Content,
		snippet.Language,
		snippet.Style,
		snippet.LineNumbers,
		snippet.EmbedTitle,
		snippet.Private,
		snippet.Updated,
		snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}

	return nil
}

// Delete removes a snippet by ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}

// scopeClause translates a visibility scope into a WHERE condition. This is
// the SQL twin of policy.Scope.Includes; the two must agree.
func scopeClause(scope policy.Scope) (string, []any) {
	if scope.All {
		return "1=1", nil
	}

	var conds []string
	var args []any
	if scope.Public {
		conds = append(conds, "private = 0")
	}
	if scope.OwnerID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, scope.OwnerID)
	}
	if len(conds) == 0 {
		// The empty scope: nothing is visible.
		return "1=0", nil
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnippet(row scanner) (*model.Snippet, error) {
	var s model.Snippet
	var owner sql.NullString
	err := row.Scan(
		&s.ID,
		&s.Title,
		&s.Content,
		&s.Language,
		&s.Style,
		&s.LineNumbers,
		&s.EmbedTitle,
		&s.Private,
		&s.Created,
		&s.Updated,
		&owner,
	)
	if err != nil {
		return nil, err
	}
	s.OwnerID = owner.String
	return &s, nil
}

// nullString maps the empty string onto SQL NULL so the owner_id foreign key
// holds for anonymous snippets.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
