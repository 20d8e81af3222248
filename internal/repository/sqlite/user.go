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
	"github.com/sakif/pastebin/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB carries the user repository methods over the shared connection pool.
// A separate receiver keeps the snippet and user method sets apart.
type UserDB struct {
	db *DB
}

// NewUserDB returns the user repository view of db.
func NewUserDB(db *DB) *UserDB {
	return &UserDB{db: db}
}

const userColumns = `id, username, password_hash, github_id, avatar_url,
	staff, created_at, updated_at`

// Create inserts a new user, assigning ID and timestamps. A duplicate
// username surfaces as a conflict error.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		nullInt64(user.GitHubID),
		user.AvatarURL,
		user.Staff,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByID fetches a user by primary key.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetByUsername fetches a user by username.
func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}
	return user, nil
}

// UpsertByGitHubID creates the account tied to user.GitHubID on first login
// and refreshes username and avatar on subsequent ones. The stored record,
// including its staff flag and ID, is written back into user.
func (u *UserDB) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	row := u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, user.GitHubID)

	existing, err := scanUser(row)
	switch {
	case err == sql.ErrNoRows:
		return u.Create(ctx, user)
	case err != nil:
		return fmt.Errorf("sqlite: looking up github user %d: %w", user.GitHubID, err)
	}

	now := time.Now().UTC()
	_, err = u.db.conn.ExecContext(ctx,
		`UPDATE users SET username = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
		user.Username, user.AvatarURL, now, existing.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: refreshing github user %d: %w", user.GitHubID, err)
	}

	user.ID = existing.ID
	user.Staff = existing.Staff
	user.PasswordHash = existing.PasswordHash
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = now
	return nil
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var githubID sql.NullInt64
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&githubID,
		&u.AvatarURL,
		&u.Staff,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	return &u, nil
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

// isUniqueViolation sniffs the driver error text; modernc.org/sqlite has no
// exported error codes for constraint failures.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
