package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/sakif/pastebin/internal/apperror"
	"github.com/sakif/pastebin/internal/auth"
	"github.com/sakif/pastebin/internal/model"
	"github.com/sakif/pastebin/internal/repository"
)

// ErrInvalidCredentials is returned by Login for a wrong username or
// password. It is deliberately outside the apperror taxonomy: the handler
// maps it to 401, and it must stay indistinguishable between the two causes.
var ErrInvalidCredentials = errors.New("invalid username or password")

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

const minPasswordLength = 8

// AuthService handles account registration and login.
type AuthService struct {
	users      repository.UserRepository
	passwords  *auth.PasswordService
	staffUsers []string
	logger     *slog.Logger
}

// NewAuthService wires the auth service. staffUsers are usernames granted
// the staff role when their account is created.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	staffUsers []string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		passwords:  passwords,
		staffUsers: staffUsers,
		logger:     logger,
	}
}

// Register creates a local account. Duplicate usernames surface as a
// conflict from the repository.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, apperror.ValidationFailed("username",
			"username must be 3-32 characters of letters, digits, '_' or '-'")
	}
	if len(password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Staff:        slices.Contains(s.staffUsers, username),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
		slog.Bool("staff", user.Staff),
	)
	return user, nil
}

// Login verifies a local account's credentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// OAuth-only accounts have no password and cannot log in locally.
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// LoginGitHub upserts the account tied to a GitHub identity after a
// completed OAuth exchange. Staff grants by username apply on first login
// only; an existing account keeps its stored flag.
func (s *AuthService) LoginGitHub(ctx context.Context, gh *auth.GitHubUser) (*model.User, error) {
	user := &model.User{
		Username:  gh.Login,
		GitHubID:  gh.ID,
		AvatarURL: gh.AvatarURL,
		Staff:     slices.Contains(s.staffUsers, gh.Login),
	}
	if err := s.users.UpsertByGitHubID(ctx, user); err != nil {
		return nil, fmt.Errorf("upserting github user: %w", err)
	}

	s.logger.Info("github login",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// GetUser fetches a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
