package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/pastebin/internal/apperror"
	"github.com/sakif/pastebin/internal/auth"
)

func newTestAuthService(t *testing.T, staffUsers ...string) *AuthService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAuthService(
		newMockUserRepo(),
		auth.NewPasswordServiceForTest(bcrypt.MinCost),
		staffUsers,
		logger,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == "" {
		t.Error("Register() did not assign an ID")
	}
	if user.Staff {
		t.Error("Register() granted staff to an ordinary user")
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Fatal("password stored in plaintext")
	}

	logged, err := svc.Login(ctx, "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("Login() ID = %q, want %q", logged.ID, user.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "longenough"},
		{"bad characters", "al ice!", "longenough"},
		{"short password", "alice", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.username, tt.password)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register(%q, %q) error = %v, want validation error",
					tt.username, tt.password, err)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "hunter2hunter2"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, err := svc.Register(ctx, "alice", "hunter2hunter2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Register() error = %v, want conflict", err)
	}
}

func TestRegisterStaffGrant(t *testing.T) {
	svc := newTestAuthService(t, "root")
	ctx := context.Background()

	user, err := svc.Register(ctx, "root", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !user.Staff {
		t.Error("configured staff username did not get the staff flag")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "hunter2hunter2"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown user and wrong password fail identically.
	for _, tt := range []struct{ username, password string }{
		{"nobody", "hunter2hunter2"},
		{"alice", "wrong-password"},
	} {
		_, err := svc.Login(ctx, tt.username, tt.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) error = %v, want ErrInvalidCredentials",
				tt.username, tt.password, err)
		}
	}
}

func TestLoginOAuthOnlyAccount(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.LoginGitHub(ctx, &auth.GitHubUser{ID: 42, Login: "octocat"})
	if err != nil {
		t.Fatalf("LoginGitHub() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("LoginGitHub() did not create an account")
	}

	_, err = svc.Login(ctx, "octocat", "any-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() on an OAuth-only account error = %v, want ErrInvalidCredentials", err)
	}
}
