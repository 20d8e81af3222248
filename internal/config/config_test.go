package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	opts := Load()

	if !opts.DefaultEmbedTitle || !opts.DefaultLineNumbers {
		t.Errorf("embed/line-number defaults are off: %+v", opts)
	}
	if opts.DefaultLanguage != "text" || opts.DefaultStyle != "default" {
		t.Errorf("language/style defaults wrong: %+v", opts)
	}
	if opts.DefaultPrivate {
		t.Error("snippets default to private")
	}
	if opts.ForbidAnonymous || opts.ForbidAnonymousCreate || opts.ForbidAnonymousList || opts.ForbidList {
		t.Errorf("a forbid knob is on by default: %+v", opts)
	}
	if !opts.GuessLexer || !opts.ListForeign {
		t.Errorf("guess/list-foreign defaults are off: %+v", opts)
	}
	if opts.TitleMaxLength != 100 {
		t.Errorf("TitleMaxLength = %d, want 100", opts.TitleMaxLength)
	}
	if opts.PageSize != 0 {
		t.Errorf("PageSize = %d, want 0 (pagination disabled)", opts.PageSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PASTE_DEFAULT_LANGUAGE", "python")
	t.Setenv("PASTE_DEFAULT_LINE_NUMBERS", "false")
	t.Setenv("PASTE_FORBID_ANONYMOUS", "1")
	t.Setenv("PASTE_LIST_FOREIGN", "f")
	t.Setenv("PASTE_TITLE_MAX_LENGTH", "50")
	t.Setenv("PASTE_PAGE_SIZE", "25")

	opts := Load()

	if opts.DefaultLanguage != "python" {
		t.Errorf("DefaultLanguage = %q, want python", opts.DefaultLanguage)
	}
	if opts.DefaultLineNumbers {
		t.Error("DEFAULT_LINE_NUMBERS=false not honored")
	}
	if !opts.ForbidAnonymous {
		t.Error("FORBID_ANONYMOUS=1 not honored")
	}
	if opts.ListForeign {
		t.Error("LIST_FOREIGN=f not honored")
	}
	if opts.TitleMaxLength != 50 {
		t.Errorf("TitleMaxLength = %d, want 50", opts.TitleMaxLength)
	}
	if opts.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", opts.PageSize)
	}
}

func TestLoadMalformedFallsBack(t *testing.T) {
	t.Setenv("PASTE_DEFAULT_PRIVATE", "definitely")
	t.Setenv("PASTE_TITLE_MAX_LENGTH", "a lot")

	opts := Load()
	if opts.DefaultPrivate {
		t.Error("unparseable bool did not fall back to default")
	}
	if opts.TitleMaxLength != 100 {
		t.Errorf("TitleMaxLength = %d, want the default 100", opts.TitleMaxLength)
	}
}

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "data/pastebin.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.GitHubCallbackURL != "http://localhost:8080/auth/github/callback" {
		t.Errorf("GitHubCallbackURL = %q", cfg.GitHubCallbackURL)
	}
	if cfg.RateLimit != 0 || cfg.RateBurst != 0 {
		t.Errorf("rate limiting on by default: %+v", cfg)
	}
}

func TestLoadServerStrictNumbers(t *testing.T) {
	t.Setenv("PASTE_PORT", "not-a-port")

	if _, err := LoadServer(); err == nil {
		t.Error("LoadServer() accepted a malformed port")
	}
}

func TestLoadServerStaffUsers(t *testing.T) {
	t.Setenv("PASTE_STAFF_USERS", "root, admin ,,ops")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	want := []string{"root", "admin", "ops"}
	if len(cfg.StaffUsers) != len(want) {
		t.Fatalf("StaffUsers = %v, want %v", cfg.StaffUsers, want)
	}
	for i := range want {
		if cfg.StaffUsers[i] != want[i] {
			t.Errorf("StaffUsers[%d] = %q, want %q", i, cfg.StaffUsers[i], want[i])
		}
	}
}

func TestLoadServerRateBurstDefaultsToLimit(t *testing.T) {
	t.Setenv("PASTE_RATE_LIMIT", "2.5")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v, want 2.5", cfg.RateLimit)
	}
	if cfg.RateBurst != 2 {
		t.Errorf("RateBurst = %d, want 2 (truncated limit)", cfg.RateBurst)
	}
}
