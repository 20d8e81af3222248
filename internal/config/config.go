// Package config resolves the application's policy knobs and server settings
// from the environment.
//
// Every knob lives under the PASTE_ namespace (PASTE_FORBID_ANONYMOUS,
// PASTE_DEFAULT_STYLE, ...). A .env file is honoured when present (main calls
// godotenv.Load before Load runs), so local development doesn't need a wall of
// exports. Total absence of any override source is fine: every lookup falls
// back to a typed default.
//
// The result is a plain Options struct built once at startup and passed by
// reference into the policy, service, and highlight layers. Nothing in this
// package caches or mutates after Load returns, so values can be hot-swapped
// between process restarts without coordination.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// envPrefix namespaces all recognized keys.
const envPrefix = "PASTE_"

// Options holds every policy knob read by the snippet API.
//
// The defaults mirror the documented configuration surface: a fresh install
// with an empty environment behaves as a fully public pastebin with guessing
// enabled and nothing forbidden.
type Options struct {
	DefaultEmbedTitle  bool   // DEFAULT_EMBED_TITLE: embed titles in highlight output
	DefaultLanguage    string // DEFAULT_LANGUAGE: lexer used when none is set and guessing is off
	DefaultLineNumbers bool   // DEFAULT_LINE_NUMBERS: render line numbers by default
	DefaultPrivate     bool   // DEFAULT_PRIVATE: snippets are private by default
	DefaultStyle       string // DEFAULT_STYLE: highlight style used when none is set

	ForbidAnonymous       bool // FORBID_ANONYMOUS: anonymous actors are denied everything
	ForbidAnonymousCreate bool // FORBID_ANONYMOUS_CREATE: anonymous actors cannot create
	ForbidAnonymousList   bool // FORBID_ANONYMOUS_LIST: listing requires authentication
	ForbidList            bool // FORBID_LIST: listing requires staff

	GuessLexer     bool // GUESS_LEXER: infer a lexer from content when language is unset
	ListForeign    bool // LIST_FOREIGN: public snippets of other users are listable
	TitleMaxLength int  // TITLE_MAX_LENGTH: maximum title length in characters

	PageSize int // PAGE_SIZE: list page size; 0 disables pagination
}

// Server holds process-level settings that are not snippet policy: where to
// listen, where the database lives, and the auth/rate-limit wiring.
type Server struct {
	Port      int
	DBPath    string
	JWTSecret string

	// StaffUsers grants the staff role to these usernames at registration.
	StaffUsers []string

	// RateLimit is requests/second allowed per client on mutating routes.
	// 0 disables rate limiting. RateBurst defaults to RateLimit when unset.
	RateLimit float64
	RateBurst int

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Load reads all recognized PASTE_* keys, applying defaults for the rest.
func Load() *Options {
	return &Options{
		DefaultEmbedTitle:  getBool("DEFAULT_EMBED_TITLE", true),
		DefaultLanguage:    getString("DEFAULT_LANGUAGE", "text"),
		DefaultLineNumbers: getBool("DEFAULT_LINE_NUMBERS", true),
		DefaultPrivate:     getBool("DEFAULT_PRIVATE", false),
		DefaultStyle:       getString("DEFAULT_STYLE", "default"),

		ForbidAnonymous:       getBool("FORBID_ANONYMOUS", false),
		ForbidAnonymousCreate: getBool("FORBID_ANONYMOUS_CREATE", false),
		ForbidAnonymousList:   getBool("FORBID_ANONYMOUS_LIST", false),
		ForbidList:            getBool("FORBID_LIST", false),

		GuessLexer:     getBool("GUESS_LEXER", true),
		ListForeign:    getBool("LIST_FOREIGN", true),
		TitleMaxLength: getInt("TITLE_MAX_LENGTH", 100),

		PageSize: getInt("PAGE_SIZE", 0),
	}
}

// LoadServer reads process-level settings. Unlike Load, a malformed numeric
// value here is a startup error rather than a silent default: a bad port or
// rate limit should stop the process, not surprise an operator later.
func LoadServer() (*Server, error) {
	port, err := getIntStrict("PORT", 8080)
	if err != nil {
		return nil, err
	}

	limit, err := getFloatStrict("RATE_LIMIT", 0)
	if err != nil {
		return nil, err
	}
	burst, err := getIntStrict("RATE_BURST", int(limit))
	if err != nil {
		return nil, err
	}

	s := &Server{
		Port:               port,
		DBPath:             getString("DB_PATH", "data/pastebin.db"),
		JWTSecret:          getString("JWT_SECRET", ""),
		StaffUsers:         getList("STAFF_USERS"),
		RateLimit:          limit,
		RateBurst:          burst,
		GitHubClientID:     getString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getString("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getString("GITHUB_CALLBACK_URL", ""),
	}
	if s.GitHubCallbackURL == "" {
		s.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", s.Port)
	}
	return s, nil
}

// getString returns the configured value for name, or def when unset.
func getString(name, def string) string {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		return v
	}
	return def
}

// getBool parses 1/t/true/0/f/false (case-insensitive). Unset or
// unparseable values yield the default; policy knobs never abort startup.
func getBool(name string, def bool) bool {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return def
	}
	return b
}

func getInt(name string, def int) int {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getIntStrict(name string, def int) (int, error) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s%s value %q", envPrefix, name, v)
	}
	return n, nil
}

func getFloatStrict(name string, def float64) (float64, error) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s%s value %q", envPrefix, name, v)
	}
	return f, nil
}

// getList splits a comma-separated value, dropping empty entries.
func getList(name string) []string {
	v := getString(name, "")
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
