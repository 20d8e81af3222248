package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// newFakeGitHub stands in for both the OAuth token endpoint and the user API.
func newFakeGitHub(t *testing.T, userStatus int, userJSON string) *GitHubProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fake-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "fake-token") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userStatus)
		w.Write([]byte(userJSON))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  ts.URL + "/login/oauth/authorize",
		TokenURL: ts.URL + "/login/oauth/access_token",
	}
	p.apiBase = ts.URL
	return p
}

func TestGitHubAuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/cb")

	url := p.AuthURL("state-123")
	for _, want := range []string{"client_id=client-id", "state=state-123"} {
		if !strings.Contains(url, want) {
			t.Errorf("AuthURL() = %q, missing %q", url, want)
		}
	}
	if strings.Contains(url, "client-secret") {
		t.Error("AuthURL() leaks the client secret")
	}
}

func TestGitHubExchange(t *testing.T) {
	p := newFakeGitHub(t, http.StatusOK,
		`{"id": 583231, "login": "octocat", "avatar_url": "https://example.com/a.png"}`)

	user, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if user.ID != 583231 || user.Login != "octocat" {
		t.Errorf("Exchange() = %+v", user)
	}
}

func TestGitHubExchangeBadCode(t *testing.T) {
	p := newFakeGitHub(t, http.StatusOK, `{}`)

	if _, err := p.Exchange(context.Background(), "stolen-code"); err == nil {
		t.Error("Exchange() accepted a rejected code")
	}
}

func TestGitHubExchangeBadUserResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"api error", http.StatusBadGateway, `{}`},
		{"zero user", http.StatusOK, `{"id": 0, "login": ""}`},
		{"garbage", http.StatusOK, `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeGitHub(t, tt.status, tt.body)
			if _, err := p.Exchange(context.Background(), "good-code"); err == nil {
				t.Error("Exchange() accepted a bad user response")
			}
		})
	}
}
