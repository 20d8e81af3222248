package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/pastebin/internal/policy"
	"github.com/sakif/pastebin/internal/repository"
)

// contextKey is unexported so only this package can read or write actor
// values in a request context.
type contextKey int

const actorKey contextKey = iota

// CookieName is the HttpOnly cookie carrying the access token for browser
// clients. API clients use the Authorization header instead.
const CookieName = "token"

// ResolveActor is middleware that identifies the actor behind each request.
//
// It accepts a token from "Authorization: Bearer <token>" or the token
// cookie, validates it, and looks the user up so the actor carries a current
// staff flag. Requests with no token, or an invalid or stale one, proceed
// as anonymous; the visibility policy decides what anonymous actors may do,
// so this middleware never rejects a request itself.
func ResolveActor(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := policy.Anonymous

			if tokens != nil {
				if userID, err := tokenUserID(r, tokens); err == nil {
					if user, err := users.GetByID(r.Context(), userID); err == nil {
						actor = policy.Actor{
							ID:            user.ID,
							Authenticated: true,
							Staff:         user.Staff,
						}
					}
				}
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the actor resolved for this request. Outside the
// ResolveActor middleware it returns the anonymous actor.
func ActorFromContext(ctx context.Context) policy.Actor {
	if actor, ok := ctx.Value(actorKey).(policy.Actor); ok {
		return actor
	}
	return policy.Anonymous
}

// tokenUserID extracts and validates the access token, header first, cookie
// as fallback.
func tokenUserID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return tokens.Validate(strings.TrimPrefix(h, "Bearer "))
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
