// Package policy implements the snippet visibility and permission rules.
//
// Everything here is a pure function over an Actor, the configured options,
// and (for object checks) a snippet. No HTTP, no storage; the handlers feed
// in the actor and method, the repository consumes the Scope. That keeps the
// whole permission surface unit-testable with plain function calls.
//
// Two decision points gate every request:
//
//   - CanAccessCollection runs before anything is fetched and decides whether
//     the actor may perform the operation kind at all (anonymous-access and
//     listing restrictions).
//   - CanAccessObject runs after a record has been fetched through the
//     actor's scope and decides per-object access (privacy and ownership).
//
// The split between "404 because the scope hides it" and "403 because the
// object check failed on a reachable record" is deliberate information
// hiding: a private snippet's existence is never revealed to someone who
// cannot read it, while a public snippet's immutability to strangers is an
// honest 403.
package policy

import (
	"net/http"

	"github.com/sakif/pastebin/internal/config"
	"github.com/sakif/pastebin/internal/model"
)

// Actor is the identity making a request: anonymous, an authenticated user,
// or staff. The zero value is the anonymous actor.
type Actor struct {
	ID            string
	Authenticated bool
	Staff         bool
}

// Anonymous is the actor for requests with no valid credentials.
var Anonymous = Actor{}

// Operation classifies a request for the collection-level check.
type Operation int

const (
	OpList Operation = iota // GET /
	OpUserList              // GET /user/{id}
	OpCreate                // POST /
	OpDetail                // GET|PUT|PATCH|DELETE /{id}
	OpHighlight             // GET /{id}/highlight
)

// listLike reports whether the operation enumerates the collection, which is
// what the listing restrictions apply to.
func (op Operation) listLike() bool {
	return op == OpList || op == OpUserList
}

// Policy evaluates permission decisions against the configured options.
type Policy struct {
	opts *config.Options
}

// New returns a Policy reading the given options. The options are consulted
// on every call, never copied, so a reloaded configuration takes effect
// without rebuilding the policy.
func New(opts *config.Options) *Policy {
	return &Policy{opts: opts}
}

// CanAccessCollection decides whether the actor may perform the operation at
// the collection level, before any record is considered.
func (p *Policy) CanAccessCollection(actor Actor, op Operation) bool {
	if p.opts.ForbidAnonymous && !actor.Authenticated {
		return false
	}

	if op.listLike() {
		if p.opts.ForbidList {
			return actor.Staff
		}
		if p.opts.ForbidAnonymousList {
			return actor.Authenticated
		}
	}

	if op == OpCreate && p.opts.ForbidAnonymousCreate && !actor.Authenticated {
		return false
	}

	return true
}

// CanAccessObject decides per-object access: allow if the method is safe and
// the snippet is public, or the actor owns it, or the actor is staff. Staff
// bypasses privacy entirely for all methods; a non-owner, non-staff actor is
// denied every mutating method even on a public snippet.
func (p *Policy) CanAccessObject(actor Actor, method string, s *model.Snippet) bool {
	return (safeMethod(method) && !s.Private) || s.OwnedBy(actor.ID) || actor.Staff
}

// safeMethod reports whether the HTTP method is read-only.
func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Scope describes which snippets an actor may see in listings and fetches.
// The repository translates it into a WHERE clause; the service layer's mock
// applies it in memory. Exactly one interpretation applies:
//
//   - All: no filtering (staff).
//   - Otherwise: public snippets when Public is set, OR-combined with
//     snippets owned by OwnerID when OwnerID is non-empty. Both unset means
//     the empty scope: nothing is visible.
type Scope struct {
	All     bool
	Public  bool
	OwnerID string
}

// ScopeFor builds the visibility scope for the actor. Staff sees everything;
// everyone else sees public snippets (unless LIST_FOREIGN is disabled) plus,
// when authenticated, their own snippets regardless of privacy.
func (p *Policy) ScopeFor(actor Actor) Scope {
	if actor.Staff {
		return Scope{All: true}
	}

	scope := Scope{Public: p.opts.ListForeign}
	if actor.Authenticated {
		scope.OwnerID = actor.ID
	}
	return scope
}

// Includes reports whether a snippet is inside the scope. This is the
// in-memory mirror of the repository's WHERE clause; the two must agree.
func (sc Scope) Includes(s *model.Snippet) bool {
	if sc.All {
		return true
	}
	if sc.Public && !s.Private {
		return true
	}
	return sc.OwnerID != "" && s.OwnedBy(sc.OwnerID)
}
