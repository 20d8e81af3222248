package policy

import (
	"net/http"
	"testing"

	"github.com/sakif/pastebin/internal/config"
	"github.com/sakif/pastebin/internal/model"
)

var (
	anon  = Anonymous
	alice = Actor{ID: "alice", Authenticated: true}
	bob   = Actor{ID: "bob", Authenticated: true}
	staff = Actor{ID: "root", Authenticated: true, Staff: true}
)

func defaults() *config.Options {
	return &config.Options{
		ListForeign:    true,
		TitleMaxLength: 100,
	}
}

func TestCollectionDefaults(t *testing.T) {
	p := New(defaults())

	ops := []Operation{OpList, OpUserList, OpCreate, OpDetail, OpHighlight}
	for _, op := range ops {
		for _, actor := range []Actor{anon, alice, staff} {
			if !p.CanAccessCollection(actor, op) {
				t.Errorf("default config denied op %v for actor %+v", op, actor)
			}
		}
	}
}

func TestCollectionForbidAnonymous(t *testing.T) {
	opts := defaults()
	opts.ForbidAnonymous = true
	p := New(opts)

	for _, op := range []Operation{OpList, OpUserList, OpCreate, OpDetail, OpHighlight} {
		if p.CanAccessCollection(anon, op) {
			t.Errorf("FORBID_ANONYMOUS allowed anonymous op %v", op)
		}
		if !p.CanAccessCollection(alice, op) {
			t.Errorf("FORBID_ANONYMOUS denied authenticated op %v", op)
		}
	}
}

func TestCollectionForbidList(t *testing.T) {
	opts := defaults()
	opts.ForbidList = true
	p := New(opts)

	for _, op := range []Operation{OpList, OpUserList} {
		if p.CanAccessCollection(anon, op) || p.CanAccessCollection(alice, op) {
			t.Errorf("FORBID_LIST allowed non-staff op %v", op)
		}
		if !p.CanAccessCollection(staff, op) {
			t.Errorf("FORBID_LIST denied staff op %v", op)
		}
	}

	// Detail and create are unaffected by the listing restriction.
	if !p.CanAccessCollection(anon, OpDetail) || !p.CanAccessCollection(anon, OpCreate) {
		t.Error("FORBID_LIST leaked into non-list operations")
	}
}

func TestCollectionForbidAnonymousList(t *testing.T) {
	opts := defaults()
	opts.ForbidAnonymousList = true
	p := New(opts)

	if p.CanAccessCollection(anon, OpList) {
		t.Error("FORBID_ANONYMOUS_LIST allowed anonymous listing")
	}
	if !p.CanAccessCollection(alice, OpList) {
		t.Error("FORBID_ANONYMOUS_LIST denied authenticated listing")
	}
	if !p.CanAccessCollection(anon, OpDetail) {
		t.Error("FORBID_ANONYMOUS_LIST leaked into detail")
	}
}

func TestCollectionForbidAnonymousCreate(t *testing.T) {
	opts := defaults()
	opts.ForbidAnonymousCreate = true
	p := New(opts)

	if p.CanAccessCollection(anon, OpCreate) {
		t.Error("FORBID_ANONYMOUS_CREATE allowed anonymous create")
	}
	if !p.CanAccessCollection(alice, OpCreate) {
		t.Error("FORBID_ANONYMOUS_CREATE denied authenticated create")
	}
	if !p.CanAccessCollection(anon, OpList) {
		t.Error("FORBID_ANONYMOUS_CREATE leaked into listing")
	}
}

func TestObjectCheck(t *testing.T) {
	p := New(defaults())

	public := &model.Snippet{ID: "s1", OwnerID: "alice"}
	private := &model.Snippet{ID: "s2", OwnerID: "alice", Private: true}
	ownerless := &model.Snippet{ID: "s3"}

	tests := []struct {
		name    string
		actor   Actor
		method  string
		snippet *model.Snippet
		want    bool
	}{
		{"anon reads public", anon, http.MethodGet, public, true},
		{"anon reads private", anon, http.MethodGet, private, false},
		{"anon mutates public", anon, http.MethodPut, public, false},
		{"anon mutates ownerless", anon, http.MethodDelete, ownerless, false},
		{"anon reads ownerless", anon, http.MethodGet, ownerless, true},

		{"owner reads own private", alice, http.MethodGet, private, true},
		{"owner mutates own private", alice, http.MethodPatch, private, true},
		{"owner deletes own public", alice, http.MethodDelete, public, true},

		{"stranger reads public", bob, http.MethodGet, public, true},
		{"stranger reads private", bob, http.MethodGet, private, false},
		{"stranger mutates public", bob, http.MethodPut, public, false},
		{"stranger deletes public", bob, http.MethodDelete, public, false},

		{"staff reads private", staff, http.MethodGet, private, true},
		{"staff mutates private", staff, http.MethodPut, private, true},
		{"staff deletes ownerless", staff, http.MethodDelete, ownerless, true},

		{"head is safe", anon, http.MethodHead, public, true},
		{"options is safe", anon, http.MethodOptions, public, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.CanAccessObject(tt.actor, tt.method, tt.snippet); got != tt.want {
				t.Errorf("CanAccessObject(%+v, %s, %s) = %v, want %v",
					tt.actor, tt.method, tt.snippet.ID, got, tt.want)
			}
		})
	}
}

func TestScopeFor(t *testing.T) {
	t.Run("staff sees everything", func(t *testing.T) {
		p := New(defaults())
		scope := p.ScopeFor(staff)
		if !scope.All {
			t.Fatalf("staff scope = %+v, want All", scope)
		}
	})

	t.Run("anonymous sees public", func(t *testing.T) {
		p := New(defaults())
		scope := p.ScopeFor(anon)
		if scope.All || !scope.Public || scope.OwnerID != "" {
			t.Fatalf("anonymous scope = %+v", scope)
		}
	})

	t.Run("authenticated sees public plus own", func(t *testing.T) {
		p := New(defaults())
		scope := p.ScopeFor(alice)
		if scope.All || !scope.Public || scope.OwnerID != "alice" {
			t.Fatalf("authenticated scope = %+v", scope)
		}
	})

	t.Run("list foreign disabled leaves only own", func(t *testing.T) {
		opts := defaults()
		opts.ListForeign = false
		p := New(opts)

		scope := p.ScopeFor(alice)
		if scope.Public {
			t.Fatalf("scope = %+v, want no public visibility", scope)
		}
		if scope.OwnerID != "alice" {
			t.Fatalf("scope = %+v, want own snippets visible", scope)
		}

		if anonScope := p.ScopeFor(anon); anonScope.Public || anonScope.OwnerID != "" || anonScope.All {
			t.Fatalf("anonymous scope = %+v, want empty", anonScope)
		}
	})
}

func TestScopeIncludes(t *testing.T) {
	public := &model.Snippet{ID: "s1", OwnerID: "alice"}
	private := &model.Snippet{ID: "s2", OwnerID: "alice", Private: true}
	ownerless := &model.Snippet{ID: "s3"}

	all := Scope{All: true}
	for _, s := range []*model.Snippet{public, private, ownerless} {
		if !all.Includes(s) {
			t.Errorf("All scope excluded %s", s.ID)
		}
	}

	pub := Scope{Public: true}
	if !pub.Includes(public) || pub.Includes(private) || !pub.Includes(ownerless) {
		t.Error("public scope misclassified")
	}

	own := Scope{OwnerID: "alice"}
	if !own.Includes(private) || own.Includes(ownerless) {
		t.Error("owner scope misclassified")
	}

	empty := Scope{}
	for _, s := range []*model.Snippet{public, private, ownerless} {
		if empty.Includes(s) {
			t.Errorf("empty scope included %s", s.ID)
		}
	}
}
