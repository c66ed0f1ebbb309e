package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/apperr"
	"foodgram/globals"

	"github.com/julienschmidt/httprouter"
)

func newPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy()
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return p
}

func TestAuthorize(t *testing.T) {
	p := newPolicy(t)
	anon := Caller{}
	alice := Caller{UserID: 1, Role: globals.RoleUser}
	bob := Caller{UserID: 2, Role: globals.RoleUser}
	admin := Caller{UserID: 9, Role: globals.RoleAdmin}

	tests := []struct {
		name   string
		caller Caller
		res    Resource
		op     string
		want   apperr.Kind
		allow  bool
	}{
		{"anonymous lists recipes", anon, Resource{Kind: "recipe"}, "list", 0, true},
		{"anonymous registers", anon, Resource{Kind: "user"}, "create", 0, true},
		{"anonymous cannot create recipe", anon, Resource{Kind: "recipe"}, "create", apperr.KindUnauthorized, false},
		{"anonymous cannot favorite", anon, Resource{Kind: "favorite"}, "add", apperr.KindUnauthorized, false},
		{"user creates recipe", alice, Resource{Kind: "recipe"}, "create", 0, true},
		{"user inherits anonymous grants", alice, Resource{Kind: "tag"}, "list", 0, true},
		{"owner updates recipe", alice, Resource{Kind: "recipe", OwnerID: 1}, "update", 0, true},
		{"non-owner cannot update", bob, Resource{Kind: "recipe", OwnerID: 1}, "update", apperr.KindForbidden, false},
		{"non-owner cannot delete", bob, Resource{Kind: "recipe", OwnerID: 1}, "delete", apperr.KindForbidden, false},
		{"user cannot open admin", alice, Resource{Kind: "admin"}, "list", apperr.KindForbidden, false},
		{"admin opens admin", admin, Resource{Kind: "admin"}, "list", 0, true},
		{"admin updates any recipe", admin, Resource{Kind: "recipe", OwnerID: 1}, "update", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Authorize(tt.caller, tt.res, tt.op)
			if tt.allow {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if !apperr.Is(err, tt.want) {
				t.Fatalf("expected kind %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGuardChecksOwnerBeforeHandler(t *testing.T) {
	p := newPolicy(t)
	called := false
	next := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}
	owner := func(r *http.Request, ps httprouter.Params) (int64, error) {
		if ps.ByName("id") == "404" {
			return 0, apperr.NotFound("Not found.")
		}
		return 1, nil
	}
	h := p.Guard("recipe", "update", owner, next)

	serve := func(userID int64, id string) int {
		req := httptest.NewRequest(http.MethodPatch, "/api/recipes/"+id+"/", nil)
		if userID != 0 {
			ctx := context.WithValue(req.Context(), globals.UserIDKey, userID)
			ctx = context.WithValue(ctx, globals.RoleKey, globals.RoleUser)
			req = req.WithContext(ctx)
		}
		rr := httptest.NewRecorder()
		h(rr, req, httprouter.Params{{Key: "id", Value: id}})
		return rr.Code
	}

	if code := serve(0, "1"); code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", code)
	}
	if code := serve(2, "1"); code != http.StatusForbidden {
		t.Fatalf("non-owner: expected 403, got %d", code)
	}
	if code := serve(2, "404"); code != http.StatusNotFound {
		t.Fatalf("missing recipe: expected 404, got %d", code)
	}
	if called {
		t.Fatal("handler ran for a rejected request")
	}
	if code := serve(1, "1"); code != http.StatusNoContent || !called {
		t.Fatalf("owner: expected 204 and handler call, got %d", code)
	}
}
