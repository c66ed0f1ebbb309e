package routes

import (
	"net/http"

	"foodgram/admin"
	"foodgram/auth"
	"foodgram/authz"
	"foodgram/ingredients"
	"foodgram/middleware"
	"foodgram/ratelim"
	"foodgram/recipes"
	"foodgram/tags"
	"foodgram/users"
	"foodgram/utils"

	"github.com/julienschmidt/httprouter"
)

// Deps carries everything the route table wires together.
type Deps struct {
	Auth    *middleware.Authenticator
	Policy  *authz.Policy
	Limiter *ratelim.RateLimiter
	// CSRF, when set, guards anonymous writes.
	CSRF middleware.CSRFValidator

	Recipes     *recipes.Handler
	Users       *users.Handler
	Sessions    *auth.Handler
	Tags        *tags.Handler
	Ingredients *ingredients.Handler
	Admin       *admin.Handler

	MediaRoot string
}

// NewRouter builds the full route table.
func NewRouter(d *Deps) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	RoutesWrapper(router, d)
	return router
}

func RoutesWrapper(router *httprouter.Router, d *Deps) {
	AddSystemRoutes(router, d)
	AddAuthRoutes(router, d)
	AddUserRoutes(router, d)
	AddTagRoutes(router, d)
	AddIngredientRoutes(router, d)
	AddRecipeRoutes(router, d)
	AddAdminRoutes(router, d)
}

// guard authenticates optionally, then authorizes kind/op before h runs.
func (d *Deps) guard(route, kind, op string, owner authz.OwnerFunc, h httprouter.Handle) httprouter.Handle {
	return middleware.Chain(
		func(next httprouter.Handle) httprouter.Handle { return middleware.Instrument(route, next) },
		d.Auth.OptionalAuth,
	)(d.Policy.Guard(kind, op, owner, h))
}

// write is guard plus per-IP rate limiting.
func (d *Deps) write(route, kind, op string, owner authz.OwnerFunc, h httprouter.Handle) httprouter.Handle {
	return d.Limiter.Limit(d.guard(route, kind, op, owner, h))
}

// anonymousWrite is write plus the CSRF check when enabled.
func (d *Deps) anonymousWrite(route, kind, op string, h httprouter.Handle) httprouter.Handle {
	if d.CSRF != nil {
		h = middleware.RequireCSRF(d.CSRF, h)
	}
	return d.write(route, kind, op, nil, h)
}

// byParam dispatches on the value of a path parameter. httprouter cannot
// register a static segment beside a wildcard, so /users/me/ and
// /users/:id/ share one route.
func byParam(name string, cases map[string]httprouter.Handle, fallback httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if h, ok := cases[ps.ByName(name)]; ok {
			h(w, r, ps)
			return
		}
		if fallback == nil {
			utils.RespondWithJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		fallback(w, r, ps)
	}
}
