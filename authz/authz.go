// Package authz decides whether a caller may perform an operation on a
// resource. Every guarded route asks Authorize before running handler logic.
package authz

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"foodgram/apperr"
	"foodgram/globals"
	"foodgram/utils"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/julienschmidt/httprouter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Subjects evaluated against the policy.
const (
	SubjectAnonymous = "anonymous"
	SubjectUser      = "user"
	SubjectOwner     = "owner"
	SubjectAdmin     = "admin"
)

// Caller is the authenticated principal; UserID 0 is anonymous.
type Caller struct {
	UserID int64
	Role   string
}

// Resource is what an operation targets. OwnerID is 0 when the resource has
// no owner or it is not relevant to the operation.
type Resource struct {
	Kind    string
	OwnerID int64
}

type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy loads the embedded model and policy.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := loadPolicy(enforcer, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Policy{enforcer: enforcer}, nil
}

func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

func subject(c Caller, res Resource) string {
	switch {
	case c.UserID == 0:
		return SubjectAnonymous
	case c.Role == globals.RoleAdmin:
		return SubjectAdmin
	case res.OwnerID != 0 && res.OwnerID == c.UserID:
		return SubjectOwner
	default:
		return SubjectUser
	}
}

// Authorize returns nil when allowed, an Unauthorized error for anonymous
// callers and a Forbidden error otherwise.
func (p *Policy) Authorize(c Caller, res Resource, op string) error {
	sub := subject(c, res)
	allowed, err := p.enforcer.Enforce(sub, res.Kind, op)
	if err != nil {
		return apperr.Internal(fmt.Errorf("enforce %s %s %s: %w", sub, res.Kind, op, err))
	}
	if allowed {
		return nil
	}
	if sub == SubjectAnonymous {
		return apperr.Unauthorized("Authentication credentials were not provided.")
	}
	return apperr.Forbidden("You do not have permission to perform this action.")
}

// CallerFromRequest reads the caller placed in the context by authentication.
func CallerFromRequest(r *http.Request) Caller {
	return Caller{UserID: utils.GetUserIDFromRequest(r), Role: utils.GetRoleFromRequest(r)}
}

// OwnerFunc resolves the owner of the resource addressed by a request. It
// returns an apperr NotFound error when the resource does not exist.
type OwnerFunc func(r *http.Request, ps httprouter.Params) (int64, error)

// Guard authorizes the request before calling next. owner may be nil.
func (p *Policy) Guard(kind, op string, owner OwnerFunc, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		caller := CallerFromRequest(r)
		res := Resource{Kind: kind}
		if owner != nil {
			// Anonymous callers are rejected before the lookup.
			if caller.UserID == 0 {
				if err := p.Authorize(caller, res, op); err != nil {
					utils.RespondWithAppError(w, r, err)
					return
				}
			}
			ownerID, err := owner(r, ps)
			if err != nil {
				utils.RespondWithAppError(w, r, err)
				return
			}
			res.OwnerID = ownerID
		}
		if err := p.Authorize(caller, res, op); err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		next(w, r, ps)
	}
}
