package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"foodgram/globals"
	"foodgram/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string `json:"username"`
	UserID   int64  `json:"userId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Denylist reports tokens revoked by logout.
type Denylist interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Authenticator struct {
	secret   []byte
	denylist Denylist
}

func NewAuthenticator(secret []byte, denylist Denylist) *Authenticator {
	return &Authenticator{secret: secret, denylist: denylist}
}

// Secret returns the HMAC key tokens are signed with.
func (a *Authenticator) Secret() []byte { return a.secret }

// TokenFromHeader accepts "Token <t>" and "Bearer <t>".
func TokenFromHeader(header string) (string, bool) {
	for _, prefix := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(header, prefix) && len(header) > len(prefix) {
			return strings.TrimSpace(header[len(prefix):]), true
		}
	}
	return "", false
}

// ParseToken validates signature, expiry and revocation.
func (a *Authenticator) ParseToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("unauthorized: invalid token")
	}
	if a.denylist != nil && claims.ID != "" {
		revoked, err := a.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, errors.New("unauthorized: token revoked")
		}
	}
	return claims, nil
}

func withClaims(r *http.Request, claims *Claims) *http.Request {
	ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
	ctx = context.WithValue(ctx, globals.TokenIDKey, claims.ID)
	return r.WithContext(ctx)
}

// OptionalAuth attaches the caller when a valid token is present and
// proceeds anonymously otherwise.
func (a *Authenticator) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if tokenString, ok := TokenFromHeader(r.Header.Get("Authorization")); ok {
			if claims, err := a.ParseToken(r.Context(), tokenString); err == nil {
				r = withClaims(r, claims)
			}
		}
		next(w, r, ps)
	}
}

// ParamID parses a positive integer path parameter.
func ParamID(ps httprouter.Params, name string) (int64, bool) {
	id, err := strconv.ParseInt(ps.ByName(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CSRFValidator checks tokens issued by the CSRF endpoint.
type CSRFValidator interface {
	Valid(ctx context.Context, token string) (bool, error)
}

// RequireCSRF rejects unsafe requests that carry neither an API token nor a
// valid X-CSRFToken header.
func RequireCSRF(v CSRFValidator, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r, ps)
			return
		}
		if _, ok := TokenFromHeader(r.Header.Get("Authorization")); !ok {
			valid, err := v.Valid(r.Context(), r.Header.Get("X-CSRFToken"))
			if err != nil || !valid {
				utils.RespondWithJSON(w, http.StatusForbidden, map[string]string{
					"detail": "CSRF Failed: CSRF token missing or incorrect.",
				})
				return
			}
		}
		next(w, r, ps)
	}
}

// Chain applies middlewares so that the first one listed runs first.
func Chain(mws ...func(httprouter.Handle) httprouter.Handle) func(httprouter.Handle) httprouter.Handle {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
