// Package auth issues and revokes API tokens and hands out CSRF tokens.
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodgram/apperr"
	"foodgram/logging"
	"foodgram/middleware"
	"foodgram/models"
	"foodgram/rdx"
	"foodgram/store"
	"foodgram/structs"
	"foodgram/utils"
	"foodgram/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users    store.Users
	Auth     *middleware.Authenticator
	Denylist rdx.Denylist
	CSRF     rdx.CSRFStore
	TokenTTL time.Duration
}

// IssueToken signs an HS256 token for u that expires after ttl.
func IssueToken(secret []byte, u *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		Username: u.Username,
		UserID:   u.ID,
		Role:     u.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

var errBadCredentials = apperr.ValidationFields(map[string][]string{
	"non_field_errors": {"Unable to log in with provided credentials."},
})

// Login handles POST /api/auth/token/login/
func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req structs.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.ValidateStruct(&req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondWithAppError(w, r, errBadCredentials)
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondWithAppError(w, r, errBadCredentials)
		return
	}

	token, err := IssueToken(h.Auth.Secret(), user, h.TokenTTL)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err))
		return
	}
	logging.Info().Int64("user_id", user.ID).Msg("user logged in")
	utils.RespondWithJSON(w, http.StatusOK, structs.TokenResponse{AuthToken: token})
}

// Logout handles POST /api/auth/token/logout/. The token stays revoked until
// it would have expired anyway.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tokenString, _ := middleware.TokenFromHeader(r.Header.Get("Authorization"))
	claims, err := h.Auth.ParseToken(r.Context(), tokenString)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Unauthorized("Invalid token."))
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.Denylist.Revoke(r.Context(), claims.ID, ttl); err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err))
		return
	}
	logging.Info().Int64("user_id", claims.UserID).Msg("user logged out")
	w.WriteHeader(http.StatusNoContent)
}

// CSRFToken handles GET /api/csrf/
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token, err := h.CSRF.Issue(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, structs.CSRFResponse{CSRFToken: token})
}
