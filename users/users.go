// Package users serves registration, profiles, avatars and subscriptions.
package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodgram/apperr"
	"foodgram/logging"
	"foodgram/media"
	"foodgram/middleware"
	"foodgram/models"
	"foodgram/mq"
	"foodgram/store"
	"foodgram/structs"
	"foodgram/utils"
	"foodgram/validation"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Store     *store.Store
	Present   *structs.Presenter
	Media     *media.Store
	Events    mq.Publisher
	Paginator utils.Paginator
}

// loadUser resolves the :id path parameter to a user or a 404.
func (h *Handler) loadUser(r *http.Request, ps httprouter.Params) (*models.User, error) {
	id, ok := middleware.ParamID(ps, "id")
	if !ok {
		return nil, apperr.NotFound("Not found.")
	}
	u, err := h.Store.Users.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Not found.")
	}
	return u, err
}

// Register handles POST /api/users/
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req structs.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.ValidateStruct(&req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err))
		return
	}
	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			err = apperr.Conflict("A user with that email or username already exists.")
		}
		utils.RespondWithAppError(w, r, err)
		return
	}

	logging.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	mq.Emit(r.Context(), h.Events, mq.UserRegistered, user.ID, user.ID)
	utils.RespondWithJSON(w, http.StatusCreated, h.Present.CreatedUser(user))
}

// List handles GET /api/users/
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := h.Paginator.Parse(r)
	users, total, err := h.Store.Users.List(r.Context(), page.Window())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	out, err := h.Present.Users(r.Context(), utils.GetUserIDFromRequest(r), users)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPageResponse(r, page, total, out))
}

// Retrieve handles GET /api/users/{id}/
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	u, err := h.loadUser(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	out, err := h.Present.User(r.Context(), utils.GetUserIDFromRequest(r), u)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// Me handles GET /api/users/me/
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	viewerID := utils.GetUserIDFromRequest(r)
	u, err := h.Store.Users.Get(r.Context(), viewerID)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.Unauthorized("User not found.")
	}
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	out, err := h.Present.User(r.Context(), viewerID, u)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// SetPassword handles POST /api/users/set_password/
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req structs.SetPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	u, err := h.Store.Users.Get(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.CurrentPassword)) != nil {
		utils.RespondWithAppError(w, r, apperr.ValidationFields(map[string][]string{
			"current_password": {"Invalid password."},
		}))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err))
		return
	}
	if err := h.Store.Users.SetPassword(r.Context(), userID, string(hash)); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAvatar handles PUT /api/users/me/avatar/
func (h *Handler) SetAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req structs.AvatarRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Avatar) == "" {
		utils.RespondWithAppError(w, r, apperr.Field("avatar", "avatar field is empty"))
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	u, err := h.Store.Users.Get(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	path, err := h.Media.SaveDataURI(media.FolderAvatars, req.Avatar)
	if err != nil {
		utils.RespondWithAppError(w, r, imageError("avatar", err))
		return
	}
	if err := h.Store.Users.SetAvatar(r.Context(), userID, path); err != nil {
		_ = h.Media.Delete(path)
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.Media.Delete(u.Avatar); err != nil {
		logging.Warn().Err(err).Str("path", u.Avatar).Msg("remove previous avatar")
	}
	utils.RespondWithJSON(w, http.StatusOK, structs.AvatarResponse{Avatar: h.Media.URL(path)})
}

// DeleteAvatar handles DELETE /api/users/me/avatar/
func (h *Handler) DeleteAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	u, err := h.Store.Users.Get(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.Store.Users.SetAvatar(r.Context(), userID, ""); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.Media.Delete(u.Avatar); err != nil {
		logging.Warn().Err(err).Str("path", u.Avatar).Msg("remove avatar")
	}
	w.WriteHeader(http.StatusNoContent)
}

// imageError maps media failures onto a field error.
func imageError(field string, err error) error {
	switch {
	case errors.Is(err, media.ErrEmpty):
		return apperr.ValidationFields(map[string][]string{field: {field + " is required"}})
	case errors.Is(err, media.ErrInvalidData), errors.Is(err, media.ErrUnsupported):
		return apperr.ValidationFields(map[string][]string{field: {"Upload a valid image."}})
	default:
		return apperr.Internal(err)
	}
}

func recipesLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
