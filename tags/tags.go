// Package tags serves the read-only tag catalogue.
package tags

import (
	"errors"
	"net/http"

	"foodgram/apperr"
	"foodgram/middleware"
	"foodgram/store"
	"foodgram/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Tags store.Tags
}

// List handles GET /api/tags/
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tags, err := h.Tags.List(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tags)
}

// Retrieve handles GET /api/tags/{id}/
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := middleware.ParamID(ps, "id")
	if !ok {
		utils.RespondWithAppError(w, r, apperr.NotFound("Not found."))
		return
	}
	tag, err := h.Tags.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound("Not found.")
	}
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tag)
}
