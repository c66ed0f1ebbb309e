// Package ingredients serves the read-only ingredient catalogue.
package ingredients

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
	Ingredients store.Ingredients
}

// List handles GET /api/ingredients/?name=<prefix>
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	found, err := h.Ingredients.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, found)
}

// Retrieve handles GET /api/ingredients/{id}/
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := middleware.ParamID(ps, "id")
	if !ok {
		utils.RespondWithAppError(w, r, apperr.NotFound("Not found."))
		return
	}
	in, err := h.Ingredients.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		err = apperr.NotFound("Not found.")
	}
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, in)
}
