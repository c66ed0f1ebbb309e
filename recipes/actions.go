package recipes

import (
	"errors"
	"net/http"
	"strconv"

	"foodgram/apperr"
	"foodgram/metrics"
	"foodgram/mq"
	"foodgram/shopping"
	"foodgram/store"
	"foodgram/structs"
	"foodgram/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// membership describes one of the per-user recipe sets.
type membership struct {
	kind    string
	label   string
	added   string
	removed string
	set     func(*store.Store) store.Memberships
}

var (
	favorites = membership{
		kind:    "favorite",
		label:   "favorites",
		added:   mq.FavoriteAdded,
		removed: mq.FavoriteRemoved,
		set:     func(s *store.Store) store.Memberships { return s.Favorites },
	}
	cart = membership{
		kind:    "shopping_cart",
		label:   "shopping cart",
		added:   mq.CartAdded,
		removed: mq.CartRemoved,
		set:     func(s *store.Store) store.Memberships { return s.Cart },
	}
)

func (h *Handler) addMembership(m membership) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		rec, err := h.loadRecipe(r, ps)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		userID := utils.GetUserIDFromRequest(r)
		if err := m.set(h.Store).Add(r.Context(), userID, rec.ID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				metrics.RecordMembershipChange(m.kind, "add", "conflict")
				err = apperr.Conflict("Recipe \"" + rec.Name + "\" is already in " + m.label + ".")
			}
			utils.RespondWithAppError(w, r, err)
			return
		}
		metrics.RecordMembershipChange(m.kind, "add", "ok")
		mq.Emit(r.Context(), h.Events, m.added, userID, rec.ID)
		utils.RespondWithJSON(w, http.StatusCreated, h.Present.RecipeShort(rec))
	}
}

func (h *Handler) removeMembership(m membership) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		rec, err := h.loadRecipe(r, ps)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		userID := utils.GetUserIDFromRequest(r)
		if err := m.set(h.Store).Remove(r.Context(), userID, rec.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				metrics.RecordMembershipChange(m.kind, "remove", "missing")
				err = apperr.MissingMembership("Recipe")
			}
			utils.RespondWithAppError(w, r, err)
			return
		}
		metrics.RecordMembershipChange(m.kind, "remove", "ok")
		mq.Emit(r.Context(), h.Events, m.removed, userID, rec.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// AddFavorite handles POST /api/recipes/{id}/favorite/
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.addMembership(favorites)(w, r, ps)
}

// RemoveFavorite handles DELETE /api/recipes/{id}/favorite/
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.removeMembership(favorites)(w, r, ps)
}

// AddToCart handles POST /api/recipes/{id}/shopping_cart/
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.addMembership(cart)(w, r, ps)
}

// RemoveFromCart handles DELETE /api/recipes/{id}/shopping_cart/
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.removeMembership(cart)(w, r, ps)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart/
func (h *Handler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	lines, err := shopping.Build(r.Context(), h.Store, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "pdf" {
		body, err := shopping.RenderPDF(lines)
		if err != nil {
			utils.RespondWithAppError(w, r, apperr.Internal(err))
			return
		}
		metrics.ShoppingListDownloads.WithLabelValues("pdf").Inc()
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	metrics.ShoppingListDownloads.WithLabelValues("txt").Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(shopping.Render(lines))
}

func (h *Handler) shortLink(id int64) string {
	return h.Domain + "/s/" + strconv.FormatInt(id, 10)
}

// GetLink handles GET /api/recipes/{id}/get-link/
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.loadRecipe(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, structs.ShortLinkResponse{ShortLink: h.shortLink(rec.ID)})
}

// LinkQR handles GET /api/recipes/{id}/get-link/qr/
func (h *Handler) LinkQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.loadRecipe(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	png, err := qrcode.Encode(h.shortLink(rec.ID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithAppError(w, r, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Redirect handles GET /s/{id}/. Unknown ids are a 400 validation error.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	raw := ps.ByName("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	exists := false
	if err == nil && id > 0 {
		if exists, err = h.Store.Recipes.Exists(r.Context(), id); err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
	}
	if !exists {
		utils.RespondWithAppError(w, r, apperr.Validation("Recipe with id="+raw+" does not exist"))
		return
	}
	http.Redirect(w, r, "/recipes/"+strconv.FormatInt(id, 10)+"/", http.StatusFound)
}
