// Package recipes serves the recipe resource and its nested actions.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
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
)

type Handler struct {
	Store     *store.Store
	Present   *structs.Presenter
	Media     *media.Store
	Events    mq.Publisher
	Paginator utils.Paginator
	// Domain prefixes short links.
	Domain string
}

var errNotFound = apperr.NotFound("Not found.")

func (h *Handler) loadRecipe(r *http.Request, ps httprouter.Params) (*models.Recipe, error) {
	id, ok := middleware.ParamID(ps, "id")
	if !ok {
		return nil, errNotFound
	}
	rec, err := h.Store.Recipes.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	return rec, err
}

// OwnerOf reports the author of the recipe addressed by :id.
func (h *Handler) OwnerOf(r *http.Request, ps httprouter.Params) (int64, error) {
	rec, err := h.loadRecipe(r, ps)
	if err != nil {
		return 0, err
	}
	return rec.AuthorID, nil
}

func (h *Handler) filterFromQuery(r *http.Request) store.RecipeFilter {
	q := r.URL.Query()
	f := store.RecipeFilter{TagSlugs: q["tags"]}
	if author, err := strconv.ParseInt(q.Get("author"), 10, 64); err == nil && author > 0 {
		f.AuthorID = author
	}
	if viewerID := utils.GetUserIDFromRequest(r); viewerID != 0 {
		if q.Get("is_favorited") == "1" {
			f.FavoritedBy = viewerID
		}
		if q.Get("is_in_shopping_cart") == "1" {
			f.InCartOf = viewerID
		}
	}
	return f
}

// List handles GET /api/recipes/
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page := h.Paginator.Parse(r)
	recipes, total, err := h.Store.Recipes.List(r.Context(), h.filterFromQuery(r), page.Window())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	out, err := h.Present.Recipes(r.Context(), utils.GetUserIDFromRequest(r), recipes)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPageResponse(r, page, total, out))
}

// Retrieve handles GET /api/recipes/{id}/
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.loadRecipe(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	h.respondRecipe(w, r, http.StatusOK, rec)
}

func (h *Handler) respondRecipe(w http.ResponseWriter, r *http.Request, status int, rec *models.Recipe) {
	out, err := h.Present.Recipe(r.Context(), utils.GetUserIDFromRequest(r), rec)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	utils.RespondWithJSON(w, status, out)
}

// decodeRecipe reads and validates a create or update body, checking that
// every referenced ingredient and tag exists.
func (h *Handler) decodeRecipe(ctx context.Context, r *http.Request, requireImage bool) (*structs.RecipeRequest, error) {
	var req structs.RecipeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	if requireImage && req.Image == "" {
		return nil, apperr.ValidationFields(map[string][]string{"image": {"image is required"}})
	}

	ingredientIDs := make([]int64, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		ingredientIDs = append(ingredientIDs, in.ID)
	}
	found, err := h.Store.Ingredients.GetMany(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}
	if missing := missingID(ingredientIDs, len(found), func(i int) int64 { return found[i].ID }); missing != 0 {
		return nil, apperr.ValidationFields(map[string][]string{
			"ingredients": {fmt.Sprintf("Ingredient with id %d does not exist.", missing)},
		})
	}

	tags, err := h.Store.Tags.GetMany(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	if missing := missingID(req.Tags, len(tags), func(i int) int64 { return tags[i].ID }); missing != 0 {
		return nil, apperr.ValidationFields(map[string][]string{
			"tags": {fmt.Sprintf("Tag with id %d does not exist.", missing)},
		})
	}
	return &req, nil
}

// missingID returns the first wanted id absent from the n found items, or 0.
func missingID(want []int64, n int, idAt func(int) int64) int64 {
	have := make(map[int64]struct{}, n)
	for i := 0; i < n; i++ {
		have[idAt(i)] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return id
		}
	}
	return 0
}

func applyRequest(rec *models.Recipe, req *structs.RecipeRequest) {
	rec.Name = req.Name
	rec.Text = req.Text
	rec.CookingTime = req.CookingTime
	rec.TagIDs = append([]int64(nil), req.Tags...)
	rec.Ingredients = make([]models.RecipeIngredient, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		rec.Ingredients = append(rec.Ingredients, models.RecipeIngredient{IngredientID: in.ID, Amount: in.Amount})
	}
}

func (h *Handler) saveImage(dataURI string) (string, error) {
	path, err := h.Media.SaveDataURI(media.FolderRecipes, dataURI)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, media.ErrEmpty), errors.Is(err, media.ErrInvalidData), errors.Is(err, media.ErrUnsupported):
		return "", apperr.ValidationFields(map[string][]string{"image": {"Upload a valid image."}})
	default:
		return "", apperr.Internal(err)
	}
}

// Create handles POST /api/recipes/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req, err := h.decodeRecipe(r.Context(), r, true)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	image, err := h.saveImage(req.Image)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	rec := &models.Recipe{
		AuthorID:  utils.GetUserIDFromRequest(r),
		Image:     image,
		CreatedAt: time.Now().UTC(),
	}
	applyRequest(rec, req)
	if err := h.Store.Recipes.Create(r.Context(), rec); err != nil {
		_ = h.Media.Delete(image)
		utils.RespondWithAppError(w, r, err)
		return
	}

	logging.Info().Int64("recipe_id", rec.ID).Int64("author_id", rec.AuthorID).Msg("recipe created")
	mq.Emit(r.Context(), h.Events, mq.RecipeCreated, rec.AuthorID, rec.ID)
	h.respondRecipe(w, r, http.StatusCreated, rec)
}

// Update handles PATCH /api/recipes/{id}/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.loadRecipe(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	req, err := h.decodeRecipe(r.Context(), r, false)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	previousImage := rec.Image
	if req.Image != "" {
		if rec.Image, err = h.saveImage(req.Image); err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
	}
	applyRequest(rec, req)
	if err := h.Store.Recipes.Update(r.Context(), rec); err != nil {
		if rec.Image != previousImage {
			_ = h.Media.Delete(rec.Image)
		}
		utils.RespondWithAppError(w, r, err)
		return
	}
	if rec.Image != previousImage {
		if err := h.Media.Delete(previousImage); err != nil {
			logging.Warn().Err(err).Str("path", previousImage).Msg("remove replaced recipe image")
		}
	}

	mq.Emit(r.Context(), h.Events, mq.RecipeUpdated, utils.GetUserIDFromRequest(r), rec.ID)
	h.respondRecipe(w, r, http.StatusOK, rec)
}

// Delete handles DELETE /api/recipes/{id}/
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rec, err := h.loadRecipe(r, ps)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	ctx := r.Context()
	if err := h.Store.Favorites.DeleteRecipe(ctx, rec.ID); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.Store.Cart.DeleteRecipe(ctx, rec.ID); err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.Store.Recipes.Delete(ctx, rec.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		utils.RespondWithAppError(w, r, err)
		return
	}
	if err := h.Media.Delete(rec.Image); err != nil {
		logging.Warn().Err(err).Str("path", rec.Image).Msg("remove recipe image")
	}

	mq.Emit(ctx, h.Events, mq.RecipeDeleted, utils.GetUserIDFromRequest(r), rec.ID)
	w.WriteHeader(http.StatusNoContent)
}
