// Package admin serves read-only staff listings of the catalogue.
package admin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodgram/globals"
	"foodgram/models"
	"foodgram/store"
	"foodgram/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Store     *store.Store
	Paginator utils.Paginator
}

type RecipeRow struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Author         string    `json:"author"`
	Text           string    `json:"text"`
	CookingTime    int       `json:"cooking_time"`
	Tags           string    `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	FavoritesCount int64     `json:"favorites_count"`
	Ingredients    []string  `json:"ingredients"`
	Image          string    `json:"image"`
}

type IngredientRow struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type TagRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func orEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return globals.EmptyValue
	}
	return s
}

// Recipes handles GET /api/admin/recipes/
func (h *Handler) Recipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	q := r.URL.Query()
	f := store.RecipeFilter{NameSearch: strings.TrimSpace(q.Get("search"))}
	if tag := q.Get("tag"); tag != "" {
		f.TagSlugs = []string{tag}
	}
	if author, err := strconv.ParseInt(q.Get("author"), 10, 64); err == nil && author > 0 {
		f.AuthorID = author
	}

	page := h.Paginator.Parse(r)
	recipes, total, err := h.Store.Recipes.List(ctx, f, page.Window())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}

	var authorIDs, tagIDs, ingredientIDs []int64
	for i := range recipes {
		authorIDs = append(authorIDs, recipes[i].AuthorID)
		tagIDs = append(tagIDs, recipes[i].TagIDs...)
		ingredientIDs = append(ingredientIDs, recipes[i].IngredientIDs()...)
	}
	authors, err := h.Store.Users.GetMany(ctx, authorIDs)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	usernames := make(map[int64]string, len(authors))
	for _, u := range authors {
		usernames[u.ID] = u.Username
	}
	tags, err := h.Store.Tags.GetMany(ctx, tagIDs)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	tagNames := make(map[int64]string, len(tags))
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	ingredients, err := h.Store.Ingredients.GetMany(ctx, ingredientIDs)
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	ingredientByID := make(map[int64]models.Ingredient, len(ingredients))
	for _, in := range ingredients {
		ingredientByID[in.ID] = in
	}

	rows := make([]RecipeRow, 0, len(recipes))
	for i := range recipes {
		rec := &recipes[i]
		count, err := h.Store.Favorites.CountForRecipe(ctx, rec.ID)
		if err != nil {
			utils.RespondWithAppError(w, r, err)
			return
		}
		names := make([]string, 0, len(rec.TagIDs))
		for _, id := range rec.TagIDs {
			names = append(names, tagNames[id])
		}
		lines := make([]string, 0, len(rec.Ingredients))
		for _, ri := range rec.Ingredients {
			in := ingredientByID[ri.IngredientID]
			lines = append(lines, in.Name+" - "+strconv.FormatInt(ri.Amount, 10)+" "+in.MeasurementUnit)
		}
		if len(lines) == 0 {
			lines = []string{globals.EmptyValue}
		}
		rows = append(rows, RecipeRow{
			ID:             rec.ID,
			Name:           orEmpty(rec.Name),
			Author:         orEmpty(usernames[rec.AuthorID]),
			Text:           orEmpty(rec.Text),
			CookingTime:    rec.CookingTime,
			Tags:           orEmpty(strings.Join(names, ", ")),
			CreatedAt:      rec.CreatedAt,
			FavoritesCount: count,
			Ingredients:    lines,
			Image:          orEmpty(rec.Image),
		})
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.NewPageResponse(r, page, total, rows))
}

// Ingredients handles GET /api/admin/ingredients/
func (h *Handler) Ingredients(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	found, err := h.Store.Ingredients.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	rows := make([]IngredientRow, 0, len(found))
	for _, in := range found {
		rows = append(rows, IngredientRow{ID: in.ID, Name: orEmpty(in.Name), MeasurementUnit: orEmpty(in.MeasurementUnit)})
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
}

// Tags handles GET /api/admin/tags/
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tags, err := h.Store.Tags.List(r.Context())
	if err != nil {
		utils.RespondWithAppError(w, r, err)
		return
	}
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	rows := make([]TagRow, 0, len(tags))
	for _, t := range tags {
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) && !strings.Contains(strings.ToLower(t.Slug), search) {
			continue
		}
		rows = append(rows, TagRow{ID: t.ID, Name: orEmpty(t.Name), Slug: orEmpty(t.Slug)})
	}
	utils.RespondWithJSON(w, http.StatusOK, rows)
}
