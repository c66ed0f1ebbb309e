package structs

import (
	"context"
	"fmt"

	"foodgram/media"
	"foodgram/models"
	"foodgram/store"
)

// Presenter renders models into response bodies as seen by a viewer. A
// viewer id of 0 is anonymous.
type Presenter struct {
	Store *store.Store
	Media *media.Store
}

func (p *Presenter) CreatedUser(u *models.User) CreatedUser {
	return CreatedUser{Email: u.Email, ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func (p *Presenter) User(ctx context.Context, viewerID int64, u *models.User) (User, error) {
	out := User{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	if u.Avatar != "" {
		url := p.Media.URL(u.Avatar)
		out.Avatar = &url
	}
	if viewerID != 0 && viewerID != u.ID {
		subscribed, err := p.Store.Subscriptions.Has(ctx, viewerID, u.ID)
		if err != nil {
			return User{}, fmt.Errorf("subscription state: %w", err)
		}
		out.IsSubscribed = subscribed
	}
	return out, nil
}

func (p *Presenter) Users(ctx context.Context, viewerID int64, users []models.User) ([]User, error) {
	out := make([]User, 0, len(users))
	for i := range users {
		u, err := p.User(ctx, viewerID, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (p *Presenter) RecipeShort(r *models.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Name, Image: p.Media.URL(r.Image), CookingTime: r.CookingTime}
}

// Recipe renders the full representation of a single recipe.
func (p *Presenter) Recipe(ctx context.Context, viewerID int64, r *models.Recipe) (Recipe, error) {
	out, err := p.Recipes(ctx, viewerID, []models.Recipe{*r})
	if err != nil {
		return Recipe{}, err
	}
	return out[0], nil
}

// Recipes renders recipes in order, loading authors, tags and ingredients
// once for the batch.
func (p *Presenter) Recipes(ctx context.Context, viewerID int64, recipes []models.Recipe) ([]Recipe, error) {
	var authorIDs, tagIDs, ingredientIDs []int64
	for i := range recipes {
		authorIDs = append(authorIDs, recipes[i].AuthorID)
		tagIDs = append(tagIDs, recipes[i].TagIDs...)
		ingredientIDs = append(ingredientIDs, recipes[i].IngredientIDs()...)
	}

	authors, err := p.Store.Users.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	authorByID := make(map[int64]User, len(authors))
	for i := range authors {
		u, err := p.User(ctx, viewerID, &authors[i])
		if err != nil {
			return nil, err
		}
		authorByID[u.ID] = u
	}

	tags, err := p.Store.Tags.GetMany(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	tagByID := make(map[int64]models.Tag, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}

	ingredients, err := p.Store.Ingredients.GetMany(ctx, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	ingredientByID := make(map[int64]models.Ingredient, len(ingredients))
	for _, in := range ingredients {
		ingredientByID[in.ID] = in
	}

	out := make([]Recipe, 0, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		rec := Recipe{
			ID:          r.ID,
			Author:      authorByID[r.AuthorID],
			Name:        r.Name,
			Image:       p.Media.URL(r.Image),
			Text:        r.Text,
			CookingTime: r.CookingTime,
			Tags:        make([]models.Tag, 0, len(r.TagIDs)),
			Ingredients: make([]IngredientAmount, 0, len(r.Ingredients)),
		}
		for _, id := range r.TagIDs {
			if t, ok := tagByID[id]; ok {
				rec.Tags = append(rec.Tags, t)
			}
		}
		for _, ri := range r.Ingredients {
			in := ingredientByID[ri.IngredientID]
			rec.Ingredients = append(rec.Ingredients, IngredientAmount{
				ID:              ri.IngredientID,
				Name:            in.Name,
				MeasurementUnit: in.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		if viewerID != 0 {
			if rec.IsFavorited, err = p.Store.Favorites.Has(ctx, viewerID, r.ID); err != nil {
				return nil, fmt.Errorf("favorite state: %w", err)
			}
			if rec.IsInShoppingCart, err = p.Store.Cart.Has(ctx, viewerID, r.ID); err != nil {
				return nil, fmt.Errorf("cart state: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Subscription renders a followed user with up to recipesLimit of their
// newest recipes; recipesLimit <= 0 returns all of them.
func (p *Presenter) Subscription(ctx context.Context, viewerID int64, u *models.User, recipesLimit int) (Subscription, error) {
	user, err := p.User(ctx, viewerID, u)
	if err != nil {
		return Subscription{}, err
	}
	recipes, total, err := p.Store.Recipes.List(ctx, store.RecipeFilter{AuthorID: u.ID}, store.Page{Limit: recipesLimit})
	if err != nil {
		return Subscription{}, fmt.Errorf("author recipes: %w", err)
	}
	out := Subscription{User: user, Recipes: make([]RecipeShort, 0, len(recipes)), RecipesCount: total}
	for i := range recipes {
		out.Recipes = append(out.Recipes, p.RecipeShort(&recipes[i]))
	}
	return out, nil
}
