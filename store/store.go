// Package store declares the repository interfaces the handlers depend on.
// Implementations return materialised models; there is no query chaining
// outside this package boundary.
package store

import (
	"context"
	"errors"

	"foodgram/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Page selects a window of a listing. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetMany(ctx context.Context, ids []int64) ([]models.User, error)
	List(ctx context.Context, page Page) ([]models.User, int64, error)
	SetAvatar(ctx context.Context, id int64, avatar string) error
	SetPassword(ctx context.Context, id int64, hash string) error
}

type Tags interface {
	Create(ctx context.Context, t *models.Tag) error
	Get(ctx context.Context, id int64) (*models.Tag, error)
	GetMany(ctx context.Context, ids []int64) ([]models.Tag, error)
	List(ctx context.Context) ([]models.Tag, error)
}

type Ingredients interface {
	Create(ctx context.Context, in *models.Ingredient) error
	Get(ctx context.Context, id int64) (*models.Ingredient, error)
	GetMany(ctx context.Context, ids []int64) ([]models.Ingredient, error)
	// Search returns ingredients whose name starts with prefix, case-insensitively,
	// ordered by name.
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
}

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64
	InCartOf    int64
	NameSearch  string
}

type Recipes interface {
	Create(ctx context.Context, r *models.Recipe) error
	Update(ctx context.Context, r *models.Recipe) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Recipe, error)
	GetMany(ctx context.Context, ids []int64) ([]models.Recipe, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// List returns recipes newest first together with the unpaged total.
	List(ctx context.Context, f RecipeFilter, page Page) ([]models.Recipe, int64, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}

// Memberships is a set of (user, recipe) pairs. Favorites and the shopping
// cart are both Memberships.
type Memberships interface {
	// Add returns ErrConflict if the pair exists.
	Add(ctx context.Context, userID, recipeID int64) error
	// Remove returns ErrNotFound if the pair does not exist.
	Remove(ctx context.Context, userID, recipeID int64) error
	Has(ctx context.Context, userID, recipeID int64) (bool, error)
	RecipeIDs(ctx context.Context, userID int64) ([]int64, error)
	CountForRecipe(ctx context.Context, recipeID int64) (int64, error)
	DeleteRecipe(ctx context.Context, recipeID int64) error
}

type Subscriptions interface {
	Add(ctx context.Context, subscriberID, targetID int64) error
	Remove(ctx context.Context, subscriberID, targetID int64) error
	Has(ctx context.Context, subscriberID, targetID int64) (bool, error)
	// Targets returns the ids the subscriber follows, oldest subscription
	// first, and the unpaged total.
	Targets(ctx context.Context, subscriberID int64, page Page) ([]int64, int64, error)
}

// Store bundles every repository.
type Store struct {
	Users         Users
	Tags          Tags
	Ingredients   Ingredients
	Recipes       Recipes
	Favorites     Memberships
	Cart          Memberships
	Subscriptions Subscriptions
}
