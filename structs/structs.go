// Package structs holds the request and response bodies of the API. Each
// operation binds one fixed request type and one fixed response type.
package structs

import "foodgram/models"

// ---- requests ----

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

type RecipeIngredientRequest struct {
	ID     int64 `json:"id" validate:"required,gt=0"`
	Amount int64 `json:"amount" validate:"gte=1,lte=32000"`
}

// RecipeRequest is the body of recipe create and update. Image is required
// on create only.
type RecipeRequest struct {
	Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,unique=ID,dive"`
	Tags        []int64                   `json:"tags" validate:"required,min=1,unique,dive,gt=0"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name" validate:"required,max=256"`
	Text        string                    `json:"text" validate:"required"`
	CookingTime int                       `json:"cooking_time" validate:"gte=1,lte=32000"`
}

// ---- responses ----

type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type CSRFResponse struct {
	CSRFToken string `json:"csrfToken"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

// CreatedUser is returned by registration.
type CreatedUser struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type User struct {
	Email        string  `json:"email"`
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

// RecipeShort is the compact form returned by favorite and cart actions.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type IngredientAmount struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int64  `json:"amount"`
}

type Recipe struct {
	ID               int64              `json:"id"`
	Tags             []models.Tag       `json:"tags"`
	Author           User               `json:"author"`
	Ingredients      []IngredientAmount `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

// Subscription is a followed user with their recipes.
type Subscription struct {
	User
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}
