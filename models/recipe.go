package models

import "time"

// Limits shared by validation and storage.
const (
	MinAmount        = 1
	MaxAmount        = 32000
	MinCookingTime   = 1
	MaxCookingTime   = 32000
	RecipeNameMaxLen = 256
)

type Tag struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	Slug string `json:"slug" bson:"slug"`
}

// Ingredient is reference data. Two ingredients with the same name and
// measurement unit are treated as one line in a shopping list.
type Ingredient struct {
	ID              int64  `json:"id" bson:"_id"`
	Name            string `json:"name" bson:"name"`
	MeasurementUnit string `json:"measurement_unit" bson:"measurement_unit"`
}

type RecipeIngredient struct {
	IngredientID int64 `json:"id" bson:"ingredient_id"`
	Amount       int64 `json:"amount" bson:"amount"`
}

type Recipe struct {
	ID          int64              `json:"id" bson:"_id"`
	AuthorID    int64              `json:"author" bson:"author_id"`
	Name        string             `json:"name" bson:"name"`
	Text        string             `json:"text" bson:"text"`
	Image       string             `json:"image" bson:"image"`
	CookingTime int                `json:"cooking_time" bson:"cooking_time"`
	TagIDs      []int64            `json:"tags" bson:"tag_ids"`
	Ingredients []RecipeIngredient `json:"ingredients" bson:"ingredients"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// IngredientIDs returns the ingredient ids in recipe order.
func (r *Recipe) IngredientIDs() []int64 {
	ids := make([]int64, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ids = append(ids, ri.IngredientID)
	}
	return ids
}
