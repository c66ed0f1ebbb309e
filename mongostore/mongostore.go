// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"foodgram/db"
	"foodgram/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// New builds a store over the given database.
func New(database *mongo.Database) *store.Store {
	return &store.Store{
		Users:         &users{database: database, coll: database.Collection(db.UsersCollection)},
		Tags:          &tags{database: database, coll: database.Collection(db.TagsCollection)},
		Ingredients:   &ingredients{database: database, coll: database.Collection(db.IngredientsCollection)},
		Recipes:       &recipes{database: database, coll: database.Collection(db.RecipesCollection)},
		Favorites:     &memberships{coll: database.Collection(db.FavoritesCollection)},
		Cart:          &memberships{coll: database.Collection(db.CartsCollection)},
		Subscriptions: &subscriptions{coll: database.Collection(db.SubscriptionsCollection)},
	}
}

// EnsureIndexes creates the unique indexes that back the membership and
// identity invariants.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	for name, idx := range indexModels() {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// emailCollation compares emails case-insensitively, matching GetByEmail.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

func indexModels() map[string][]mongo.IndexModel {
	unique := options.Index().SetUnique(true)
	return map[string][]mongo.IndexModel{
		db.UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(emailCollation)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		db.TagsCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		db.IngredientsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}, {Key: "measurement_unit", Value: 1}}},
		},
		db.RecipesCollection: {
			{Keys: bson.D{{Key: "author_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		db.FavoritesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "recipe_id", Value: 1}}, Options: unique},
		},
		db.CartsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "recipe_id", Value: 1}}, Options: unique},
		},
		db.SubscriptionsCollection: {
			{Keys: bson.D{{Key: "subscriber_id", Value: 1}, {Key: "target_id", Value: 1}}, Options: unique},
		},
	}
}

// findAndDecode runs a find and decodes every document.
func findAndDecode[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// findOne decodes a single document, mapping a miss to store.ErrNotFound.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// mapWriteErr turns duplicate-key failures into store.ErrConflict.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrConflict
	}
	return err
}

// orderByIDs restores the caller's id order after an $in query.
func orderByIDs[T any](items []T, ids []int64, idOf func(T) int64) []T {
	byID := make(map[int64]T, len(items))
	for _, it := range items {
		byID[idOf(it)] = it
	}
	out := make([]T, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, it)
		}
	}
	return out
}

func pageOptions(page store.Page) *options.FindOptions {
	opts := options.Find()
	if page.Offset > 0 {
		opts.SetSkip(int64(page.Offset))
	}
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit))
	}
	return opts
}
