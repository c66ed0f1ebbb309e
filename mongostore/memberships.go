package mongostore

import (
	"context"
	"time"

	"foodgram/models"
	"foodgram/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memberships relies on the unique (user_id, recipe_id) index: of two
// concurrent Adds for the same pair, the losing insert gets a duplicate-key
// error and reports store.ErrConflict.
type memberships struct {
	coll *mongo.Collection
}

func (s *memberships) Add(ctx context.Context, userID, recipeID int64) error {
	_, err := s.coll.InsertOne(ctx, models.Membership{
		UserID:    userID,
		RecipeID:  recipeID,
		CreatedAt: time.Now(),
	})
	return mapWriteErr(err)
}

func (s *memberships) Remove(ctx context.Context, userID, recipeID int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"user_id": userID, "recipe_id": recipeID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *memberships) Has(ctx context.Context, userID, recipeID int64) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"user_id": userID, "recipe_id": recipeID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *memberships) RecipeIDs(ctx context.Context, userID int64) ([]int64, error) {
	return memberRecipeIDs(ctx, s.coll, userID)
}

func (s *memberships) CountForRecipe(ctx context.Context, recipeID int64) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"recipe_id": recipeID})
}

func (s *memberships) DeleteRecipe(ctx context.Context, recipeID int64) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"recipe_id": recipeID})
	return err
}

func memberRecipeIDs(ctx context.Context, coll *mongo.Collection, userID int64) ([]int64, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	rows, err := findAndDecode[models.Membership](ctx, coll, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.RecipeID)
	}
	return ids, nil
}

type subscriptions struct {
	coll *mongo.Collection
}

func (s *subscriptions) Add(ctx context.Context, subscriberID, targetID int64) error {
	_, err := s.coll.InsertOne(ctx, models.Subscription{
		SubscriberID: subscriberID,
		TargetID:     targetID,
		CreatedAt:    time.Now(),
	})
	return mapWriteErr(err)
}

func (s *subscriptions) Remove(ctx context.Context, subscriberID, targetID int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"subscriber_id": subscriberID, "target_id": targetID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *subscriptions) Has(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"subscriber_id": subscriberID, "target_id": targetID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *subscriptions) Targets(ctx context.Context, subscriberID int64, page store.Page) ([]int64, int64, error) {
	filter := bson.M{"subscriber_id": subscriberID}
	opts := pageOptions(page).SetSort(bson.D{{Key: "created_at", Value: 1}})
	rows, err := findAndDecode[models.Subscription](ctx, s.coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(rows))
	for _, sub := range rows {
		ids = append(ids, sub.TargetID)
	}
	return ids, total, nil
}
