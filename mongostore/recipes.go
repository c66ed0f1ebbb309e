package mongostore

import (
	"context"
	"regexp"
	"time"

	"foodgram/db"
	"foodgram/models"
	"foodgram/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recipes struct {
	database *mongo.Database
	coll     *mongo.Collection
}

func (s *recipes) Create(ctx context.Context, r *models.Recipe) error {
	id, err := db.NextID(ctx, s.database, db.RecipesCollection)
	if err != nil {
		return err
	}
	r.ID = id
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err = s.coll.InsertOne(ctx, r)
	return mapWriteErr(err)
}

func (s *recipes) Update(ctx context.Context, r *models.Recipe) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *recipes) Delete(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *recipes) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	return findOne[models.Recipe](ctx, s.coll, bson.M{"_id": id})
}

func (s *recipes) GetMany(ctx context.Context, ids []int64) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	found, err := findAndDecode[models.Recipe](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids, func(r models.Recipe) int64 { return r.ID }), nil
}

func (s *recipes) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *recipes) List(ctx context.Context, f store.RecipeFilter, page store.Page) ([]models.Recipe, int64, error) {
	filter, err := s.buildFilter(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	opts := pageOptions(page).SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	list, err := findAndDecode[models.Recipe](ctx, s.coll, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *recipes) buildFilter(ctx context.Context, f store.RecipeFilter) (bson.M, error) {
	filter := bson.M{}
	var and []bson.M

	if f.AuthorID != 0 {
		filter["author_id"] = f.AuthorID
	}
	if f.NameSearch != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.NameSearch), "$options": "i"}
	}
	if len(f.TagSlugs) > 0 {
		tagList, err := findAndDecode[models.Tag](ctx, s.database.Collection(db.TagsCollection),
			bson.M{"slug": bson.M{"$in": f.TagSlugs}})
		if err != nil {
			return nil, err
		}
		ids := make([]int64, 0, len(tagList))
		for _, t := range tagList {
			ids = append(ids, t.ID)
		}
		filter["tag_ids"] = bson.M{"$in": ids}
	}
	if f.FavoritedBy != 0 {
		ids, err := memberRecipeIDs(ctx, s.database.Collection(db.FavoritesCollection), f.FavoritedBy)
		if err != nil {
			return nil, err
		}
		and = append(and, bson.M{"_id": bson.M{"$in": ids}})
	}
	if f.InCartOf != 0 {
		ids, err := memberRecipeIDs(ctx, s.database.Collection(db.CartsCollection), f.InCartOf)
		if err != nil {
			return nil, err
		}
		and = append(and, bson.M{"_id": bson.M{"$in": ids}})
	}
	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter, nil
}

func (s *recipes) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"author_id": authorID})
}
