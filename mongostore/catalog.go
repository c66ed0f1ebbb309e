package mongostore

import (
	"context"
	"regexp"

	"foodgram/db"
	"foodgram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tags struct {
	database *mongo.Database
	coll     *mongo.Collection
}

func (s *tags) Create(ctx context.Context, t *models.Tag) error {
	id, err := db.NextID(ctx, s.database, db.TagsCollection)
	if err != nil {
		return err
	}
	t.ID = id
	_, err = s.coll.InsertOne(ctx, t)
	return mapWriteErr(err)
}

func (s *tags) Get(ctx context.Context, id int64) (*models.Tag, error) {
	return findOne[models.Tag](ctx, s.coll, bson.M{"_id": id})
}

func (s *tags) GetMany(ctx context.Context, ids []int64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	found, err := findAndDecode[models.Tag](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids, func(t models.Tag) int64 { return t.ID }), nil
}

func (s *tags) List(ctx context.Context) ([]models.Tag, error) {
	return findAndDecode[models.Tag](ctx, s.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

type ingredients struct {
	database *mongo.Database
	coll     *mongo.Collection
}

func (s *ingredients) Create(ctx context.Context, in *models.Ingredient) error {
	id, err := db.NextID(ctx, s.database, db.IngredientsCollection)
	if err != nil {
		return err
	}
	in.ID = id
	_, err = s.coll.InsertOne(ctx, in)
	return mapWriteErr(err)
}

func (s *ingredients) Get(ctx context.Context, id int64) (*models.Ingredient, error) {
	return findOne[models.Ingredient](ctx, s.coll, bson.M{"_id": id})
}

func (s *ingredients) GetMany(ctx context.Context, ids []int64) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return []models.Ingredient{}, nil
	}
	found, err := findAndDecode[models.Ingredient](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids, func(in models.Ingredient) int64 { return in.ID }), nil
}

func (s *ingredients) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["name"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix), "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	return findAndDecode[models.Ingredient](ctx, s.coll, filter, opts)
}
