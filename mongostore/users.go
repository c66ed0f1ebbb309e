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
)

type users struct {
	database *mongo.Database
	coll     *mongo.Collection
}

func (s *users) Create(ctx context.Context, u *models.User) error {
	id, err := db.NextID(ctx, s.database, db.UsersCollection)
	if err != nil {
		return err
	}
	u.ID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err = s.coll.InsertOne(ctx, u)
	return mapWriteErr(err)
}

func (s *users) Get(ctx context.Context, id int64) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"_id": id})
}

func (s *users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{
		"email": bson.M{"$regex": "^" + regexp.QuoteMeta(email) + "$", "$options": "i"},
	})
}

func (s *users) GetMany(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	found, err := findAndDecode[models.User](ctx, s.coll, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return orderByIDs(found, ids, func(u models.User) int64 { return u.ID }), nil
}

func (s *users) List(ctx context.Context, page store.Page) ([]models.User, int64, error) {
	opts := pageOptions(page).SetSort(bson.D{{Key: "_id", Value: 1}})
	list, err := findAndDecode[models.User](ctx, s.coll, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *users) SetAvatar(ctx context.Context, id int64, avatar string) error {
	return s.set(ctx, id, bson.M{"avatar": avatar})
}

func (s *users) SetPassword(ctx context.Context, id int64, hash string) error {
	return s.set(ctx, id, bson.M{"password": hash})
}

func (s *users) set(ctx context.Context, id int64, fields bson.M) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
