package models

import "time"

// Membership marks a recipe as being in a user's favorites or shopping cart.
// Rows are created and deleted, never updated.
type Membership struct {
	UserID    int64     `bson:"user_id"`
	RecipeID  int64     `bson:"recipe_id"`
	CreatedAt time.Time `bson:"created_at"`
}

// Subscription is a directed follow from Subscriber to Target.
type Subscription struct {
	SubscriberID int64     `bson:"subscriber_id"`
	TargetID     int64     `bson:"target_id"`
	CreatedAt    time.Time `bson:"created_at"`
}
