// Package mq publishes domain events to a Redis pub/sub channel.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"foodgram/logging"

	"github.com/redis/go-redis/v9"
)

const Channel = "foodgram-events"

// Event names.
const (
	RecipeCreated    = "recipe.created"
	RecipeUpdated    = "recipe.updated"
	RecipeDeleted    = "recipe.deleted"
	FavoriteAdded    = "favorite.added"
	FavoriteRemoved  = "favorite.removed"
	CartAdded        = "cart.added"
	CartRemoved      = "cart.removed"
	UserSubscribed   = "user.subscribed"
	UserUnsubscribed = "user.unsubscribed"
	UserRegistered   = "user.registered"
)

type Event struct {
	Name     string    `json:"name"`
	UserID   int64     `json:"user_id"`
	EntityID int64     `json:"entity_id"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Emit stamps the event and hands it to p.
func Emit(ctx context.Context, p Publisher, name string, userID, entityID int64) {
	if p == nil {
		return
	}
	p.Publish(ctx, Event{Name: name, UserID: userID, EntityID: entityID, At: time.Now().UTC()})
}

// RedisPublisher publishes events; failures are logged and never reach the
// caller.
type RedisPublisher struct {
	conn *redis.Client
}

func NewRedisPublisher(conn *redis.Client) *RedisPublisher {
	return &RedisPublisher{conn: conn}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		logging.Warn().Err(err).Str("event", e.Name).Msg("marshal event")
		return
	}
	if err := p.conn.Publish(ctx, Channel, data).Err(); err != nil {
		logging.Warn().Err(err).Str("event", e.Name).Msg("publish event")
	}
}

// Nop drops events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// StartEventLogger subscribes to the channel and logs every event until ctx
// is cancelled.
func StartEventLogger(ctx context.Context, conn *redis.Client) {
	sub := conn.Subscribe(ctx, Channel)
	defer sub.Close()
	ch := sub.Channel()
	logging.Info().Str("channel", Channel).Msg("listening for events")
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				logging.Warn().Err(err).Msg("parse event")
				continue
			}
			logging.Debug().Str("event", e.Name).Int64("user_id", e.UserID).Int64("entity_id", e.EntityID).Msg("event")
		}
	}
}
