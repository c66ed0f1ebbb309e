package mq

import (
	"context"
	"testing"
)

type capture struct{ got []Event }

func (c *capture) Publish(_ context.Context, e Event) { c.got = append(c.got, e) }

func TestEmit(t *testing.T) {
	Emit(context.Background(), nil, RecipeCreated, 1, 2)

	c := &capture{}
	Emit(context.Background(), c, FavoriteAdded, 3, 4)
	if len(c.got) != 1 {
		t.Fatalf("events = %+v", c.got)
	}
	e := c.got[0]
	if e.Name != FavoriteAdded || e.UserID != 3 || e.EntityID != 4 || e.At.IsZero() {
		t.Fatalf("event = %+v", e)
	}
}
