package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"foodgram/models"
	"foodgram/store"
)

func TestUsersUniqueness(t *testing.T) {
	st := New()
	ctx := context.Background()
	if err := st.Users.Create(ctx, &models.User{Email: "a@x.io", Username: "a"}); err != nil {
		t.Fatal(err)
	}
	for _, u := range []*models.User{
		{Email: "A@X.io", Username: "b"},
		{Email: "b@x.io", Username: "a"},
	} {
		if err := st.Users.Create(ctx, u); !errors.Is(err, store.ErrConflict) {
			t.Errorf("Create(%s, %s) = %v, want conflict", u.Email, u.Username, err)
		}
	}
	if _, err := st.Users.GetByEmail(ctx, "A@x.IO"); err != nil {
		t.Fatalf("email lookup should ignore case: %v", err)
	}
	if _, err := st.Users.Get(ctx, 99); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get(99) = %v", err)
	}
}

func TestMembershipsAreSets(t *testing.T) {
	st := New()
	ctx := context.Background()

	if err := st.Favorites.Add(ctx, 1, 10); err != nil {
		t.Fatal(err)
	}
	if err := st.Favorites.Add(ctx, 1, 10); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("second add = %v", err)
	}
	if has, _ := st.Cart.Has(ctx, 1, 10); has {
		t.Fatal("favorites and cart must be independent")
	}
	if err := st.Favorites.Add(ctx, 2, 10); err != nil {
		t.Fatal(err)
	}
	if n, _ := st.Favorites.CountForRecipe(ctx, 10); n != 2 {
		t.Fatalf("count = %d", n)
	}
	if err := st.Favorites.DeleteRecipe(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if err := st.Favorites.Remove(ctx, 1, 10); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("remove after delete = %v", err)
	}
}

func TestRecipeListing(t *testing.T) {
	st := New()
	ctx := context.Background()
	soup := &models.Tag{Name: "Soup", Slug: "soup"}
	if err := st.Tags.Create(ctx, soup); err != nil {
		t.Fatal(err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"Borscht", "Salad", "Shchi"} {
		r := &models.Recipe{AuthorID: int64(i%2 + 1), Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if name != "Salad" {
			r.TagIDs = []int64{soup.ID}
		}
		if err := st.Recipes.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	got, total, err := st.Recipes.List(ctx, store.RecipeFilter{}, store.Page{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(got) != 2 || got[0].Name != "Shchi" || got[1].Name != "Salad" {
		t.Fatalf("newest first: total %d, %+v", total, got)
	}

	got, _, _ = st.Recipes.List(ctx, store.RecipeFilter{TagSlugs: []string{"soup"}, AuthorID: 1}, store.Page{})
	if len(got) != 2 {
		t.Fatalf("tag+author filter = %+v", got)
	}

	got, _, _ = st.Recipes.List(ctx, store.RecipeFilter{NameSearch: "SAL"}, store.Page{})
	if len(got) != 1 || got[0].Name != "Salad" {
		t.Fatalf("name search = %+v", got)
	}

	if n, _ := st.Recipes.CountByAuthor(ctx, 1); n != 2 {
		t.Fatalf("count by author = %d", n)
	}
}

func TestIngredientSearchIsPrefixAndCaseInsensitive(t *testing.T) {
	st := New()
	ctx := context.Background()
	for _, name := range []string{"sugar", "Salt", "brown sugar"} {
		if err := st.Ingredients.Create(ctx, &models.Ingredient{Name: name, MeasurementUnit: "g"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := st.Ingredients.Search(ctx, "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("search = %+v", got)
	}
}

func TestSubscriptionsTargets(t *testing.T) {
	st := New()
	ctx := context.Background()
	for _, target := range []int64{2, 3, 4} {
		if err := st.Subscriptions.Add(ctx, 1, target); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.Subscriptions.Add(ctx, 1, 2); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate = %v", err)
	}
	ids, total, err := st.Subscriptions.Targets(ctx, 1, store.Page{Offset: 1, Limit: 1})
	if err != nil || total != 3 || len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("targets = %v total %d err %v", ids, total, err)
	}
	if err := st.Subscriptions.Remove(ctx, 2, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("reverse pair remove = %v", err)
	}
}

func TestConcurrentAddsSettleOnePair(t *testing.T) {
	st := New()
	tests := []struct {
		name string
		add  func(ctx context.Context) error
	}{
		{"favorites", func(ctx context.Context) error { return st.Favorites.Add(ctx, 1, 10) }},
		{"cart", func(ctx context.Context) error { return st.Cart.Add(ctx, 1, 10) }},
		{"subscriptions", func(ctx context.Context) error { return st.Subscriptions.Add(ctx, 1, 2) }},
	}
	const workers = 32
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := make([]error, workers)
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					errs[i] = tt.add(context.Background())
				}(i)
			}
			close(start)
			wg.Wait()

			var ok, conflicts int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, store.ErrConflict):
					conflicts++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if ok != 1 || conflicts != workers-1 {
				t.Fatalf("ok = %d, conflicts = %d", ok, conflicts)
			}
		})
	}
}
