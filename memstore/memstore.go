// Package memstore is an in-memory implementation of the store interfaces.
// It backs the "memory" storage driver and the handler tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"foodgram/models"
	"foodgram/store"
)

type db struct {
	mu          sync.RWMutex
	seq         map[string]int64
	users       map[int64]models.User
	tags        map[int64]models.Tag
	ingredients map[int64]models.Ingredient
	recipes     map[int64]models.Recipe
	favorites   []models.Membership
	cart        []models.Membership
	subs        []models.Subscription
}

// New returns an empty store.
func New() *store.Store {
	d := &db{
		seq:         map[string]int64{},
		users:       map[int64]models.User{},
		tags:        map[int64]models.Tag{},
		ingredients: map[int64]models.Ingredient{},
		recipes:     map[int64]models.Recipe{},
	}
	return &store.Store{
		Users:         &users{d},
		Tags:          &tags{d},
		Ingredients:   &ingredients{d},
		Recipes:       &recipes{d},
		Favorites:     &memberships{db: d, rows: &d.favorites},
		Cart:          &memberships{db: d, rows: &d.cart},
		Subscriptions: &subscriptions{d},
	}
}

// next must be called with mu held.
func (d *db) next(name string) int64 {
	d.seq[name]++
	return d.seq[name]
}

func paginate[T any](items []T, page store.Page) []T {
	if page.Offset < 0 || page.Offset >= len(items) {
		return []T{}
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

// ---- users ----

type users struct{ *db }

func (s *users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return store.ErrConflict
		}
	}
	u.ID = s.next("users")
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *users) Get(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *users) GetMany(_ context.Context, ids []int64) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *users) List(_ context.Context, page store.Page) ([]models.User, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (s *users) SetAvatar(_ context.Context, id int64, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Avatar = avatar
	s.users[id] = u
	return nil
}

func (s *users) SetPassword(_ context.Context, id int64, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	s.users[id] = u
	return nil
}

// ---- tags ----

type tags struct{ *db }

func (s *tags) Create(_ context.Context, t *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tags {
		if existing.Slug == t.Slug || existing.Name == t.Name {
			return store.ErrConflict
		}
	}
	t.ID = s.next("tags")
	s.tags[t.ID] = *t
	return nil
}

func (s *tags) Get(_ context.Context, id int64) (*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *tags) GetMany(_ context.Context, ids []int64) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tag, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *tags) List(_ context.Context) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- ingredients ----

type ingredients struct{ *db }

func (s *ingredients) Create(_ context.Context, in *models.Ingredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.next("ingredients")
	s.ingredients[in.ID] = *in
	return nil
}

func (s *ingredients) Get(_ context.Context, id int64) (*models.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.ingredients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &in, nil
}

func (s *ingredients) GetMany(_ context.Context, ids []int64) ([]models.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ingredient, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if in, ok := s.ingredients[id]; ok {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *ingredients) Search(_ context.Context, prefix string) ([]models.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix = strings.ToLower(prefix)
	out := []models.Ingredient{}
	for _, in := range s.ingredients {
		if strings.HasPrefix(strings.ToLower(in.Name), prefix) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ---- recipes ----

type recipes struct{ *db }

func cloneRecipe(r models.Recipe) models.Recipe {
	r.TagIDs = append([]int64(nil), r.TagIDs...)
	r.Ingredients = append([]models.RecipeIngredient(nil), r.Ingredients...)
	return r
}

func (s *recipes) Create(_ context.Context, r *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.next("recipes")
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.recipes[r.ID] = cloneRecipe(*r)
	return nil
}

func (s *recipes) Update(_ context.Context, r *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.recipes[r.ID] = cloneRecipe(*r)
	return nil
}

func (s *recipes) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

func (s *recipes) Get(_ context.Context, id int64) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = cloneRecipe(r)
	return &r, nil
}

func (s *recipes) GetMany(_ context.Context, ids []int64) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.recipes[id]; ok {
			out = append(out, cloneRecipe(r))
		}
	}
	return out, nil
}

func (s *recipes) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.recipes[id]
	return ok, nil
}

func (s *recipes) List(_ context.Context, f store.RecipeFilter, page store.Page) ([]models.Recipe, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slugToID := map[string]int64{}
	for _, t := range s.tags {
		slugToID[t.Slug] = t.ID
	}
	wantTags := map[int64]bool{}
	for _, slug := range f.TagSlugs {
		if id, ok := slugToID[slug]; ok {
			wantTags[id] = true
		}
	}

	out := []models.Recipe{}
	for _, r := range s.recipes {
		if f.AuthorID != 0 && r.AuthorID != f.AuthorID {
			continue
		}
		if len(f.TagSlugs) > 0 && !hasAnyTag(r.TagIDs, wantTags) {
			continue
		}
		if f.FavoritedBy != 0 && indexOf(s.favorites, f.FavoritedBy, r.ID) < 0 {
			continue
		}
		if f.InCartOf != 0 && indexOf(s.cart, f.InCartOf, r.ID) < 0 {
			continue
		}
		if f.NameSearch != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.NameSearch)) {
			continue
		}
		out = append(out, cloneRecipe(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return paginate(out, page), int64(len(out)), nil
}

func hasAnyTag(ids []int64, want map[int64]bool) bool {
	for _, id := range ids {
		if want[id] {
			return true
		}
	}
	return false
}

func (s *recipes) CountByAuthor(_ context.Context, authorID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, r := range s.recipes {
		if r.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// ---- favorites / cart ----

type memberships struct {
	*db
	rows *[]models.Membership
}

func indexOf(rows []models.Membership, userID, recipeID int64) int {
	for i, m := range rows {
		if m.UserID == userID && m.RecipeID == recipeID {
			return i
		}
	}
	return -1
}

func (s *memberships) Add(_ context.Context, userID, recipeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(*s.rows, userID, recipeID) >= 0 {
		return store.ErrConflict
	}
	*s.rows = append(*s.rows, models.Membership{UserID: userID, RecipeID: recipeID, CreatedAt: time.Now()})
	return nil
}

func (s *memberships) Remove(_ context.Context, userID, recipeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(*s.rows, userID, recipeID)
	if i < 0 {
		return store.ErrNotFound
	}
	*s.rows = append((*s.rows)[:i], (*s.rows)[i+1:]...)
	return nil
}

func (s *memberships) Has(_ context.Context, userID, recipeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(*s.rows, userID, recipeID) >= 0, nil
}

func (s *memberships) RecipeIDs(_ context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []int64{}
	for _, m := range *s.rows {
		if m.UserID == userID {
			ids = append(ids, m.RecipeID)
		}
	}
	return ids, nil
}

func (s *memberships) CountForRecipe(_ context.Context, recipeID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range *s.rows {
		if m.RecipeID == recipeID {
			n++
		}
	}
	return n, nil
}

func (s *memberships) DeleteRecipe(_ context.Context, recipeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := (*s.rows)[:0]
	for _, m := range *s.rows {
		if m.RecipeID != recipeID {
			kept = append(kept, m)
		}
	}
	*s.rows = kept
	return nil
}

// ---- subscriptions ----

type subscriptions struct{ *db }

func (s *subscriptions) find(subscriberID, targetID int64) int {
	for i, sub := range s.subs {
		if sub.SubscriberID == subscriberID && sub.TargetID == targetID {
			return i
		}
	}
	return -1
}

func (s *subscriptions) Add(_ context.Context, subscriberID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(subscriberID, targetID) >= 0 {
		return store.ErrConflict
	}
	s.subs = append(s.subs, models.Subscription{SubscriberID: subscriberID, TargetID: targetID, CreatedAt: time.Now()})
	return nil
}

func (s *subscriptions) Remove(_ context.Context, subscriberID, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(subscriberID, targetID)
	if i < 0 {
		return store.ErrNotFound
	}
	s.subs = append(s.subs[:i], s.subs[i+1:]...)
	return nil
}

func (s *subscriptions) Has(_ context.Context, subscriberID, targetID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(subscriberID, targetID) >= 0, nil
}

func (s *subscriptions) Targets(_ context.Context, subscriberID int64, page store.Page) ([]int64, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []int64{}
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			ids = append(ids, sub.TargetID)
		}
	}
	return paginate(ids, page), int64(len(ids)), nil
}
