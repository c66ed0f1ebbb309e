// Package seed loads reference ingredients and tags from a JSON fixture.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"foodgram/logging"
	"foodgram/models"
	"foodgram/store"
)

// Fixture is the file layout. A file holding a bare JSON array is read as
// a list of ingredients.
type Fixture struct {
	Ingredients []models.Ingredient `json:"ingredients"`
	Tags        []models.Tag        `json:"tags"`
}

type Result struct {
	Ingredients int
	Tags        int
}

func Parse(data []byte) (*Fixture, error) {
	data = bytes.TrimSpace(data)
	f := &Fixture{}
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &f.Ingredients); err != nil {
			return nil, fmt.Errorf("parse ingredient list: %w", err)
		}
		return f, nil
	}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// LoadFile reads path and loads it into st.
func LoadFile(ctx context.Context, st *store.Store, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return Result{}, err
	}
	return Load(ctx, st, f)
}

// Load inserts entries that are not present yet. Ingredients are matched on
// name and measurement unit, tags on the store's uniqueness rules.
func Load(ctx context.Context, st *store.Store, f *Fixture) (Result, error) {
	var res Result
	for _, in := range f.Ingredients {
		in.Name = strings.TrimSpace(in.Name)
		in.MeasurementUnit = strings.TrimSpace(in.MeasurementUnit)
		if in.Name == "" {
			continue
		}
		exists, err := ingredientExists(ctx, st.Ingredients, in)
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		in.ID = 0
		if err := st.Ingredients.Create(ctx, &in); err != nil {
			return res, fmt.Errorf("create ingredient %q: %w", in.Name, err)
		}
		res.Ingredients++
	}

	for _, t := range f.Tags {
		t.ID = 0
		if err := st.Tags.Create(ctx, &t); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return res, fmt.Errorf("create tag %q: %w", t.Slug, err)
		}
		res.Tags++
	}

	logging.Info().Int("ingredients", res.Ingredients).Int("tags", res.Tags).Msg("fixture loaded")
	return res, nil
}

func ingredientExists(ctx context.Context, ingredients store.Ingredients, in models.Ingredient) (bool, error) {
	matches, err := ingredients.Search(ctx, in.Name)
	if err != nil {
		return false, fmt.Errorf("search ingredient %q: %w", in.Name, err)
	}
	for _, m := range matches {
		if m.Name == in.Name && m.MeasurementUnit == in.MeasurementUnit {
			return true, nil
		}
	}
	return false, nil
}
