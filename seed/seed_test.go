package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"foodgram/memstore"
)

func TestLoadFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	data := `{
		"ingredients": [
			{"name": "flour", "measurement_unit": "g"},
			{"name": "flour", "measurement_unit": "kg"},
			{"name": "egg", "measurement_unit": "pcs"}
		],
		"tags": [
			{"name": "Breakfast", "slug": "breakfast"},
			{"name": "Dinner", "slug": "dinner"}
		]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	st := memstore.New()
	res, err := LoadFile(ctx, st, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ingredients != 3 || res.Tags != 2 {
		t.Fatalf("first load = %+v", res)
	}

	res, err = LoadFile(ctx, st, path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Ingredients != 0 || res.Tags != 0 {
		t.Fatalf("second load should add nothing, got %+v", res)
	}
}

func TestParseBareIngredientList(t *testing.T) {
	f, err := Parse([]byte(`[{"name": "salt", "measurement_unit": "g"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Ingredients) != 1 || f.Ingredients[0].MeasurementUnit != "g" {
		t.Fatalf("parsed %+v", f)
	}
}
