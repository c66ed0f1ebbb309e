package shopping

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"foodgram/memstore"
	"foodgram/models"
)

func TestAggregateMergesByNameAndUnit(t *testing.T) {
	rows := []Row{
		{Name: "flour", Unit: "g", Amount: 200},
		{Name: "egg", Unit: "pcs", Amount: 2},
		{Name: "flour", Unit: "g", Amount: 100},
		{Name: "flour", Unit: "kg", Amount: 1},
	}
	got := Aggregate(rows)
	want := []Line{
		{Name: "egg", Unit: "pcs", Amount: 2},
		{Name: "flour", Unit: "g", Amount: 300},
		{Name: "flour", Unit: "kg", Amount: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAggregateSortsBytewise(t *testing.T) {
	got := Aggregate([]Row{
		{Name: "яблоко", Unit: "шт", Amount: 1},
		{Name: "apple", Unit: "pcs", Amount: 1},
		{Name: "Zucchini", Unit: "pcs", Amount: 1},
	})
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	want := []string{"Zucchini", "apple", "яблоко"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestAggregateSumsWithoutOverflowAtLimits(t *testing.T) {
	var rows []Row
	for i := 0; i < 1000; i++ {
		rows = append(rows, Row{Name: "salt", Unit: "g", Amount: models.MaxAmount})
	}
	got := Aggregate(rows)
	if len(got) != 1 || got[0].Amount != 1000*models.MaxAmount {
		t.Fatalf("got %+v", got)
	}
}

func TestRender(t *testing.T) {
	if out := Render(nil); len(out) != 0 {
		t.Fatalf("empty list rendered %q", out)
	}
	out := Render([]Line{
		{Name: "egg", Unit: "pcs", Amount: 2},
		{Name: "flour", Unit: "g", Amount: 300},
	})
	if string(out) != "1. egg - 2 pcs.\n2. flour - 300 g." {
		t.Fatalf("Render = %q", out)
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF([]Line{{Name: "egg", Unit: "pcs", Amount: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestBuildFromCart(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	flour := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	egg := &models.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	// A second record with the same name and unit merges with the first.
	flourDup := &models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	for _, in := range []*models.Ingredient{flour, egg, flourDup} {
		if err := st.Ingredients.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	a := &models.Recipe{AuthorID: 1, Name: "A", Ingredients: []models.RecipeIngredient{
		{IngredientID: flour.ID, Amount: 200},
		{IngredientID: egg.ID, Amount: 2},
	}}
	b := &models.Recipe{AuthorID: 1, Name: "B", Ingredients: []models.RecipeIngredient{
		{IngredientID: flourDup.ID, Amount: 100},
	}}
	c := &models.Recipe{AuthorID: 1, Name: "C", Ingredients: []models.RecipeIngredient{
		{IngredientID: egg.ID, Amount: 50},
	}}
	for _, r := range []*models.Recipe{a, b, c} {
		if err := st.Recipes.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	lines, err := Build(ctx, st, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Fatalf("empty cart produced %+v", lines)
	}

	for _, id := range []int64{a.ID, b.ID} {
		if err := st.Cart.Add(ctx, 7, id); err != nil {
			t.Fatal(err)
		}
	}
	lines, err = Build(ctx, st, 7)
	if err != nil {
		t.Fatal(err)
	}
	got := string(Render(lines))
	if got != "1. egg - 2 pcs.\n2. flour - 300 g." {
		t.Fatalf("shopping list = %q", got)
	}
	if strings.Count(got, "\n")+1 != 2 {
		t.Fatalf("expected two lines, got %q", got)
	}
}
