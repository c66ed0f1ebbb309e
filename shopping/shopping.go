// Package shopping turns a user's cart into a printable shopping list.
package shopping

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"foodgram/store"

	"github.com/phpdave11/gofpdf"
)

// Row is one recipe-ingredient entry projected to its display fields.
type Row struct {
	Name   string
	Unit   string
	Amount int64
}

// Line is a merged entry of the shopping list.
type Line struct {
	Name   string
	Unit   string
	Amount int64
}

type key struct{ name, unit string }

// Aggregate merges rows sharing (name, unit), sums their amounts and orders
// the result by name then unit, comparing bytes.
func Aggregate(rows []Row) []Line {
	sums := make(map[key]int64)
	for _, r := range rows {
		sums[key{r.Name, r.Unit}] += r.Amount
	}
	lines := make([]Line, 0, len(sums))
	for k, sum := range sums {
		lines = append(lines, Line{Name: k.name, Unit: k.unit, Amount: sum})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Name != lines[j].Name {
			return lines[i].Name < lines[j].Name
		}
		return lines[i].Unit < lines[j].Unit
	})
	return lines
}

func (l Line) format(i int) string {
	return strconv.Itoa(i) + ". " + l.Name + " - " + strconv.FormatInt(l.Amount, 10) + " " + l.Unit + "."
}

// Render formats lines as "{i}. {name} - {sum} {unit}." joined by newlines,
// with no trailing newline. No lines render as an empty body.
func Render(lines []Line) []byte {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.format(i + 1)
	}
	return []byte(strings.Join(out, "\n"))
}

// RenderPDF lays out the same lines on A4 pages.
func RenderPDF(lines []Line) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Shopping list")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	for i, l := range lines {
		pdf.Cell(0, 8, tr(l.format(i+1)))
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Build loads the recipes in the user's cart and aggregates their
// ingredients.
func Build(ctx context.Context, st *store.Store, userID int64) ([]Line, error) {
	recipeIDs, err := st.Cart.RecipeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart recipes: %w", err)
	}
	if len(recipeIDs) == 0 {
		return nil, nil
	}
	recipes, err := st.Recipes.GetMany(ctx, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	seen := make(map[int64]struct{})
	var ingredientIDs []int64
	for i := range recipes {
		for _, id := range recipes[i].IngredientIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ingredientIDs = append(ingredientIDs, id)
			}
		}
	}
	ingredients, err := st.Ingredients.GetMany(ctx, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("load ingredients: %w", err)
	}
	byID := make(map[int64]Row, len(ingredients))
	for _, in := range ingredients {
		byID[in.ID] = Row{Name: in.Name, Unit: in.MeasurementUnit}
	}

	var rows []Row
	for i := range recipes {
		for _, ri := range recipes[i].Ingredients {
			row, ok := byID[ri.IngredientID]
			if !ok {
				continue
			}
			row.Amount = ri.Amount
			rows = append(rows, row)
		}
	}
	return Aggregate(rows), nil
}
