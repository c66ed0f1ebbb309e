package utils

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/apperr"
	"foodgram/store"
)

func TestPaginatorParse(t *testing.T) {
	pg := Paginator{PageSize: 6, MaxPageSize: 50}
	tests := []struct {
		query string
		want  PageRequest
	}{
		{"", PageRequest{Page: 1, Limit: 6}},
		{"?page=3&limit=10", PageRequest{Page: 3, Limit: 10}},
		{"?page=-1&limit=abc", PageRequest{Page: 1, Limit: 6}},
		{"?limit=500", PageRequest{Page: 1, Limit: 50}},
		{"?page=9223372036854775807", PageRequest{Page: math.MaxInt / 6, Limit: 6}},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/recipes/"+tt.query, nil)
		if got := pg.Parse(r); got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
		}
	}
	if got := (PageRequest{Page: 3, Limit: 10}).Window(); got != (store.Page{Offset: 20, Limit: 10}) {
		t.Errorf("Window() = %+v", got)
	}
	huge := httptest.NewRequest(http.MethodGet, "/api/recipes/?page=3074457345618258603&limit=3", nil)
	if w := pg.Parse(huge).Window(); w.Offset < 0 {
		t.Errorf("Window() offset overflowed: %+v", w)
	}
}

func TestNewPageResponseLinks(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example.com/api/recipes/?page=2&limit=2&tags=lunch", nil)
	resp := NewPageResponse(r, PageRequest{Page: 2, Limit: 2}, 5, []int{3, 4})
	if resp.Next == nil || *resp.Next != "http://example.com/api/recipes/?limit=2&page=3&tags=lunch" {
		t.Errorf("next = %v", resp.Next)
	}
	if resp.Previous == nil || *resp.Previous != "http://example.com/api/recipes/?limit=2&tags=lunch" {
		t.Errorf("previous = %v", resp.Previous)
	}

	last := NewPageResponse(r, PageRequest{Page: 3, Limit: 2}, 5, []int{5})
	if last.Next != nil {
		t.Errorf("last page has next link %q", *last.Next)
	}
}

func TestRespondWithAppError(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/recipes/1/favorite/", nil)

	w := httptest.NewRecorder()
	RespondWithAppError(w, r, apperr.MissingMembership("Recipe"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] != "Recipe not found" {
		t.Errorf("body = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	RespondWithAppError(w, r, errors.New("mongo exploded"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}
