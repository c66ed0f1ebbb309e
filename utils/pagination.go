package utils

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"foodgram/store"
)

// Paginator implements page-number pagination with a ?limit= override.
type Paginator struct {
	PageSize    int
	MaxPageSize int
}

type PageRequest struct {
	Page  int
	Limit int
}

// Window converts the request to a store window.
func (p PageRequest) Window() store.Page {
	return store.Page{Offset: (p.Page - 1) * p.Limit, Limit: p.Limit}
}

// Parse reads ?page= and ?limit=, falling back to defaults on bad input.
func (pg Paginator) Parse(r *http.Request) PageRequest {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit < 1 {
		limit = pg.PageSize
	}
	if pg.MaxPageSize > 0 && limit > pg.MaxPageSize {
		limit = pg.MaxPageSize
	}
	// page*limit must fit in an int.
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return PageRequest{Page: page, Limit: limit}
}

// PageResponse is the paginated envelope.
type PageResponse struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

// NewPageResponse builds the envelope with absolute next/previous links.
func NewPageResponse(r *http.Request, req PageRequest, total int64, results any) PageResponse {
	resp := PageResponse{Count: total, Results: results}
	if int64(req.Page*req.Limit) < total {
		link := pageLink(r, req.Page+1)
		resp.Next = &link
	}
	if req.Page > 1 {
		link := pageLink(r, req.Page-1)
		resp.Previous = &link
	}
	return resp
}

func pageLink(r *http.Request, page int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
