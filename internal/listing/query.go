// Package listing holds the state of the merchant console list pages and the
// debouncing used by their live search.
package listing

import (
	"net/url"
	"strconv"
	"strings"

	"pix-storefront/internal/model"
)

// Query is the search, filter and page state of an admin list. Changing the
// search or a filter always goes back to page 1.
type Query struct {
	Search  string
	Status  string
	UserID  int64
	Page    int
	PerPage int
}

func NewQuery(perPage int) Query {
	return Query{Page: 1, PerPage: perPage}
}

// FromValues reads a query from request parameters.
func FromValues(v url.Values, perPage int) Query {
	q := NewQuery(perPage)
	q.Search = strings.TrimSpace(v.Get("search"))
	q.Status = v.Get("status")
	if id, err := strconv.ParseInt(v.Get("user_id"), 10, 64); err == nil && id > 0 {
		q.UserID = id
	}
	if page, err := strconv.Atoi(v.Get("page")); err == nil {
		q = q.WithPage(page)
	}
	return q
}

func (q Query) WithSearch(search string) Query {
	search = strings.TrimSpace(search)
	if search != q.Search {
		q.Search = search
		q.Page = 1
	}
	return q
}

func (q Query) WithStatus(status string) Query {
	if status != q.Status {
		q.Status = status
		q.Page = 1
	}
	return q
}

func (q Query) WithUserID(id int64) Query {
	if id != q.UserID {
		q.UserID = id
		q.Page = 1
	}
	return q
}

func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

func (q Query) Params() model.ListParams {
	return model.ListParams{
		Page:    q.Page,
		PerPage: q.PerPage,
		Search:  q.Search,
		Status:  q.Status,
		UserID:  q.UserID,
	}
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.UserID > 0 {
		v.Set("user_id", strconv.FormatInt(q.UserID, 10))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// URL links base with the query applied, keeping the current filters.
func (q Query) URL(base string) string {
	if enc := q.Values().Encode(); enc != "" {
		return base + "?" + enc
	}
	return base
}

// PageLink is one entry of the pagination bar.
type PageLink struct {
	Page    int
	URL     string
	Current bool
}

// Pages builds the pagination bar for totalPages, a window of pages around
// the current one.
func (q Query) Pages(base string, totalPages int) []PageLink {
	if totalPages <= 1 {
		return nil
	}
	const window = 2
	from, to := q.Page-window, q.Page+window
	if from < 1 {
		from = 1
	}
	if to > totalPages {
		to = totalPages
	}

	links := make([]PageLink, 0, to-from+1)
	for p := from; p <= to; p++ {
		links = append(links, PageLink{Page: p, URL: q.WithPage(p).URL(base), Current: p == q.Page})
	}
	return links
}
