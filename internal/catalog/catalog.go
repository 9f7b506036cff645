// Package catalog answers the public listing queries over stored tools.
package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"toolshelf/internal/tools"
)

const DefaultPerPage = 20

type Query struct {
	Page     int
	Search   string
	Category string
	Sort     tools.Sort
}

// ParseQuery reads page, search, category and sort. A missing or unusable
// page becomes 1.
func ParseQuery(values url.Values) Query {
	q := Query{
		Page:     1,
		Search:   strings.TrimSpace(values.Get("search")),
		Category: strings.TrimSpace(values.Get("category")),
		Sort:     tools.ParseSort(strings.TrimSpace(values.Get("sort"))),
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			q.Page = value
		}
	}
	return q
}

type Page struct {
	Tools       []tools.Tool `json:"tools"`
	TotalCount  int64        `json:"total_count"`
	TotalPages  int          `json:"total_pages"`
	CurrentPage int          `json:"current_page"`
	PerPage     int          `json:"per_page"`
}

type Service struct {
	store   tools.Store
	perPage int
}

func New(store tools.Store, perPage int) *Service {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Service{store: store, perPage: perPage}
}

func (s *Service) PerPage() int {
	return s.perPage
}

func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	filter := tools.Filter{Search: q.Search, Category: q.Category}

	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	found, err := s.store.Find(ctx, filter, tools.FindOptions{
		Sort:  q.Sort,
		Skip:  (q.Page - 1) * s.perPage,
		Limit: s.perPage,
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []tools.Tool{}
	}
	return &Page{
		Tools:       found,
		TotalCount:  total,
		TotalPages:  totalPages(total, s.perPage),
		CurrentPage: q.Page,
		PerPage:     s.perPage,
	}, nil
}

// Categories lists every distinct category in ascending order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func totalPages(total int64, perPage int) int {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		return 1
	}
	return pages
}
