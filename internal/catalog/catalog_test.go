package catalog

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"toolshelf/internal/memstore"
	"toolshelf/internal/tools"
)

func seededStore(n int) *memstore.Store {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := make([]tools.Tool, 0, n)
	for i := 0; i < n; i++ {
		seed = append(seed, tools.Tool{
			Name:        fmt.Sprintf("Tool %02d", i),
			Link:        "https://example.com",
			Description: "Generic helper",
			Category:    []string{"Chat", "Code"}[i%2],
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	return memstore.New(seed...)
}

func TestParseQueryDefaults(t *testing.T) {
	q := ParseQuery(url.Values{})
	if q.Page != 1 || q.Search != "" || q.Category != "" || q.Sort != tools.SortRecent {
		t.Fatalf("unexpected defaults: %#v", q)
	}

	q = ParseQuery(url.Values{"page": {"abc"}, "sort": {"name"}, "search": {"  gpt "}, "category": {" Chat "}})
	if q.Page != 1 {
		t.Fatalf("expected invalid page to fall back to 1, got %d", q.Page)
	}
	if q.Sort != tools.SortName || q.Search != "gpt" || q.Category != "Chat" {
		t.Fatalf("unexpected query: %#v", q)
	}

	if q := ParseQuery(url.Values{"page": {"-3"}}); q.Page != 1 {
		t.Fatalf("expected negative page to fall back to 1, got %d", q.Page)
	}
}

func TestListPaginates(t *testing.T) {
	svc := New(seededStore(45), 0)

	page, err := svc.List(context.Background(), Query{Page: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 45 || page.TotalPages != 3 || page.CurrentPage != 3 || page.PerPage != DefaultPerPage {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
	if len(page.Tools) != 5 {
		t.Fatalf("expected 5 tools on last page, got %d", len(page.Tools))
	}
	if page.Tools[0].Name != "Tool 04" {
		t.Fatalf("expected newest-first ordering, got %q", page.Tools[0].Name)
	}
}

func TestListEmptyStoreHasOnePage(t *testing.T) {
	page, err := New(memstore.New(), 20).List(context.Background(), Query{Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalPages != 1 || page.Tools == nil || len(page.Tools) != 0 {
		t.Fatalf("unexpected empty page: %+v", page)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	store := memstore.New(
		tools.Tool{Name: "Zapier", Description: "Automation with GPT steps", Category: "Automation"},
		tools.Tool{Name: "ChatGPT", Description: "Assistant", Category: "Chat"},
		tools.Tool{Name: "C++ Insights", Description: "Compiler view", Category: "Code"},
		tools.Tool{Name: "Anki", Description: "Flashcards", Category: "Education"},
	)
	svc := New(store, 10)

	page, err := svc.List(context.Background(), Query{Page: 1, Search: "gpt", Sort: tools.SortName})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Tools) != 2 || page.Tools[0].Name != "ChatGPT" || page.Tools[1].Name != "Zapier" {
		t.Fatalf("unexpected search results: %+v", page.Tools)
	}

	page, err = svc.List(context.Background(), Query{Page: 1, Search: "C++"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("expected literal match for C++, got %d", page.TotalCount)
	}

	page, err = svc.List(context.Background(), Query{Page: 1, Category: "Education"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 1 || page.Tools[0].Name != "Anki" {
		t.Fatalf("unexpected category results: %+v", page.Tools)
	}
}

func TestCategories(t *testing.T) {
	categories, err := New(seededStore(4), 20).Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "Chat" || categories[1] != "Code" {
		t.Fatalf("unexpected categories: %v", categories)
	}
}
