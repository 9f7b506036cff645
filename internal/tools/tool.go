// Package tools holds the tool record and the storage contract shared by the
// ingestion pipeline, the catalog queries and every store backend.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("tool not found")
	ErrDuplicate = errors.New("tool already exists")
)

// Tool is a catalog entry. Extra carries uploaded keys beyond the four named
// fields; they are stored and returned as-is.
type Tool struct {
	Name        string
	Link        string
	Description string
	Category    string
	CreatedAt   time.Time
	Extra       map[string]string
}

// MarshalJSON renders the tool as one flat object. Named fields win over
// residual keys with the same name.
func (t Tool) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Extra)+5)
	for key, value := range t.Extra {
		out[key] = value
	}
	out["name"] = t.Name
	out["link"] = t.Link
	out["description"] = t.Description
	out["category"] = t.Category
	if !t.CreatedAt.IsZero() {
		out["createdAt"] = FormatTimestamp(t.CreatedAt)
	}
	return json.Marshal(out)
}

// FormatTimestamp renders createdAt values as ISO-8601 in UTC.
func FormatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp accepts RFC 3339 and the zone-less ISO form older records
// were written with.
func ParseTimestamp(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02T15:04:05.999999999", raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

type Sort int

const (
	SortRecent Sort = iota
	SortName
)

// ParseSort maps the sort query parameter; anything but "name" is recent-first.
func ParseSort(raw string) Sort {
	if raw == "name" {
		return SortName
	}
	return SortRecent
}

func (s Sort) String() string {
	if s == SortName {
		return "name"
	}
	return "recent"
}

// Filter narrows a listing. Search is a case-insensitive literal substring
// matched against name or description; Category is an exact match.
type Filter struct {
	Search   string
	Category string
}

type FindOptions struct {
	Sort  Sort
	Skip  int
	Limit int
}

// Store is the document store the catalog runs on.
type Store interface {
	// FindByName returns ErrNotFound when no tool has the given name.
	FindByName(ctx context.Context, name string) (*Tool, error)
	// Insert returns ErrDuplicate when the backend detects a name conflict.
	Insert(ctx context.Context, tool *Tool) error
	Count(ctx context.Context, filter Filter) (int64, error)
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]Tool, error)
	Categories(ctx context.Context) ([]string, error)
}
