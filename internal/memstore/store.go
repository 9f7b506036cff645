// Package memstore keeps tools in process memory. It backs local runs without
// a database and the tests of everything built on tools.Store.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"toolshelf/internal/tools"
)

type Store struct {
	mu    sync.Mutex
	tools []tools.Tool
	names map[string]int
}

func New(seed ...tools.Tool) *Store {
	s := &Store{names: make(map[string]int)}
	for _, tool := range seed {
		s.tools = append(s.tools, clone(tool))
		s.names[tool.Name] = len(s.tools) - 1
	}
	return s
}

func (s *Store) FindByName(ctx context.Context, name string) (*tools.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.names[name]
	if !ok {
		return nil, tools.ErrNotFound
	}
	tool := clone(s.tools[idx])
	return &tool, nil
}

func (s *Store) Insert(ctx context.Context, tool *tools.Tool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[tool.Name]; ok {
		return tools.ErrDuplicate
	}
	s.tools = append(s.tools, clone(*tool))
	s.names[tool.Name] = len(s.tools) - 1
	return nil
}

func (s *Store) Count(ctx context.Context, filter tools.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, tool := range s.tools {
		if matches(tool, filter) {
			count++
		}
	}
	return count, nil
}

func (s *Store) Find(ctx context.Context, filter tools.Filter, opts tools.FindOptions) ([]tools.Tool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	var found []tools.Tool
	for _, tool := range s.tools {
		if matches(tool, filter) {
			found = append(found, clone(tool))
		}
	}
	s.mu.Unlock()

	switch opts.Sort {
	case tools.SortName:
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].Name < found[j].Name
		})
	default:
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].CreatedAt.After(found[j].CreatedAt)
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(found) {
			return []tools.Tool{}, nil
		}
		found = found[opts.Skip:]
	}
	if opts.Limit > 0 && len(found) > opts.Limit {
		found = found[:opts.Limit]
	}
	if found == nil {
		found = []tools.Tool{}
	}
	return found, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{})
	categories := []string{}
	for _, tool := range s.tools {
		if _, ok := seen[tool.Category]; ok {
			continue
		}
		seen[tool.Category] = struct{}{}
		categories = append(categories, tool.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// Len reports how many tools are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tools)
}

func matches(tool tools.Tool, filter tools.Filter) bool {
	if filter.Category != "" && tool.Category != filter.Category {
		return false
	}
	if filter.Search == "" {
		return true
	}
	needle := strings.ToLower(filter.Search)
	return strings.Contains(strings.ToLower(tool.Name), needle) ||
		strings.Contains(strings.ToLower(tool.Description), needle)
}

func clone(tool tools.Tool) tools.Tool {
	if tool.Extra != nil {
		extra := make(map[string]string, len(tool.Extra))
		for key, value := range tool.Extra {
			extra[key] = value
		}
		tool.Extra = extra
	}
	return tool
}

var _ tools.Store = (*Store)(nil)
