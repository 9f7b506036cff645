package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"toolshelf/internal/tools"
)

const (
	fieldName        = "name"
	fieldLink        = "link"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldCreatedAt   = "createdAt"
)

// Store is the MongoDB implementation of tools.Store. Documents are flat:
// the named fields plus any residual upload keys at the top level.
type Store struct {
	collection   *mongo.Collection
	queryTimeout time.Duration
}

func NewStore(client *Client) *Store {
	return &Store{
		collection:   client.Collection(),
		queryTimeout: client.config.QueryTimeout,
	}
}

func (s *Store) FindByName(ctx context.Context, name string) (*tools.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var doc bson.M
	err := s.collection.FindOne(ctx, bson.M{fieldName: name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, tools.ErrNotFound
	}
	if err != nil {
		return nil, s.wrapError(err)
	}
	tool := fromDocument(doc)
	return &tool, nil
}

func (s *Store) Insert(ctx context.Context, tool *tools.Tool) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, toDocument(tool))
	if mongo.IsDuplicateKeyError(err) {
		return tools.ErrDuplicate
	}
	return s.wrapError(err)
}

func (s *Store) Count(ctx context.Context, filter tools.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	total, err := s.collection.CountDocuments(ctx, buildFilter(filter))
	return total, s.wrapError(err)
}

func (s *Store) Find(ctx context.Context, filter tools.Filter, opts tools.FindOptions) ([]tools.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, buildFilter(filter), findOptions(opts))
	if err != nil {
		return nil, s.wrapError(err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	found := []tools.Tool{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, s.wrapError(err)
		}
		found = append(found, fromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, s.wrapError(err)
	}
	return found, nil
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	values, err := s.collection.Distinct(ctx, fieldCategory, bson.M{})
	if err != nil {
		return nil, s.wrapError(err)
	}
	categories := make([]string, 0, len(values))
	for _, value := range values {
		if category, ok := value.(string); ok {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *Store) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("mongo query timed out after %s: %w", s.queryTimeout, err)
	}
	return fmt.Errorf("mongo: %w", err)
}

func buildFilter(filter tools.Filter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{fieldName: pattern},
			bson.M{fieldDescription: pattern},
		}
	}
	if filter.Category != "" {
		query[fieldCategory] = filter.Category
	}
	return query
}

func findOptions(opts tools.FindOptions) *options.FindOptions {
	find := options.Find()
	if opts.Sort == tools.SortName {
		find.SetSort(bson.D{{Key: fieldName, Value: 1}})
	} else {
		find.SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}})
	}
	if opts.Skip > 0 {
		find.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}
	return find
}

func toDocument(tool *tools.Tool) bson.D {
	doc := bson.D{
		{Key: fieldName, Value: tool.Name},
		{Key: fieldLink, Value: tool.Link},
		{Key: fieldDescription, Value: tool.Description},
		{Key: fieldCategory, Value: tool.Category},
		{Key: fieldCreatedAt, Value: tool.CreatedAt.UTC()},
	}
	keys := make([]string, 0, len(tool.Extra))
	for key := range tool.Extra {
		if isReserved(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		doc = append(doc, bson.E{Key: key, Value: tool.Extra[key]})
	}
	return doc
}

// fromDocument also reads documents written by the earlier loader, which
// stored createdAt as an ISO string.
func fromDocument(doc bson.M) tools.Tool {
	tool := tools.Tool{}
	for key, value := range doc {
		switch key {
		case "_id":
		case fieldName:
			tool.Name = stringValue(value)
		case fieldLink:
			tool.Link = stringValue(value)
		case fieldDescription:
			tool.Description = stringValue(value)
		case fieldCategory:
			tool.Category = stringValue(value)
		case fieldCreatedAt:
			tool.CreatedAt = timeValue(value)
		default:
			if tool.Extra == nil {
				tool.Extra = make(map[string]string)
			}
			tool.Extra[key] = stringValue(value)
		}
	}
	return tool
}

func isReserved(key string) bool {
	switch key {
	case "", "_id", fieldName, fieldLink, fieldDescription, fieldCategory, fieldCreatedAt:
		return true
	}
	return key[0] == '$'
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func timeValue(value any) time.Time {
	switch v := value.(type) {
	case primitive.DateTime:
		return v.Time().UTC()
	case time.Time:
		return v.UTC()
	case string:
		if ts, err := tools.ParseTimestamp(v); err == nil {
			return ts
		}
	}
	return time.Time{}
}

var _ tools.Store = (*Store)(nil)
