package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"toolshelf/internal/tools"
)

// ToolStore is the Postgres implementation of tools.Store.
type ToolStore struct {
	conn         *gorm.DB
	queryTimeout time.Duration
}

func NewToolStore(conn *gorm.DB, queryTimeout time.Duration) *ToolStore {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &ToolStore{conn: conn, queryTimeout: queryTimeout}
}

func (s *ToolStore) FindByName(ctx context.Context, name string) (*tools.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var row ToolRow
	err := s.conn.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tools.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tool := row.tool()
	return &tool, nil
}

func (s *ToolStore) Insert(ctx context.Context, tool *tools.Tool) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := toRow(tool)
	if err != nil {
		return err
	}
	result := s.conn.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&row)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return tools.ErrDuplicate
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return tools.ErrDuplicate
	}
	return nil
}

func (s *ToolStore) Count(ctx context.Context, filter tools.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var total int64
	err := s.conn.WithContext(ctx).Model(&ToolRow{}).Scopes(filterScope(filter)).Count(&total).Error
	return total, err
}

func (s *ToolStore) Find(ctx context.Context, filter tools.Filter, opts tools.FindOptions) ([]tools.Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	query := s.conn.WithContext(ctx).Model(&ToolRow{}).Scopes(filterScope(filter)).Order(sortOrder(opts.Sort))
	if opts.Skip > 0 {
		query = query.Offset(opts.Skip)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var rows []ToolRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	found := make([]tools.Tool, 0, len(rows))
	for _, row := range rows {
		found = append(found, row.tool())
	}
	return found, nil
}

func (s *ToolStore) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	categories := []string{}
	err := s.conn.WithContext(ctx).Model(&ToolRow{}).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error
	return categories, err
}

func filterScope(filter tools.Filter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			pattern := "%" + escapeLike(filter.Search) + "%"
			tx = tx.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
		}
		if filter.Category != "" {
			tx = tx.Where("category = ?", filter.Category)
		}
		return tx
	}
}

func sortOrder(sort tools.Sort) string {
	if sort == tools.SortName {
		return "name asc"
	}
	return "created_at desc, id desc"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes every character of s match literally in a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ tools.Store = (*ToolStore)(nil)
