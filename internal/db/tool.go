package db

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"toolshelf/internal/tools"
)

type ToolRow struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"type:text;not null;uniqueIndex"`
	Link        string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text;not null"`
	Category    string         `gorm:"type:text;not null;index"`
	Extra       datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt   time.Time      `gorm:"not null;index"`
}

func (ToolRow) TableName() string {
	return "tools"
}

func toRow(tool *tools.Tool) (ToolRow, error) {
	extra := []byte("{}")
	if len(tool.Extra) > 0 {
		raw, err := json.Marshal(tool.Extra)
		if err != nil {
			return ToolRow{}, err
		}
		extra = raw
	}
	return ToolRow{
		Name:        tool.Name,
		Link:        tool.Link,
		Description: tool.Description,
		Category:    tool.Category,
		Extra:       datatypes.JSON(extra),
		CreatedAt:   tool.CreatedAt,
	}, nil
}

func (r ToolRow) tool() tools.Tool {
	tool := tools.Tool{
		Name:        r.Name,
		Link:        r.Link,
		Description: r.Description,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if len(r.Extra) > 0 {
		var extra map[string]string
		if err := json.Unmarshal(r.Extra, &extra); err == nil && len(extra) > 0 {
			tool.Extra = extra
		}
	}
	return tool
}
