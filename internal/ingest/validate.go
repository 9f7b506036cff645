package ingest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"toolshelf/internal/tools"
)

const maxDescriptionLength = 300

// Candidate is a parsed row split into the named tool fields and whatever
// else the upload carried.
type Candidate struct {
	Name        string `validate:"notblank"`
	Link        string `validate:"notblank,startswith=https://"`
	Description string `validate:"notblank,max=300"`
	Category    string `validate:"notblank"`
	Extra       map[string]string
}

// NewCandidate trims the named fields out of row and keeps the rest as-is.
func NewCandidate(row Row) Candidate {
	c := Candidate{}
	for key, value := range row {
		switch key {
		case "name":
			c.Name = strings.TrimSpace(value)
		case "link":
			c.Link = strings.TrimSpace(value)
		case "description":
			c.Description = strings.TrimSpace(value)
		case "category":
			c.Category = strings.TrimSpace(value)
		case "", "createdAt", "_id":
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]string)
			}
			c.Extra[key] = value
		}
	}
	return c
}

// Tool stamps the candidate with its creation time.
func (c Candidate) Tool(createdAt time.Time) tools.Tool {
	return tools.Tool{
		Name:        c.Name,
		Link:        c.Link,
		Description: c.Description,
		Category:    c.Category,
		CreatedAt:   createdAt.UTC(),
		Extra:       c.Extra,
	}
}

type fieldMessages map[string]map[string]string

var candidateMessages = fieldMessages{
	"Name": {
		"notblank": "Name is required",
	},
	"Link": {
		"notblank":   "Link is required",
		"startswith": "Link must start with https://",
	},
	"Description": {
		"notblank": "Description is required",
		"max":      "Description must be 300 characters or less",
	},
	"Category": {
		"notblank": "Category is required",
	},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func candidateValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// Validate returns every rule the candidate breaks, in field order. An empty
// result means the candidate can be stored.
func Validate(c Candidate) []string {
	err := candidateValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(verrs))
	for _, verr := range verrs {
		if msg, ok := candidateMessages[verr.Field()][verr.Tag()]; ok {
			messages = append(messages, msg)
			continue
		}
		messages = append(messages, verr.Field()+" is invalid")
	}
	return messages
}
