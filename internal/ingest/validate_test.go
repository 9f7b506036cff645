package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCandidate() Candidate {
	return Candidate{
		Name:        "Perplexity",
		Link:        "https://perplexity.ai",
		Description: "Answer engine",
		Category:    "Search",
	}
}

func TestValidateAcceptsCompleteCandidate(t *testing.T) {
	assert.Empty(t, Validate(validCandidate()))
}

func TestValidateRejectsPlainHTTPLink(t *testing.T) {
	c := validCandidate()
	c.Link = "http://example.com"
	assert.Equal(t, []string{"Link must start with https://"}, Validate(c))
}

func TestValidateDescriptionLength(t *testing.T) {
	c := validCandidate()
	c.Description = strings.Repeat("a", maxDescriptionLength)
	assert.Empty(t, Validate(c))

	c.Description = strings.Repeat("a", maxDescriptionLength+1)
	assert.Equal(t, []string{"Description must be 300 characters or less"}, Validate(c))
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	c := validCandidate()
	c.Description = strings.Repeat("é", maxDescriptionLength)
	assert.Empty(t, Validate(c))
}

func TestValidateAcceptsLongNameAndCategory(t *testing.T) {
	c := NewCandidate(Row{
		"name":        strings.Repeat("n", 256),
		"link":        "https://long.example",
		"description": "Long labels",
		"category":    strings.Repeat("c", 129),
	})
	assert.Empty(t, Validate(c))
}

func TestValidateReportsEveryViolation(t *testing.T) {
	got := Validate(Candidate{Name: "  ", Link: "ftp://x", Category: "\t"})
	assert.Equal(t, []string{
		"Name is required",
		"Link must start with https://",
		"Description is required",
		"Category is required",
	}, got)

	got = Validate(Candidate{})
	assert.Contains(t, got, "Link is required")
	assert.NotContains(t, got, "Link must start with https://")
}

func TestNewCandidateSplitsNamedFields(t *testing.T) {
	c := NewCandidate(Row{
		"name":      " Claude ",
		"link":      "https://claude.ai",
		"category":  "Chat",
		"pricing":   "Free",
		"createdAt": "1999-01-01",
	})
	assert.Equal(t, "Claude", c.Name)
	assert.Equal(t, map[string]string{"pricing": "Free"}, c.Extra)

	tool := c.Tool(time.Date(2024, 5, 1, 9, 0, 0, 0, time.FixedZone("CEST", 2*3600)))
	assert.Equal(t, time.UTC, tool.CreatedAt.Location())
	assert.Equal(t, 7, tool.CreatedAt.Hour())
}
