package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"toolshelf/internal/tools"
)

func TestBuildFilterEscapesSearch(t *testing.T) {
	filter := buildFilter(tools.Filter{Search: "C++", Category: "Code"})

	assert.Equal(t, "Code", filter[fieldCategory])
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	want := primitive.Regex{Pattern: `C\+\+`, Options: "i"}
	assert.Equal(t, bson.M{fieldName: want}, or[0])
	assert.Equal(t, bson.M{fieldDescription: want}, or[1])
}

func TestBuildFilterEmpty(t *testing.T) {
	assert.Empty(t, buildFilter(tools.Filter{}))
}

func TestFindOptions(t *testing.T) {
	byName := findOptions(tools.FindOptions{Sort: tools.SortName, Skip: 40, Limit: 20})
	assert.Equal(t, bson.D{{Key: fieldName, Value: 1}}, byName.Sort)
	require.NotNil(t, byName.Skip)
	assert.EqualValues(t, 40, *byName.Skip)
	require.NotNil(t, byName.Limit)
	assert.EqualValues(t, 20, *byName.Limit)

	recent := findOptions(tools.FindOptions{})
	assert.Equal(t, bson.D{{Key: fieldCreatedAt, Value: -1}}, recent.Sort)
	assert.Nil(t, recent.Skip)
}

func TestDocumentRoundTrip(t *testing.T) {
	created := time.Date(2024, 4, 4, 4, 4, 4, 0, time.UTC)
	doc := toDocument(&tools.Tool{
		Name:        "Suno",
		Link:        "https://suno.ai",
		Description: "Music generation",
		Category:    "Audio",
		CreatedAt:   created,
		Extra:       map[string]string{"pricing": "Free", "$where": "x", "name": "shadow"},
	})
	require.Len(t, doc, 6)
	assert.Equal(t, bson.E{Key: "pricing", Value: "Free"}, doc[5])

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	decoded["_id"] = primitive.NewObjectID()

	tool := fromDocument(decoded)
	assert.Equal(t, "Suno", tool.Name)
	assert.True(t, created.Equal(tool.CreatedAt))
	assert.Equal(t, map[string]string{"pricing": "Free"}, tool.Extra)
}

func TestFromDocumentReadsLegacyStringTimestamps(t *testing.T) {
	tool := fromDocument(bson.M{
		"name":      "Legacy",
		"createdAt": "2023-11-05T09:15:00.123456",
		"stars":     int32(5),
	})
	assert.Equal(t, time.Date(2023, 11, 5, 9, 15, 0, 123456000, time.UTC), tool.CreatedAt)
	assert.Equal(t, "5", tool.Extra["stars"])
}

func TestConfigOptions(t *testing.T) {
	cfg := DefaultConfig()
	for _, opt := range []ConfigOption{
		WithURI("mongodb://db:27017"),
		WithDatabase("catalog"),
		WithCollection(""),
		WithQueryTimeout(3 * time.Second),
	} {
		opt(&cfg)
	}
	assert.Equal(t, "mongodb://db:27017", cfg.URI)
	assert.Equal(t, "catalog", cfg.Database)
	assert.Equal(t, "tools", cfg.Collection)
	assert.Equal(t, 3*time.Second, cfg.QueryTimeout)
}
