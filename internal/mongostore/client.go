// Package mongostore keeps tools in a MongoDB collection.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config contains MongoDB connection configuration.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	MaxPoolSize    uint64
}

func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "ai_tools_db",
		Collection:     "tools",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   10 * time.Second,
		MaxPoolSize:    20,
	}
}

type ConfigOption func(*Config)

func WithURI(uri string) ConfigOption {
	return func(c *Config) {
		c.URI = uri
	}
}

func WithDatabase(db string) ConfigOption {
	return func(c *Config) {
		if db != "" {
			c.Database = db
		}
	}
}

func WithCollection(name string) ConfigOption {
	return func(c *Config) {
		if name != "" {
			c.Collection = name
		}
	}
}

func WithQueryTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.QueryTimeout = d
		}
	}
}

func WithConnectTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		if d > 0 {
			c.ConnectTimeout = d
		}
	}
}

// Client wraps a connected MongoDB client.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	config   Config
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, opts ...ConfigOption) (*Client, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Client{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (c *Client) Collection() *mongo.Collection {
	return c.database.Collection(c.config.Collection)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates the name, category and createdAt indexes. The unique
// name index turns a concurrent duplicate insert into a duplicate-key error.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: fieldName, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: fieldCategory, Value: 1}},
		},
		{
			Keys: bson.D{{Key: fieldCreatedAt, Value: -1}},
		},
	}
	_, err := c.Collection().Indexes().CreateMany(ctx, indexes)
	return err
}
