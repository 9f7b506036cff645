package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendAuto     = "auto"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port                     string
	StoreBackend             string
	DatabaseURL              string
	MongoURI                 string
	MongoDatabase            string
	MongoCollection          string
	AdminSecret              string
	ToolsPerPage             int
	MaxUploadBytes           int64
	StoreQueryTimeoutSeconds int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	LogLevel                 string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		StoreBackend:             BackendAuto,
		MongoDatabase:            "ai_tools_db",
		MongoCollection:          "tools",
		ToolsPerPage:             20,
		MaxUploadBytes:           10 << 20,
		StoreQueryTimeoutSeconds: 10,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		LogLevel:                 "info",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("STORE_BACKEND"); raw != "" {
		cfg.StoreBackend = strings.ToLower(strings.TrimSpace(raw))
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("MONGODB_URI"); raw != "" {
		cfg.MongoURI = raw
	} else if raw := os.Getenv("MONGO_URI"); raw != "" {
		cfg.MongoURI = raw
	}
	if raw := os.Getenv("MONGODB_DATABASE"); raw != "" {
		cfg.MongoDatabase = raw
	}
	if raw := os.Getenv("MONGODB_COLLECTION"); raw != "" {
		cfg.MongoCollection = raw
	}
	if raw := os.Getenv("ADMIN_SECRET"); raw != "" {
		cfg.AdminSecret = raw
	}
	if raw := os.Getenv("TOOLS_PER_PAGE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ToolsPerPage = value
		}
	}
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		if value, err := strconv.ParseInt(raw, 10, 64); err == nil && value > 0 {
			cfg.MaxUploadBytes = value
		}
	}
	if raw := os.Getenv("STORE_QUERY_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.StoreQueryTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	return cfg
}

// Backend resolves "auto" to the store the connection settings point at:
// MongoDB first, then Postgres, then memory.
func (c Config) Backend() (string, error) {
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return "", fmt.Errorf("STORE_BACKEND=mongo requires MONGODB_URI")
		}
		return BackendMongo, nil
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return "", fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
		return BackendPostgres, nil
	case BackendMemory:
		return BackendMemory, nil
	case BackendAuto, "":
		switch {
		case c.MongoURI != "":
			return BackendMongo, nil
		case c.DatabaseURL != "":
			return BackendPostgres, nil
		default:
			return BackendMemory, nil
		}
	default:
		return "", fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
}

func (c Config) StoreQueryTimeout() time.Duration {
	return time.Duration(c.StoreQueryTimeoutSeconds) * time.Second
}
