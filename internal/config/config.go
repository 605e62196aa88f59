package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Platform PlatformConfig
	Search   SearchConfig
	Flags    FlagsConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	LogLevel string
}

type ServerConfig struct {
	Port string
	Host string
}

type APIConfig struct {
	APIKey            string
	JWTSecret         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// PlatformConfig drives the yt-dlp adapter.
type PlatformConfig struct {
	YtdlpPath      string
	DownloadsDir   string
	Workers        int
	CommandTimeout time.Duration
	PlaylistLimit  int
}

type SearchConfig struct {
	InvidiousURL string
	Timeout      time.Duration
}

type FlagsConfig struct {
	Backend string // static, mongo or postgres
	Enabled []int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	Timeout  time.Duration
}

const (
	FlagBackendStatic   = "static"
	FlagBackendMongo    = "mongo"
	FlagBackendPostgres = "postgres"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")

	// API configuration
	cfg.API.APIKey = getEnv("API_KEY", "")
	cfg.API.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.API.RateLimitRequests = getEnvInt("RATE_LIMIT_REQUESTS", 100)
	rateLimitWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	cfg.API.RateLimitWindow = rateLimitWindow
	if cfg.API.APIKey == "" && cfg.API.JWTSecret == "" {
		return nil, fmt.Errorf("at least one of API_KEY or JWT_SECRET must be set")
	}

	// Platform configuration
	cfg.Platform.YtdlpPath = getEnv("YTDLP_PATH", "yt-dlp")
	cfg.Platform.DownloadsDir = getEnv("DOWNLOADS_DIR", "downloads")
	cfg.Platform.Workers = getEnvInt("DOWNLOAD_WORKERS", 4)
	commandTimeout, err := time.ParseDuration(getEnv("COMMAND_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMAND_TIMEOUT: %w", err)
	}
	cfg.Platform.CommandTimeout = commandTimeout
	cfg.Platform.PlaylistLimit = getEnvInt("PLAYLIST_LIMIT", 25)

	// Search configuration
	cfg.Search.InvidiousURL = strings.TrimRight(getEnv("INVIDIOUS_URL", "https://yewtu.be"), "/")
	searchTimeout, err := time.ParseDuration(getEnv("SEARCH_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_TIMEOUT: %w", err)
	}
	cfg.Search.Timeout = searchTimeout

	// Feature flag configuration
	cfg.Flags.Backend = getEnv("FLAG_BACKEND", FlagBackendStatic)
	enabled, err := getEnvIntSlice("FLAGS_ENABLED", nil)
	if err != nil {
		return nil, fmt.Errorf("invalid FLAGS_ENABLED: %w", err)
	}
	cfg.Flags.Enabled = enabled

	switch cfg.Flags.Backend {
	case FlagBackendStatic:
	case FlagBackendMongo:
		if cfg.MongoDB.URI, err = getEnvRequired("MONGODB_URI"); err != nil {
			return nil, err
		}
		cfg.MongoDB.Database = getEnv("MONGODB_DATABASE", "ytplatform")
		mongoTimeout, err := time.ParseDuration(getEnv("MONGODB_TIMEOUT", "10s"))
		if err != nil {
			return nil, fmt.Errorf("invalid MONGODB_TIMEOUT: %w", err)
		}
		cfg.MongoDB.Timeout = mongoTimeout
	case FlagBackendPostgres:
		cfg.Postgres.Host = getEnv("POSTGRES_HOST", "localhost")
		cfg.Postgres.Port = getEnvInt("POSTGRES_PORT", 5432)
		if cfg.Postgres.User, err = getEnvRequired("POSTGRES_USER"); err != nil {
			return nil, err
		}
		if cfg.Postgres.Password, err = getEnvRequired("POSTGRES_PASSWORD"); err != nil {
			return nil, err
		}
		cfg.Postgres.Database = getEnv("POSTGRES_DATABASE", "ytplatform")
		cfg.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", "disable")
		pgTimeout, err := time.ParseDuration(getEnv("POSTGRES_TIMEOUT", "10s"))
		if err != nil {
			return nil, fmt.Errorf("invalid POSTGRES_TIMEOUT: %w", err)
		}
		cfg.Postgres.Timeout = pgTimeout
	default:
		return nil, fmt.Errorf("invalid FLAG_BACKEND %q", cfg.Flags.Backend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntSlice(key string, defaultValue []int) ([]int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}

	var result []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}
