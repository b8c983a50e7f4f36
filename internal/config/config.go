package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"minesweeper/pkg/models"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverGorm     = "gorm"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Host        HostConfig
	Game        GameConfig
	Leaderboard LeaderboardConfig
	I18n        I18nConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host              string
	Port              string
	GinMode           string
	AppURL            string
	EnableHealthCheck bool
	CORSOrigins       []string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// HostConfig holds the mini app host integration settings
type HostConfig struct {
	TokenSecret      string
	DemoMode         bool
	AppName          string
	AccountHeader    string
	AccountPayload   string
	AccountSignature string
}

// GameConfig holds game-related configuration
type GameConfig struct {
	DefaultDifficulty  string
	LongPressMillis    int
	SubmitTimeout      int
	SnapshotDir        string
	MaxConcurrentGames int
}

// LeaderboardConfig holds leaderboard-related configuration
type LeaderboardConfig struct {
	CacheTTL   int
	MaxEntries int
}

// I18nConfig holds internationalization configuration
type I18nConfig struct {
	DefaultLanguage    string
	SupportedLanguages []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded environment variables from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables and defaults")
	}

	config := FromEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FromEnv builds the configuration from the current environment without
// reading any .env file.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              getEnv("SERVER_HOST", "0.0.0.0"),
			Port:              getEnv("PORT", getEnv("SERVER_PORT", "3000")),
			GinMode:           getEnv("GIN_MODE", "release"),
			AppURL:            getEnv("APP_URL", ""),
			EnableHealthCheck: getEnvBool("ENABLE_HEALTH_CHECK", true),
			CORSOrigins:       getEnvSlice("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", DriverSQLite),
			SQLitePath: getEnv("SQLITE_PATH", "local.db"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			Name:       getEnv("DB_NAME", "minesweeper"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "password"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Host: HostConfig{
			TokenSecret:      getEnv("HOST_TOKEN_SECRET", ""),
			DemoMode:         getEnvBool("DEMO_MODE", true),
			AppName:          getEnv("APP_NAME", "Minesweeper"),
			AccountHeader:    getEnv("ACCOUNT_ASSOCIATION_HEADER", ""),
			AccountPayload:   getEnv("ACCOUNT_ASSOCIATION_PAYLOAD", ""),
			AccountSignature: getEnv("ACCOUNT_ASSOCIATION_SIGNATURE", ""),
		},
		Game: GameConfig{
			DefaultDifficulty:  getEnv("DEFAULT_DIFFICULTY", string(models.DifficultyEasy)),
			LongPressMillis:    getEnvInt("LONG_PRESS_MS", 500),
			SubmitTimeout:      getEnvInt("SCORE_SUBMIT_TIMEOUT", 10),
			SnapshotDir:        getEnv("SNAPSHOT_DIR", ""),
			MaxConcurrentGames: getEnvInt("MAX_CONCURRENT_GAMES", 1000),
		},
		Leaderboard: LeaderboardConfig{
			CacheTTL:   getEnvInt("LEADERBOARD_CACHE_TTL", 60),
			MaxEntries: getEnvInt("MAX_LEADERBOARD_ENTRIES", 10),
		},
		I18n: I18nConfig{
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "en"),
			SupportedLanguages: getEnvSlice("SUPPORTED_LANGUAGES", []string{"en", "fr", "es"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set for the sqlite driver")
		}
	case DriverGorm, DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration is incomplete")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if _, err := models.ParseDifficulty(c.Game.DefaultDifficulty); err != nil {
		return fmt.Errorf("DEFAULT_DIFFICULTY: %w", err)
	}

	if c.Game.LongPressMillis <= 0 {
		return fmt.Errorf("long press duration must be positive")
	}

	if c.Game.SubmitTimeout <= 0 {
		return fmt.Errorf("score submit timeout must be positive")
	}

	if c.Leaderboard.MaxEntries <= 0 {
		return fmt.Errorf("leaderboard size must be positive")
	}

	if c.Leaderboard.CacheTTL < 0 {
		return fmt.Errorf("leaderboard cache TTL cannot be negative")
	}

	if !contains(c.I18n.SupportedLanguages, c.I18n.DefaultLanguage) {
		return fmt.Errorf("default language %q is not supported", c.I18n.DefaultLanguage)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}

	return nil
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return c.Database.DSN()
}

// DSN returns the PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// GetRedisURL returns the Redis connection URL
func (c *Config) GetRedisURL() string {
	if c.Redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%s/%d",
			c.Redis.Password, c.Redis.Host, c.Redis.Port, c.Redis.DB)
	}
	return fmt.Sprintf("redis://%s:%s/%d",
		c.Redis.Host, c.Redis.Port, c.Redis.DB)
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
