package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Typesense      TypesenseConfig
	OTEL           OTELConfig
	Recommendation RecommendationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Environment    string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Enabled  bool
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL     string
	APIKey  string
	Enabled bool
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// RecommendationConfig holds request-layer limits and scoring runtime settings
type RecommendationConfig struct {
	DefaultLimit         int
	MaxLimit             int
	DefaultMaxDistanceKm float64
	MaxDistanceCapKm     float64
	Workers              int
	Timezone             string
	CandidateCacheTTL    int // seconds
	HolidaysEnabled      bool
	LogRecommendations   bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Environment:    getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "mindcare"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Typesense: TypesenseConfig{
			URL:     getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:  getEnv("TYPESENSE_API_KEY", "xyz"),
			Enabled: getEnvAsBool("TYPESENSE_ENABLED", false),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "mindcare-recommendations"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Recommendation: RecommendationConfig{
			DefaultLimit:         getEnvAsInt("RECOMMENDATION_DEFAULT_LIMIT", 5),
			MaxLimit:             getEnvAsInt("RECOMMENDATION_MAX_LIMIT", 20),
			DefaultMaxDistanceKm: getEnvAsFloat("RECOMMENDATION_DEFAULT_MAX_DISTANCE_KM", 10),
			MaxDistanceCapKm:     getEnvAsFloat("RECOMMENDATION_MAX_DISTANCE_CAP_KM", 100),
			Workers:              getEnvAsInt("RECOMMENDATION_WORKERS", 4),
			Timezone:             getEnv("RECOMMENDATION_TIMEZONE", "UTC"),
			CandidateCacheTTL:    getEnvAsInt("RECOMMENDATION_CANDIDATE_CACHE_TTL", 120),
			HolidaysEnabled:      getEnvAsBool("RECOMMENDATION_HOLIDAYS_ENABLED", true),
			LogRecommendations:   getEnvAsBool("RECOMMENDATION_LOG_ENABLED", true),
		},
	}

	if err := cfg.Recommendation.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *RecommendationConfig) validate() error {
	if c.DefaultLimit <= 0 || c.MaxLimit <= 0 {
		return fmt.Errorf("recommendation limits must be positive (default=%d, max=%d)", c.DefaultLimit, c.MaxLimit)
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("recommendation default limit %d exceeds max limit %d", c.DefaultLimit, c.MaxLimit)
	}
	if c.DefaultMaxDistanceKm <= 0 || c.MaxDistanceCapKm < c.DefaultMaxDistanceKm {
		return fmt.Errorf("invalid recommendation distance settings (default=%.1f, cap=%.1f)", c.DefaultMaxDistanceKm, c.MaxDistanceCapKm)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("recommendation workers must be positive, got %d", c.Workers)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
