package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	School    SchoolConfig
	Render    RenderConfig
	Cache     CacheConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	LogLevel string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
}

// SchoolConfig describes the institution printed on every receipt
type SchoolConfig struct {
	Name     string
	Timezone string
}

// RenderConfig selects how receipts are turned into documents
type RenderConfig struct {
	Engine     string // html, chrome or maroto
	ChromePath string
	Timeout    time.Duration
}

// CacheConfig selects where rendered documents are kept
type CacheConfig struct {
	Driver        string // memory, redis or none
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

// Load reads configuration from .env and the environment. A missing .env is
// not an error; warnings are returned for the caller to log.
func Load() (*Config, []string) {
	var warnings []string

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		warnings = append(warnings, ".env file not found, using environment variables: "+err.Error())
	}

	setDefaults()

	return &Config{
		App: AppConfig{
			Name:     viper.GetString("APP_NAME"),
			Env:      viper.GetString("APP_ENV"),
			Port:     viper.GetString("APP_PORT"),
			Debug:    viper.GetBool("APP_DEBUG"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			Name:         viper.GetString("DB_NAME"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			Timezone:     viper.GetString("DB_TIMEZONE"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
		},
		School: SchoolConfig{
			Name:     viper.GetString("SCHOOL_NAME"),
			Timezone: viper.GetString("SCHOOL_TIMEZONE"),
		},
		Render: RenderConfig{
			Engine:     strings.ToLower(viper.GetString("RENDER_ENGINE")),
			ChromePath: viper.GetString("RENDER_CHROME_PATH"),
			Timeout:    time.Duration(viper.GetInt("RENDER_TIMEOUT_SECONDS")) * time.Second,
		},
		Cache: CacheConfig{
			Driver:        strings.ToLower(viper.GetString("CACHE_DRIVER")),
			TTL:           time.Duration(viper.GetInt("CACHE_TTL_MINUTES")) * time.Minute,
			RedisAddr:     viper.GetString("REDIS_ADDR"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}, warnings
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "schoolfee-receipts")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "schoolfees")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Lagos")
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_MAX_OPEN_CONNS", 50)
	viper.SetDefault("SCHOOL_NAME", "DELTOS MODEL SCHOOL")
	viper.SetDefault("SCHOOL_TIMEZONE", "Africa/Lagos")
	viper.SetDefault("RENDER_ENGINE", "chrome")
	viper.SetDefault("RENDER_CHROME_PATH", "")
	viper.SetDefault("RENDER_TIMEOUT_SECONDS", 30)
	viper.SetDefault("CACHE_DRIVER", "memory")
	viper.SetDefault("CACHE_TTL_MINUTES", 30)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
