// Package config provides configuration for the pingpong relay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the relay configuration.
type Config struct {
	// Server settings
	HTTPPort    int      `validate:"min=1,max=65535"`
	CORSOrigins []string `validate:"min=1"`

	// Database
	DatabaseURL string `validate:"required"`

	// Uploads
	UploadDir     string `validate:"required"`
	UploadMaxSize string `validate:"required"` // echo BodyLimit syntax, e.g. "20M"

	// WebSocket settings
	PingInterval    time.Duration
	WriteTimeout    time.Duration `validate:"gt=0"`
	ReadTimeout     time.Duration
	MaxMessageSize  int64 `validate:"gt=0"`
	SendBuffer      int   `validate:"gt=0"`
	CloseSuperseded bool  // close a connection when a newer one registers the same user

	// Messaging
	HistoryDefaultLimit int `validate:"gt=0,ltefield=HistoryMaxLimit"`
	HistoryMaxLimit     int `validate:"gt=0"`
	MaxTextLength       int `validate:"gte=0"` // 0 disables the length rule

	// Auth
	BcryptCost int `validate:"min=4,max=31"`

	// Logging
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables
// win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{
		HTTPPort:            getEnvInt("HTTP_PORT", 8000),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"*"}),
		DatabaseURL:         getEnv("DATABASE_URL", "file:chat.db?cache=shared&mode=rwc"),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		UploadMaxSize:       getEnv("UPLOAD_MAX_SIZE", "20M"),
		PingInterval:        time.Duration(getEnvInt("WS_PING_INTERVAL_MS", 30000)) * time.Millisecond,
		WriteTimeout:        time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		ReadTimeout:         time.Duration(getEnvInt("WS_READ_TIMEOUT_MS", 60000)) * time.Millisecond,
		MaxMessageSize:      int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		SendBuffer:          getEnvInt("WS_SEND_BUFFER", 256),
		CloseSuperseded:     getEnvBool("WS_CLOSE_SUPERSEDED", false),
		HistoryDefaultLimit: getEnvInt("HISTORY_DEFAULT_LIMIT", 100),
		HistoryMaxLimit:     getEnvInt("HISTORY_MAX_LIMIT", 500),
		MaxTextLength:       getEnvInt("MAX_TEXT_LENGTH", 4000),
		BcryptCost:          getEnvInt("BCRYPT_COST", 10),
		LogLevel:            strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() *Config {
	return &Config{
		HTTPPort:            8000,
		CORSOrigins:         []string{"*"},
		DatabaseURL:         ":memory:",
		UploadDir:           "uploads",
		UploadMaxSize:       "20M",
		PingInterval:        30 * time.Second,
		WriteTimeout:        10 * time.Second,
		ReadTimeout:         60 * time.Second,
		MaxMessageSize:      65536,
		SendBuffer:          256,
		HistoryDefaultLimit: 100,
		HistoryMaxLimit:     500,
		MaxTextLength:       4000,
		BcryptCost:          10,
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
