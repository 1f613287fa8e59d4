// Package config reads the runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pomodocko/internal/logger"
)

// Store backends.
const (
	StoreYAML   = "yaml"
	StoreSQLite = "sqlite"
)

const defaultTickInterval = time.Second

// Config holds the process settings. User preferences live in the preference store.
type Config struct {
	DataDir       string
	Store         string
	TickInterval  time.Duration
	LogLevel      logger.Level
	Notifications bool
}

// EnvFileName is the dotenv file looked up in the working and data directories.
const EnvFileName = ".env"

// LoadEnvFiles exports the variables of every existing file in dirs, in order.
// Variables already present in the environment are never overridden, so the
// process environment wins over the first file, which wins over later ones.
func LoadEnvFiles(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, EnvFileName)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file: %w", err)
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

// Load reads POMODOCKO_* variables. defaultDataDir is used when POMODOCKO_DATA_DIR is unset.
func Load(defaultDataDir string) Config {
	level, ok := logger.ParseLevel(getEnv("POMODOCKO_LOG_LEVEL", "normal"))
	if !ok {
		level = logger.LevelNormal
	}

	return Config{
		DataDir:       getEnv("POMODOCKO_DATA_DIR", defaultDataDir),
		Store:         strings.ToLower(getEnv("POMODOCKO_STORE", StoreYAML)),
		TickInterval:  time.Duration(getEnvInt("POMODOCKO_TICK_MS", int(defaultTickInterval/time.Millisecond))) * time.Millisecond,
		LogLevel:      level,
		Notifications: getEnvBool("POMODOCKO_NOTIFICATIONS", true),
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return &Error{Field: "data_dir", Message: "data directory cannot be empty"}
	}
	if c.Store != StoreYAML && c.Store != StoreSQLite {
		return &Error{Field: "store", Message: "store must be yaml or sqlite, got " + strconv.Quote(c.Store)}
	}
	if c.TickInterval <= 0 {
		return &Error{Field: "tick_ms", Message: "tick interval must be positive"}
	}
	return nil
}

// Error is a configuration validation error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config " + e.Field + ": " + e.Message
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
