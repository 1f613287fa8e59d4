package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pomodocko/internal/logger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POMODOCKO_DATA_DIR",
		"POMODOCKO_STORE",
		"POMODOCKO_TICK_MS",
		"POMODOCKO_LOG_LEVEL",
		"POMODOCKO_NOTIFICATIONS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load("/tmp/Pomodocko")
	assert.Equal(t, Config{
		DataDir:       "/tmp/Pomodocko",
		Store:         StoreYAML,
		TickInterval:  time.Second,
		LogLevel:      logger.LevelNormal,
		Notifications: true,
	}, cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("POMODOCKO_DATA_DIR", "/var/lib/pomodocko")
	t.Setenv("POMODOCKO_STORE", "SQLite")
	t.Setenv("POMODOCKO_TICK_MS", "250")
	t.Setenv("POMODOCKO_LOG_LEVEL", "verbose")
	t.Setenv("POMODOCKO_NOTIFICATIONS", "false")

	cfg := Load("/unused")
	assert.Equal(t, "/var/lib/pomodocko", cfg.DataDir)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, logger.LevelVerbose, cfg.LogLevel)
	assert.False(t, cfg.Notifications)
	require.NoError(t, cfg.Validate())
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("POMODOCKO_TICK_MS", "fast")
	t.Setenv("POMODOCKO_LOG_LEVEL", "loud")
	t.Setenv("POMODOCKO_NOTIFICATIONS", "maybe")

	cfg := Load("/tmp/Pomodocko")
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, logger.LevelNormal, cfg.LogLevel)
	assert.True(t, cfg.Notifications)
}

func TestValidate(t *testing.T) {
	valid := Config{DataDir: "/tmp", Store: StoreYAML, TickInterval: time.Second}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, field: "data_dir"},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "postgres" }, field: "store"},
		{name: "zero tick", mutate: func(c *Config) { c.TickInterval = 0 }, field: "tick_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadEnvFilesFeedsConfig(t *testing.T) {
	unsetEnv(t, "POMODOCKO_DATA_DIR", "POMODOCKO_STORE", "POMODOCKO_TICK_MS", "POMODOCKO_LOG_LEVEL", "POMODOCKO_NOTIFICATIONS")
	t.Setenv("POMODOCKO_LOG_LEVEL", "off")

	workDir := t.TempDir()
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, EnvFileName),
		[]byte("POMODOCKO_STORE=sqlite\nPOMODOCKO_LOG_LEVEL=verbose\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, EnvFileName),
		[]byte("POMODOCKO_STORE=yaml\nPOMODOCKO_TICK_MS=500\n"), 0o644))

	require.NoError(t, LoadEnvFiles(workDir, "", filepath.Join(t.TempDir(), "missing"), dataDir))

	cfg := Load("/tmp/Pomodocko")
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, logger.LevelOff, cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvFilesRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte("POMODOCKO_STORE='unterminated\n"), 0o644))

	assert.Error(t, LoadEnvFiles(dir))
}
