package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/notifycast/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Dispatch.Workers)
	assert.Equal(t, 30, cfg.Dispatch.SendTimeout)
	assert.Equal(t, "memory", cfg.Queue.Backend)
	assert.Equal(t, "localhost:6379", cfg.Queue.Redis.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Empty(t, cfg.URLs)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"dispatch": {"workers": 8},
		"queue": {"backend": "redis", "redis": {"addr": "redis:6379"}},
		"log": {"level": "debug"},
		"urls": ["growl://host1", "xbmc://host2"]
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Dispatch.Workers)
	assert.Equal(t, 30, cfg.Dispatch.SendTimeout, "unset keys keep their defaults")
	assert.Equal(t, "redis", cfg.Queue.Backend)
	assert.Equal(t, "redis:6379", cfg.Queue.Redis.Addr)
	assert.Equal(t, []string{"growl://host1", "xbmc://host2"}, cfg.URLs)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Dispatch.Workers)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"dispatch": {"workers": 8}}`), 0o600))

	t.Setenv("NOTIFYCAST_DISPATCH__WORKERS", "2")
	t.Setenv("NOTIFYCAST_QUEUE__REDIS__ADDR", "cache:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Dispatch.Workers)
	assert.Equal(t, "cache:6379", cfg.Queue.Redis.Addr)
}

func TestLoadValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	t.Run("WorkersOutOfRange", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`{"dispatch": {"workers": 0}}`), 0o600))
		_, err := Load(path)
		assert.ErrorContains(t, err, "validation")
	})

	t.Run("UnknownQueueBackend", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`{"queue": {"backend": "kafka"}}`), 0o600))
		_, err := Load(path)
		assert.ErrorContains(t, err, "validation")
	})

	t.Run("BadLogLevel", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "verbose"}}`), 0o600))
		_, err := Load(path)
		assert.ErrorContains(t, err, "validation")
	})
}

func TestLoadMailShorthand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"providers": {"email": {"shorthand": [
			{"host_suffix": "corp.example.com",
			 "fields": {"smtp": "relay.corp.example.com", "port": "2525", "secure": "yes"}}
		]}}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Providers.Email.Shorthand, 1)
	sh := cfg.Providers.Email.Shorthand[0]
	assert.Equal(t, "corp.example.com", sh.HostSuffix)
	assert.Equal(t, "relay.corp.example.com", sh.Fields["smtp"])
}

func TestLogLevelMapping(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent": logger.Silent,
		"error":  logger.Error,
		"warn":   logger.Warn,
		"info":   logger.Info,
		"debug":  logger.Debug,
	}
	for name, want := range cases {
		assert.Equal(t, want, LogConfig{Level: name}.LogLevel(), name)
	}
}
