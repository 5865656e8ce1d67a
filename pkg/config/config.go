// Package config loads the notifycast configuration from defaults, an
// optional JSON file and environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kart-io/notifycast/pkg/logger"
	"github.com/kart-io/notifycast/pkg/observability"
	"github.com/kart-io/notifycast/pkg/provider"
)

// EnvPrefix is the prefix for configuration environment variables.
// Nesting uses a double underscore: NOTIFYCAST_QUEUE__REDIS__ADDR maps
// to queue.redis.addr.
const EnvPrefix = "NOTIFYCAST_"

// Configuration is the full runtime configuration.
type Configuration struct {
	Dispatch  DispatchConfig       `koanf:"dispatch"`
	Queue     QueueConfig          `koanf:"queue"`
	Log       LogConfig            `koanf:"log"`
	Telemetry observability.Config `koanf:"telemetry"`
	Providers ProvidersConfig      `koanf:"providers"`

	// URLs are default service URLs dispatched to when the caller
	// supplies none on the command line.
	URLs []string `koanf:"urls"`
}

// ProvidersConfig tunes the built-in providers.
type ProvidersConfig struct {
	Email EmailProviderConfig `koanf:"email"`
}

// EmailProviderConfig extends the email provider's relay knowledge.
type EmailProviderConfig struct {
	// Shorthand entries are consulted before the built-in mail-domain
	// table, so deployments can add or override relay mappings.
	Shorthand []provider.HostShorthand `koanf:"shorthand"`
}

// DispatchConfig tunes the dispatch coordinator.
type DispatchConfig struct {
	Workers     int `koanf:"workers" validate:"min=1,max=64"`
	SendTimeout int `koanf:"send_timeout_seconds" validate:"min=1,max=600"`
}

// SendTimeoutDuration returns the per-send timeout as a duration.
func (c DispatchConfig) SendTimeoutDuration() time.Duration {
	return time.Duration(c.SendTimeout) * time.Second
}

// QueueConfig selects and tunes the async queue backend.
type QueueConfig struct {
	Backend    string      `koanf:"backend" validate:"oneof=memory redis"`
	BufferSize int         `koanf:"buffer_size" validate:"min=1,max=100000"`
	Redis      RedisConfig `koanf:"redis"`
}

// RedisConfig holds the Redis Streams backend settings.
type RedisConfig struct {
	Addr     string `koanf:"addr" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0,max=15"`
	Stream   string `koanf:"stream" validate:"required"`
	Group    string `koanf:"group" validate:"required"`
	Consumer string `koanf:"consumer"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is one of silent, error, warn, info, debug.
	Level string `koanf:"level" validate:"oneof=silent error warn info debug"`
	// File, when set, duplicates log output into a rotated file.
	File string `koanf:"file"`
}

// LogLevel maps the configured level name onto the logger level.
func (c LogConfig) LogLevel() logger.LogLevel {
	switch c.Level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "debug":
		return logger.Debug
	default:
		return logger.Info
	}
}

// Load builds the configuration. Priority, lowest to highest: built-in
// defaults, the JSON file at path (skipped when path is empty or the
// file does not exist), then NOTIFYCAST_* environment variables.
func Load(path string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		k.Set(key, value)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), json.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envTransform converts an environment variable name to a config key.
// NOTIFYCAST_QUEUE__REDIS__ADDR -> queue.redis.addr
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
