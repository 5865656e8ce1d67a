package cli

import (
	"context"
	"fmt"

	"github.com/kart-io/notifycast/pkg/config"
	"github.com/kart-io/notifycast/pkg/dispatch"
	"github.com/kart-io/notifycast/pkg/logger"
	"github.com/kart-io/notifycast/pkg/observability"
	"github.com/kart-io/notifycast/pkg/provider"
	"github.com/kart-io/notifycast/pkg/queue"
	"github.com/kart-io/notifycast/providers"
)

// app bundles the wired-up runtime every subcommand works through.
type app struct {
	cfg         *config.Configuration
	logger      logger.Logger
	registry    *provider.Registry
	coordinator *dispatch.Coordinator
	telemetry   *observability.Telemetry
}

// newApp loads configuration and builds the logger, registry,
// coordinator and telemetry from it plus the global flags.
func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	telemetry, err := observability.New(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	registry := provider.NewRegistry(log)
	if err := providers.RegisterBuiltins(registry, providers.Options{
		MailShorthand: cfg.Providers.Email.Shorthand,
	}); err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}

	coordinator := dispatch.NewCoordinator(registry, dispatch.Options{
		Workers:     cfg.Dispatch.Workers,
		SendTimeout: cfg.Dispatch.SendTimeoutDuration(),
		Logger:      log,
		Telemetry:   telemetry,
	})

	return &app{
		cfg:         cfg,
		logger:      log,
		registry:    registry,
		coordinator: coordinator,
		telemetry:   telemetry,
	}, nil
}

// buildLogger resolves the log sink and level from config and the
// --logfile / --debug flags. Flags win over the file.
func buildLogger(cfg *config.Configuration) (logger.Logger, error) {
	level := cfg.Log.LogLevel()
	if flagDebug {
		level = logger.Debug
	}

	path := cfg.Log.File
	if flagLogfile != "" {
		path = flagLogfile
	}
	if path != "" {
		return logger.NewFileLogger(logger.DefaultFileOptions(path), level), nil
	}
	return logger.New().LogMode(level), nil
}

// openQueue builds the configured queue backend.
func (a *app) openQueue(ctx context.Context) (queue.Queue, error) {
	switch a.cfg.Queue.Backend {
	case "redis":
		opts := queue.DefaultRedisOptions()
		opts.Addr = a.cfg.Queue.Redis.Addr
		opts.Password = a.cfg.Queue.Redis.Password
		opts.DB = a.cfg.Queue.Redis.DB
		opts.Stream = a.cfg.Queue.Redis.Stream
		opts.Group = a.cfg.Queue.Redis.Group
		opts.Consumer = a.cfg.Queue.Redis.Consumer
		q, err := queue.NewRedisQueue(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("open redis queue: %w", err)
		}
		return q, nil
	default:
		return queue.NewMemoryQueue(a.cfg.Queue.BufferSize), nil
	}
}

// Close flushes telemetry.
func (a *app) Close() {
	if a.telemetry != nil {
		_ = a.telemetry.Shutdown(context.Background())
	}
}
