package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"promptkit/config"
	"promptkit/core"
	"promptkit/engine"
	"promptkit/metrics"
	"promptkit/promptkit"
)

// App aggregates the components a single promptctl invocation needs.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Core     *engine.Core
}

// provideConfig loads the config file or environment. Flags are applied
// before validation so --store can supply a descriptor the file leaves empty.
func provideConfig(opts *RootOptions) (*config.Config, error) {
	flags := func(cfg *config.Config) {
		if opts.Store != "" {
			cfg.Store.Descriptor = opts.Store
		}
		if opts.Verbose {
			cfg.Logging.Level = "debug"
		}
	}
	if opts.ConfigPath != "" {
		return config.LoadFromFile(opts.ConfigPath, flags)
	}
	return config.Load(flags)
}

func provideLogger(cfg *config.Config, opts *RootOptions) *slog.Logger {
	return setupLogging(cfg, opts.errOut)
}

func provideRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func provideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(reg)
}

// provideCore opens the configured Default store. The cleanup destroys the core.
func provideCore(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*engine.Core, func(), error) {
	opts := []promptkit.Option{
		promptkit.WithPolicy(cfg.Policy),
		promptkit.WithLogger(logger),
		promptkit.WithStoreTimeout(cfg.Store.Timeout),
		promptkit.WithRedisConfig(cfg.Store.Redis),
		promptkit.WithSQLConfig(cfg.Store.SQL),
	}
	if m != nil {
		opts = append(opts, promptkit.WithMetrics(m))
	}
	c, err := promptkit.New(core.DefaultStore{Descriptor: cfg.Store.Descriptor}, opts...)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := c.Destroy(); err != nil {
			logger.Error("failed to destroy core", "error", err)
		}
	}
	return c, cleanup, nil
}

// FlushMetrics writes the registry to the configured textfile, if enabled.
func (a *App) FlushMetrics() error {
	if !a.Config.Metrics.Enabled {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.Config.Metrics.TextfilePath, a.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// setupLogging builds the logger described by cfg.Logging. Output "stderr"
// goes to stderr, which falls back to os.Stderr when nil.
func setupLogging(cfg *config.Config, stderr io.Writer) *slog.Logger {
	out := io.Writer(os.Stdout)
	if cfg.Logging.Output == "stderr" {
		out = stderr
		if out == nil {
			out = os.Stderr
		}
	}

	opts := &slog.HandlerOptions{Level: logLevel(cfg.Logging.Level)}
	var handler slog.Handler = slog.NewJSONHandler(out, opts)
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	}

	if attrs := logAttrs(cfg.Logging.Attributes); len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}
	return slog.New(handler)
}

// logLevel maps a configured level name to slog, defaulting to info.
func logLevel(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// logAttrs returns the static attributes sorted by key.
func logAttrs(m map[string]string) []slog.Attr {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, m[k]))
	}
	return attrs
}
