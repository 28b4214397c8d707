package host

import (
	"log/slog"

	"github.com/tetratelabs/wazero"

	"github.com/mosaic-dev/loader/domain/entities"
	"github.com/mosaic-dev/loader/hostfuncs"
)

// Option defines a functional option for configuring the Executor.
type Option func(*executorConfig)

// SizeFunc reports the terminal size.
type SizeFunc = hostfuncs.SizeFunc

type executorConfig struct {
	registry      *hostfuncs.Registry
	logger        *slog.Logger
	runtimeConfig wazero.RuntimeConfig
	size          SizeFunc
	config        entities.Config
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		logger:        slog.Default(),
		runtimeConfig: wazero.NewRuntimeConfig().WithCloseOnContextDone(true),
		config:        entities.DefaultConfig(),
	}
}

// WithHostFunctions configures the executor with a host function registry.
// Without it, the executor builds one holding the mosaic bundle.
func WithHostFunctions(registry *hostfuncs.Registry) Option {
	return func(c *executorConfig) {
		c.registry = registry
	}
}

// WithConfig sets the guest environment, entry point names and seed.
func WithConfig(cfg entities.Config) Option {
	return func(c *executorConfig) {
		c.config = cfg
	}
}

// WithLogger sets the logger used for guest logs, stderr and diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *executorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTerminalSize sets the size source used for COLUMNS/LINES and the
// terminal_size host function.
func WithTerminalSize(size SizeFunc) Option {
	return func(c *executorConfig) {
		c.size = size
	}
}

// WithRuntimeConfig overrides the wazero runtime configuration.
func WithRuntimeConfig(rc wazero.RuntimeConfig) Option {
	return func(c *executorConfig) {
		c.runtimeConfig = rc
	}
}
