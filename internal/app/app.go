// Package app encapsulates application wiring: logger, configuration,
// executor registry and the services one batch run needs. Every App owns
// isolated instances of all of them; there is no process-wide state.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/scriptforge/internal/config"
	"github.com/vk/scriptforge/internal/parser"
	"github.com/vk/scriptforge/internal/registry"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath string
	CacheDir   string
	DryRun     bool
	LogFormat  string
	LogLevel   string
}

// App ties the parser, registry and services together for one process.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	parser   *parser.Parser
	env      config.Env
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own logger, registry and parser. When
// no modules are passed, the core executor modules are installed.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	envCfg, err := config.FromEnv()
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Environment configuration loaded.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All executor modules registered.", "types", reg.List())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		parser:   parser.New(),
		env:      envCfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
