package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/animgraph/internal/assets"
	"github.com/vk/animgraph/internal/sink"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	library    *assets.Library
	config     *Config
	sinks      []sink.Sink
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and asset
// library. Without modules the core modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...assets.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	lib := assets.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := lib.Register(modules...); err != nil {
		// Modules ship with the binary, so a broken one is a programmer error.
		panic(fmt.Errorf("failed to register asset modules: %w", err))
	}
	logger.Debug("All asset modules registered.",
		"count", len(modules),
		"clips", len(lib.ClipIDs()),
		"graphs", len(lib.GraphIDs()),
		"machines", len(lib.MachineIDs()),
	)

	return &App{
		outW:    outW,
		logger:  logger,
		library: lib,
		config:  cfg,
	}
}

// Library returns the application's asset library. This is primarily for testing.
func (a *App) Library() *assets.Library {
	return a.library
}

// AddSink makes every run also write its frames to s. The app closes s when
// the run ends.
func (a *App) AddSink(s sink.Sink) {
	a.sinks = append(a.sinks, s)
}
