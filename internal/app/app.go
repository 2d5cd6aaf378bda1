package app

import (
	"io"
	"log/slog"

	"github.com/vk/gridopt/internal/config"
	"github.com/vk/gridopt/internal/ctxlog"
)

// App encapsulates the application's dependencies and configuration.
type App struct {
	logger *slog.Logger
	config *config.Config
}

// New is the constructor for the main application. It returns an App with
// its own isolated logger writing to outW.
func New(outW io.Writer, cfg *config.Config) *App {
	logger := ctxlog.New(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		logger: logger,
		config: cfg,
	}
}

// Config returns the configuration the app runs with.
func (a *App) Config() *config.Config {
	return a.config
}
