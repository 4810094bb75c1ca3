// Package runtime holds the per-invocation state shared by the weedcoco commands:
// build metadata, loaded settings, the filesystem, logging and run metrics.
package runtime

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/weedai/weedcoco-go/internal/buildinfo"
	"github.com/weedai/weedcoco-go/internal/conf"
	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/logger"
	"github.com/weedai/weedcoco-go/internal/observability"
	"github.com/weedai/weedcoco-go/internal/observability/metrics"
)

// Context is created once per process and initialized by the root command
// before any subcommand runs.
type Context struct {
	Build *buildinfo.Context

	// Viper carries defaults, environment overrides and bound command flags
	Viper *viper.Viper

	// Fs is the filesystem importers read from and documents are written to
	Fs afero.Fs

	// Set by Init
	Settings *conf.Settings
	Logger   *logger.CentralLogger
	Metrics  *observability.Metrics
	RunID    string
}

// NewContext creates an uninitialized context operating on the OS filesystem.
func NewContext(build *buildinfo.Context) *Context {
	return &Context{
		Build: build,
		Viper: conf.NewViper(),
		Fs:    afero.NewOsFs(),
	}
}

// Init loads settings, opens the logger and creates the metrics registry.
// Flags must already be bound to Viper.
func (c *Context) Init(configFile string) error {
	settings, err := conf.Load(c.Viper, configFile)
	if err != nil {
		return err
	}

	central, err := logger.NewCentralLogger(logger.LoggingConfig{
		Level:     settings.ConsoleLevel(),
		File:      settings.Log.File,
		FileLevel: settings.Log.FileLevel,
	})
	if err != nil {
		return err
	}

	m, err := observability.NewMetrics()
	if err != nil {
		_ = central.Close()
		return err
	}

	c.Settings = settings
	c.Logger = central
	c.Metrics = m
	c.RunID = uuid.NewString()

	c.Log("runtime").Debug("initialized",
		logger.String("version", c.Build.GetVersion()),
		logger.String("run_id", c.RunID))
	return nil
}

// Log returns a logger scoped to module. Before Init it discards everything.
func (c *Context) Log(module string) logger.Logger {
	if c.Logger == nil {
		return logger.NewSlogLogger(io.Discard, logger.LogLevelError).Module(module)
	}
	return c.Logger.Module(module)
}

// ConversionMetrics returns the conversion collectors, or nil before Init.
// The collectors accept nil receivers.
func (c *Context) ConversionMetrics() *metrics.ConversionMetrics {
	if c.Metrics == nil {
		return nil
	}
	return c.Metrics.Conversion
}

// Close writes the metrics textfile when one is configured and closes the log file.
// It is safe to call on a context that was never initialized.
func (c *Context) Close() error {
	var errs []error

	if c.Metrics != nil && c.Settings != nil && c.Settings.Metrics.Textfile != "" {
		if err := c.Metrics.WriteTextfile(c.Settings.Metrics.Textfile); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing logger: %w", err))
		}
	}

	return errors.Join(errs...)
}
