// Package config holds the application context shared by the CLI commands.
package config

import (
	"context"
	"sync"

	"github.com/wildwatch/sightings/internal/buildinfo"
	"github.com/wildwatch/sightings/internal/conf"
	"github.com/wildwatch/sightings/internal/datastore"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/observability/metrics"
)

// Context holds the overall application state: settings, build metadata and
// the central logger. Settings is nil until Load succeeds.
type Context struct {
	Settings *conf.Settings
	Build    *buildinfo.Context

	mu     sync.Mutex
	logger *logger.CentralLogger
}

// NewContext creates a Context for a binary built with the given metadata.
func NewContext(build *buildinfo.Context) *Context {
	return &Context{Build: build}
}

// Load reads the configuration and sets up central logging.
func (c *Context) Load(configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}

	cl, err := logger.NewCentralLogger(settings.LoggingConfig())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger != nil {
		_ = c.logger.Close()
	}
	c.Settings = settings
	c.logger = cl
	return nil
}

// Logger returns the central logger, or a stdout logger before Load.
func (c *Context) Logger() logger.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger == nil {
		return logger.NewSlogLogger(nil, logger.LogLevelInfo, nil)
	}
	return c.logger
}

// OpenStore connects to the database described by the loaded settings.
func (c *Context) OpenStore(ctx context.Context, recorder metrics.Recorder) (*datastore.Store, error) {
	if c.Settings == nil {
		return nil, datastore.ErrNotConnected
	}
	return datastore.Open(ctx, &c.Settings.Database, c.Logger(), recorder)
}

// Close flushes and closes the log file.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logger == nil {
		return nil
	}
	err := c.logger.Close()
	c.logger = nil
	return err
}
