// Package buildinfo contains build-time metadata separate from user configuration
package buildinfo

import "time"

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// BuildInfo provides an interface for accessing build-time metadata.
type BuildInfo interface {
	Version() string
	BuildDate() string
	Uptime() time.Duration
}

// Context contains build-time metadata that is not user-configurable.
// It is created once at startup and shared read-only.
type Context struct {
	version   string
	buildDate string
	startedAt time.Time
}

// NewContext creates a Context. The start time is taken from the wall clock.
func NewContext(version, buildDate string) *Context {
	return &Context{
		version:   version,
		buildDate: buildDate,
		startedAt: time.Now(),
	}
}

// Version returns the Git version tag from build
func (c *Context) Version() string {
	if c == nil || c.version == "" {
		return UnknownValue
	}
	return c.version
}

// BuildDate returns the build date string
func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// Uptime returns the time since the context was created.
func (c *Context) Uptime() time.Duration {
	if c == nil || c.startedAt.IsZero() {
		return 0
	}
	return time.Since(c.startedAt)
}
