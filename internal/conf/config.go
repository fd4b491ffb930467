// conf/config.go
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/wildwatch/sightings/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

const redactedPassword = "[REDACTED]"

// LogFileSettings controls the JSON log file
type LogFileSettings struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSize    int    `yaml:"maxsize"`    // megabytes before rotation
	MaxBackups int    `yaml:"maxbackups"` // rotated files to keep
	MaxAge     int    `yaml:"maxage"`     // days to keep rotated files
	Compress   bool   `yaml:"compress"`
}

// LogSettings contains logging settings
type LogSettings struct {
	Level        string            `yaml:"level"`    // default level for all modules
	Timezone     string            `yaml:"timezone"` // "Local", "UTC" or an IANA name
	File         LogFileSettings   `yaml:"file"`
	ModuleLevels map[string]string `yaml:"modulelevels"` // per-module overrides, e.g. datastore: trace
}

// DatabaseSettings holds the PostgreSQL/PostGIS connection settings
type DatabaseSettings struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	Name               string        `yaml:"name"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	SSLMode            string        `yaml:"sslmode"`
	MaxOpenConns       int           `yaml:"maxopenconns"`
	MaxIdleConns       int           `yaml:"maxidleconns"`
	ConnMaxLifetime    time.Duration `yaml:"connmaxlifetime"`
	ConnectTimeout     time.Duration `yaml:"connecttimeout"`
	SlowQueryThreshold time.Duration `yaml:"slowquerythreshold"` // 0 disables slow query warnings
}

// LegacySettings configures the mirror to the legacy sightings service
type LegacySettings struct {
	Enabled       bool          `yaml:"enabled"`
	URI           string        `yaml:"uri"`           // base URI, e.g. http://duckbe:8081
	SightingsPath string        `yaml:"sightingspath"` // appended to URI
	SpeciesPath   string        `yaml:"speciespath"`
	Timeout       time.Duration `yaml:"timeout"` // must be shorter than webserver.requesttimeout
}

// WebServerSettings contains settings for the HTTP API
type WebServerSettings struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"requesttimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdowntimeout"`
	BodyLimit       string        `yaml:"bodylimit"` // echo size string, e.g. "64K"
	RateLimit       float64       `yaml:"ratelimit"` // requests per second per client, 0 disables
	AllowOrigins    []string      `yaml:"alloworigins"`
}

// TelemetrySettings controls the Prometheus endpoint
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Settings contains all configuration options for the service
type Settings struct {
	Debug     bool              `yaml:"debug"`
	Logging   LogSettings       `yaml:"logging"`
	Database  DatabaseSettings  `yaml:"database"`
	Legacy    LegacySettings    `yaml:"legacy"`
	WebServer WebServerSettings `yaml:"webserver"`
	Telemetry TelemetrySettings `yaml:"telemetry"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads defaults, the config file and environment variables into Settings
// and validates the result. An empty configFile searches the default paths;
// a missing file there is not an error.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper registers defaults and env bindings, then reads the config file.
func initViper(configFile string) error {
	viper.SetConfigType("yaml")

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return fmt.Errorf("error getting default config paths: %w", err)
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// defaults and environment only
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetSettings returns the settings from the last successful Load
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// getDefaultConfig returns the embedded default config.yaml
func getDefaultConfig() ([]byte, error) {
	return fs.ReadFile(configFiles, "config.yaml")
}

// WriteDefaultConfig writes the embedded default configuration to path.
// An existing file is left untouched unless overwrite is set.
func WriteDefaultConfig(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := getDefaultConfig()
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return nil
}

// RenderYAML marshals the effective settings. The database password is
// redacted unless showSecrets is set.
func RenderYAML(settings *Settings, showSecrets bool) ([]byte, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	out := *settings
	if !showSecrets && out.Database.Password != "" {
		out.Database.Password = redactedPassword
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return data, nil
}

// LoggingConfig maps the logging settings onto the logger package config.
// Debug mode lowers the default level to debug.
func (s *Settings) LoggingConfig() *logger.LoggingConfig {
	level := s.Logging.Level
	if s.Debug && (level == "" || level == "info") {
		level = "debug"
	}

	fileLevel := s.Logging.File.Level
	if fileLevel == "" {
		fileLevel = level
	}

	modules := make(map[string]string, len(s.Logging.ModuleLevels))
	for k, v := range s.Logging.ModuleLevels {
		modules[k] = v
	}

	return &logger.LoggingConfig{
		DefaultLevel: level,
		Timezone:     s.Logging.Timezone,
		Console: &logger.ConsoleOutput{
			Enabled: true,
			Level:   minLevel(level, modules),
		},
		FileOutput: &logger.FileOutput{
			Enabled:    s.Logging.File.Enabled,
			Path:       s.Logging.File.Path,
			Level:      fileLevel,
			MaxSize:    s.Logging.File.MaxSize,
			MaxBackups: s.Logging.File.MaxBackups,
			MaxAge:     s.Logging.File.MaxAge,
			Compress:   s.Logging.File.Compress,
		},
		ModuleLevels: modules,
	}
}

// ListenAddress returns host:port for the HTTP server
func (s *Settings) ListenAddress() string {
	return net.JoinHostPort(s.WebServer.Host, s.WebServer.Port)
}

var levelOrder = map[string]int{"trace": 0, "debug": 1, "info": 2, "warn": 3, "error": 4}

// minLevel returns the most verbose of the default and module levels so the
// console handler does not filter records a module logger lets through.
func minLevel(level string, modules map[string]string) string {
	lowest := level
	for _, l := range modules {
		if o, ok := levelOrder[l]; ok && o < levelOrder[lowest] {
			lowest = l
		}
	}
	return lowest
}
