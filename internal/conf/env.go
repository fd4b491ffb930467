// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "SIGHTINGS_DEBUG", validateEnvBool},
		{"logging.level", "SIGHTINGS_LOG_LEVEL", validateEnvLogLevel},

		// Database
		{"database.host", "SIGHTINGS_DATABASE_HOST", validateEnvNonEmpty},
		{"database.port", "SIGHTINGS_DATABASE_PORT", validateEnvPort},
		{"database.name", "SIGHTINGS_DATABASE_NAME", validateEnvNonEmpty},
		{"database.user", "SIGHTINGS_DATABASE_USER", validateEnvNonEmpty},
		{"database.password", "SIGHTINGS_DATABASE_PASSWORD", nil},
		{"database.sslmode", "SIGHTINGS_DATABASE_SSLMODE", validateEnvSSLMode},

		// Legacy mirror
		{"legacy.enabled", "SIGHTINGS_LEGACY_ENABLED", validateEnvBool},
		{"legacy.uri", "SIGHTINGS_LEGACY_URI", validateEnvURI},
		{"legacy.sightingspath", "SIGHTINGS_LEGACY_SIGHTINGS_PATH", validateEnvURLPath},
		{"legacy.speciespath", "SIGHTINGS_LEGACY_SPECIES_PATH", validateEnvURLPath},
		{"legacy.timeout", "SIGHTINGS_LEGACY_TIMEOUT", validateEnvDuration},

		// Web server; PORT follows the usual PaaS convention
		{"webserver.port", "PORT", validateEnvPort},

		{"telemetry.enabled", "SIGHTINGS_TELEMETRY_ENABLED", validateEnvBool},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue, ok := os.LookupEnv(binding.EnvVar); ok && envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

func validateEnvNonEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value must not be blank")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

func validateEnvLogLevel(value string) error {
	if !slices.Contains(validLogLevels, strings.ToLower(strings.TrimSpace(value))) {
		return fmt.Errorf("log level must be one of %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}

var validSSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

func validateEnvSSLMode(value string) error {
	if !slices.Contains(validSSLModes, strings.TrimSpace(value)) {
		return fmt.Errorf("sslmode must be one of %s", strings.Join(validSSLModes, ", "))
	}
	return nil
}

func validateEnvURI(value string) error {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid URI: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URI scheme must be http or https, got '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URI must include a host")
	}
	return nil
}

func validateEnvURLPath(value string) error {
	if !strings.HasPrefix(strings.TrimSpace(value), "/") {
		return fmt.Errorf("path must start with '/'")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", d)
	}
	return nil
}
