// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct. Log levels are
// normalised to lower case in place.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	appendErrs := func(errs []string) {
		ve.Errors = append(ve.Errors, errs...)
	}

	appendErrs(validateLogSettings(&settings.Logging))
	appendErrs(validateDatabaseSettings(&settings.Database))
	appendErrs(validateWebServerSettings(&settings.WebServer))
	appendErrs(validateLegacySettings(&settings.Legacy, &settings.WebServer))
	appendErrs(validateTelemetrySettings(&settings.Telemetry))

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateLogSettings(s *LogSettings) []string {
	var errs []string

	check := func(field string, level *string) {
		*level = strings.ToLower(strings.TrimSpace(*level))
		if *level == "" {
			return
		}
		if !slices.Contains(validLogLevels, *level) {
			errs = append(errs, fmt.Sprintf("%s: unknown log level '%s'", field, *level))
		}
	}

	check("logging.level", &s.Level)
	check("logging.file.level", &s.File.Level)
	for module, level := range s.ModuleLevels {
		check("logging.modulelevels."+module, &level)
		s.ModuleLevels[module] = level
	}

	if s.File.Enabled && s.File.Path == "" {
		errs = append(errs, "logging.file.path must be set when file logging is enabled")
	}

	return errs
}

func validateDatabaseSettings(s *DatabaseSettings) []string {
	var errs []string

	if s.Host == "" {
		errs = append(errs, "database.host must be set")
	}
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.Name == "" {
		errs = append(errs, "database.name must be set")
	}
	if s.User == "" {
		errs = append(errs, "database.user must be set")
	}
	if s.SSLMode != "" && !slices.Contains(validSSLModes, s.SSLMode) {
		errs = append(errs, fmt.Sprintf("database.sslmode '%s' is not one of %s", s.SSLMode, strings.Join(validSSLModes, ", ")))
	}
	if s.MaxOpenConns < 0 || s.MaxIdleConns < 0 {
		errs = append(errs, "database connection pool sizes must not be negative")
	}
	if s.MaxOpenConns > 0 && s.MaxIdleConns > s.MaxOpenConns {
		errs = append(errs, "database.maxidleconns must not exceed database.maxopenconns")
	}

	return errs
}

func validateWebServerSettings(s *WebServerSettings) []string {
	var errs []string

	port, err := strconv.Atoi(s.Port)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("webserver.port must be a number between 1 and 65535, got '%s'", s.Port))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, "webserver.requesttimeout must be positive")
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "webserver.shutdowntimeout must not be negative")
	}
	if s.BodyLimit != "" {
		if _, err := bytes.Parse(s.BodyLimit); err != nil {
			errs = append(errs, fmt.Sprintf("webserver.bodylimit '%s' is not a valid size", s.BodyLimit))
		}
	}
	if s.RateLimit < 0 {
		errs = append(errs, "webserver.ratelimit must not be negative")
	}

	return errs
}

// validateLegacySettings also checks the mirror timeout against the request
// timeout: a mirror call must finish before the request that triggered it.
func validateLegacySettings(s *LegacySettings, web *WebServerSettings) []string {
	if !s.Enabled {
		return nil
	}

	var errs []string

	if s.URI == "" {
		errs = append(errs, "legacy.uri must be set when the legacy mirror is enabled")
	} else if err := validateEnvURI(s.URI); err != nil {
		errs = append(errs, fmt.Sprintf("legacy.uri: %v", err))
	} else if u, _ := url.Parse(s.URI); u.RawQuery != "" {
		errs = append(errs, "legacy.uri must not contain a query string")
	}

	for field, path := range map[string]string{"legacy.sightingspath": s.SightingsPath, "legacy.speciespath": s.SpeciesPath} {
		if err := validateEnvURLPath(path); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", field, err))
		}
	}

	if s.Timeout <= 0 {
		errs = append(errs, "legacy.timeout must be positive")
	} else if web.RequestTimeout > 0 && s.Timeout >= web.RequestTimeout {
		errs = append(errs, fmt.Sprintf("legacy.timeout (%s) must be shorter than webserver.requesttimeout (%s)", s.Timeout, web.RequestTimeout))
	}

	slices.Sort(errs)
	return errs
}

func validateTelemetrySettings(s *TelemetrySettings) []string {
	if !s.Enabled {
		return nil
	}
	if !strings.HasPrefix(s.Path, "/") {
		return []string{"telemetry.path must start with '/'"}
	}
	return nil
}
