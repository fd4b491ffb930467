package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Logging: LogSettings{Level: "info", ModuleLevels: map[string]string{}},
		Database: DatabaseSettings{
			Host: "localhost", Port: 5432, Name: "sightings", User: "sightings",
			SSLMode: "disable", MaxOpenConns: 10, MaxIdleConns: 5,
		},
		Legacy: LegacySettings{
			Enabled: true, URI: "http://localhost:8081",
			SightingsPath: "/sightings", SpeciesPath: "/species",
			Timeout: 5 * time.Second,
		},
		WebServer: WebServerSettings{
			Port: "8080", RequestTimeout: 15 * time.Second, BodyLimit: "64K",
		},
		Telemetry: TelemetrySettings{Enabled: true, Path: "/metrics"},
	}
}

func TestValidateSettings_Valid(t *testing.T) {
	t.Parallel()
	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettings_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"unknown log level", func(s *Settings) { s.Logging.Level = "loud" }, "unknown log level"},
		{"unknown module level", func(s *Settings) { s.Logging.ModuleLevels["datastore"] = "chatty" }, "logging.modulelevels.datastore"},
		{"file logging without path", func(s *Settings) { s.Logging.File.Enabled = true }, "logging.file.path"},
		{"missing db host", func(s *Settings) { s.Database.Host = "" }, "database.host"},
		{"bad db port", func(s *Settings) { s.Database.Port = 0 }, "database.port"},
		{"bad sslmode", func(s *Settings) { s.Database.SSLMode = "yes" }, "database.sslmode"},
		{"idle exceeds open", func(s *Settings) { s.Database.MaxIdleConns = 20 }, "maxidleconns"},
		{"bad web port", func(s *Settings) { s.WebServer.Port = "http" }, "webserver.port"},
		{"zero request timeout", func(s *Settings) { s.WebServer.RequestTimeout = 0 }, "webserver.requesttimeout"},
		{"bad body limit", func(s *Settings) { s.WebServer.BodyLimit = "lots" }, "webserver.bodylimit"},
		{"negative rate limit", func(s *Settings) { s.WebServer.RateLimit = -1 }, "webserver.ratelimit"},
		{"legacy uri missing", func(s *Settings) { s.Legacy.URI = "" }, "legacy.uri"},
		{"legacy uri query", func(s *Settings) { s.Legacy.URI = "http://x/?a=b" }, "query string"},
		{"legacy path", func(s *Settings) { s.Legacy.SightingsPath = "sightings" }, "legacy.sightingspath"},
		{"legacy timeout zero", func(s *Settings) { s.Legacy.Timeout = 0 }, "legacy.timeout must be positive"},
		{"legacy timeout not shorter", func(s *Settings) { s.Legacy.Timeout = 15 * time.Second }, "must be shorter than webserver.requesttimeout"},
		{"telemetry path", func(s *Settings) { s.Telemetry.Path = "metrics" }, "telemetry.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			require.Error(t, err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettings_DisabledLegacySkipsChecks(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Legacy = LegacySettings{Enabled: false}

	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettings_NormalisesLevels(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Logging.Level = " DEBUG "
	s.Logging.ModuleLevels["legacy"] = "Warn"

	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, "warn", s.Logging.ModuleLevels["legacy"])
}
