// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers default values; keep in sync with config.yaml.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.file.enabled", false)
	viper.SetDefault("logging.file.path", "logs/sightings.log")
	viper.SetDefault("logging.file.level", "info")
	viper.SetDefault("logging.file.maxsize", 100)
	viper.SetDefault("logging.file.maxbackups", 5)
	viper.SetDefault("logging.file.maxage", 30)
	viper.SetDefault("logging.file.compress", true)
	viper.SetDefault("logging.modulelevels", map[string]string{})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "sightings")
	viper.SetDefault("database.user", "sightings")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxopenconns", 10)
	viper.SetDefault("database.maxidleconns", 5)
	viper.SetDefault("database.connmaxlifetime", 30*time.Minute)
	viper.SetDefault("database.connecttimeout", 5*time.Second)
	viper.SetDefault("database.slowquerythreshold", 200*time.Millisecond)

	viper.SetDefault("legacy.enabled", true)
	viper.SetDefault("legacy.uri", "http://localhost:8081")
	viper.SetDefault("legacy.sightingspath", "/sightings")
	viper.SetDefault("legacy.speciespath", "/species")
	viper.SetDefault("legacy.timeout", 5*time.Second)

	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.requesttimeout", 15*time.Second)
	viper.SetDefault("webserver.shutdowntimeout", 10*time.Second)
	viper.SetDefault("webserver.bodylimit", "64K")
	viper.SetDefault("webserver.ratelimit", 0.0)
	viper.SetDefault("webserver.alloworigins", []string{"*"})

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.path", "/metrics")
}
