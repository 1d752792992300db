// Package config reads the handful of environment-driven settings this
// service needs. Three settings do not justify pulling in a configuration
// library from the pack (viper et al. appear nowhere in the retrieved
// examples for a service this small) — see DESIGN.md.
package config

import "os"

// Config holds the process's runtime settings.
type Config struct {
	ListenAddr string
	LogLevel   string
	// MetricsPath is read from the environment, but the HTTP server serves
	// metrics at the fixed path /metrics and does not consult this value.
	MetricsPath string
}

// Load reads Config from the environment, applying defaults for anything
// unset.
func Load() Config {
	return Config{
		ListenAddr:  getenv("IRONBOOK_LISTEN_ADDR", ":8080"),
		LogLevel:    getenv("IRONBOOK_LOG_LEVEL", "info"),
		MetricsPath: getenv("IRONBOOK_METRICS_PATH", "/metrics"),
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
