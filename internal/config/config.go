// Package config provides centralized configuration for the simulation
// service. Defaults are tuned for local play; environment variables override.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int
	AdminKey    string   // Bearer token for admin endpoints. Empty = disabled.
	CORSOrigins []string // Additional allowed origins beyond localhost dev servers.
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 8080,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	cfg.AdminKey = os.Getenv("NATIONSIM_ADMIN_KEY")
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg
}

// SimConfig holds simulation pacing settings.
type SimConfig struct {
	TickInterval time.Duration // Wall-clock time per simulated year.
	MaxSessions  int           // Cap on concurrent sessions.
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickInterval: 2500 * time.Millisecond,
		MaxSessions:  100,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if ms := getEnvInt("TICK_INTERVAL_MS", 0); ms > 0 {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if n := getEnvInt("MAX_SESSIONS", 0); n > 0 {
		cfg.MaxSessions = n
	}

	return cfg
}

// ArchiveConfig holds run-history storage settings.
type ArchiveConfig struct {
	Enabled bool
	Path    string
}

// DefaultArchive returns the default archive configuration.
func DefaultArchive() ArchiveConfig {
	return ArchiveConfig{
		Enabled: true,
		Path:    "data/nationsim.db",
	}
}

// ArchiveFromEnv returns archive configuration with environment overrides.
func ArchiveFromEnv() ArchiveConfig {
	cfg := DefaultArchive()

	if os.Getenv("ARCHIVE_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if p := os.Getenv("ARCHIVE_PATH"); p != "" {
		cfg.Path = p
	}

	return cfg
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server  ServerConfig
	Sim     SimConfig
	Archive ArchiveConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:  ServerFromEnv(),
		Sim:     SimFromEnv(),
		Archive: ArchiveFromEnv(),
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
