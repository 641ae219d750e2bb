// Package config describes the catalog service settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"MiniCatalog/pkg/kit"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Store   StoreConfig   `koanf:"store"`
	Metrics MetricsConfig `koanf:"metrics"`
	Limits  LimitsConfig  `koanf:"limits"`
}

type ServerConfig struct {
	Port    int                `koanf:"port" validate:"min=1,max=65535"`
	Timeout kit.ServerTimeouts `koanf:"timeout"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=file postgres"`
	Path   string `koanf:"path" validate:"required_if=Driver file"`
	DSN    string `koanf:"dsn" validate:"required_if=Driver postgres"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token" validate:"required_if=Enabled true"`
}

type LimitsConfig struct {
	// WritesPerMinute caps mutating requests per client address; 0 disables.
	WritesPerMinute int `koanf:"writesperminute" validate:"min=0"`
}

func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8082,
		"server.timeout.read":       15 * time.Second,
		"server.timeout.write":      15 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"server.timeout.readheader": 5 * time.Second,
		"server.timeout.shutdown":   10 * time.Second,
		"log.level":                 "info",
		"store.driver":              DriverFile,
		"store.path":                "database/products.json",
		"metrics.enabled":           false,
		"limits.writesperminute":    0,
	}
}

// Load reads config.yaml, .env and CATALOG_* variables on top of Defaults.
func Load() (Config, error) {
	return kit.LoadConfig[Config](kit.ConfigSource{
		Prefix:   "CATALOG_",
		File:     "config.yaml",
		EnvFile:  ".env",
		Defaults: Defaults(),
	})
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "server.port=%d ", c.Server.Port)
	fmt.Fprintf(&b, "log.level=%s ", c.Log.Level)
	fmt.Fprintf(&b, "store.driver=%s ", c.Store.Driver)
	if c.Store.Driver == DriverFile {
		fmt.Fprintf(&b, "store.path=%s ", c.Store.Path)
	} else {
		fmt.Fprintf(&b, "store.dsn=%s ", maskDSN(c.Store.DSN))
	}
	fmt.Fprintf(&b, "metrics.enabled=%t ", c.Metrics.Enabled)
	fmt.Fprintf(&b, "limits.writesperminute=%d", c.Limits.WritesPerMinute)
	return b.String()
}

func maskDSN(dsn string) string {
	if dsn == "" {
		return "<not configured>"
	}
	if _, host, ok := strings.Cut(dsn, "@"); ok {
		return "****@" + host
	}
	return "****"
}
