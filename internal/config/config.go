// Package config loads poolserve settings from defaults, a YAML file,
// POOLSERVE_* environment variables and command-line flags, in that order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete poolserve configuration.
type Config struct {
	Log    LogConfig    `koanf:"log"`
	Pool   PoolConfig   `koanf:"pool"`
	Server ServerConfig `koanf:"server"`
	Admin  AdminConfig  `koanf:"admin"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// PoolConfig configures the worker pool. Size is checked by pool.Build,
// not here, so an invalid size surfaces as the pool's own creation error.
type PoolConfig struct {
	Size            int           `koanf:"size"`
	OSThreads       bool          `koanf:"os_threads"`
	PinCPU          bool          `koanf:"pin_cpu"`
	RateLimit       float64       `koanf:"rate_limit" validate:"gte=0"`
	RateBurst       int           `koanf:"rate_burst" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr" validate:"required,hostname_port"`
	Root           string        `koanf:"root" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"gte=0"`
	MaxConnections int           `koanf:"max_connections" validate:"gte=0"`
	Routes         []Route       `koanf:"routes" validate:"dive"`
}

// Route adds an exact request-line match to the server's response table.
type Route struct {
	RequestLine string        `koanf:"request_line" validate:"required"`
	Status      string        `koanf:"status" validate:"required"`
	File        string        `koanf:"file" validate:"required"`
	Delay       time.Duration `koanf:"delay" validate:"gte=0"`
}

type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Pool: PoolConfig{
			Size: 4,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7878",
			Root: "public",
		},
		Admin: AdminConfig{
			Addr: "127.0.0.1:9090",
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig into koanf keys.
func DefaultConfigAsMap() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"log.level":              d.Log.Level,
		"log.format":             d.Log.Format,
		"pool.size":              d.Pool.Size,
		"pool.os_threads":        d.Pool.OSThreads,
		"pool.pin_cpu":           d.Pool.PinCPU,
		"pool.rate_limit":        d.Pool.RateLimit,
		"pool.rate_burst":        d.Pool.RateBurst,
		"pool.shutdown_timeout":  d.Pool.ShutdownTimeout.String(),
		"server.addr":            d.Server.Addr,
		"server.root":            d.Server.Root,
		"server.read_timeout":    d.Server.ReadTimeout.String(),
		"server.write_timeout":   d.Server.WriteTimeout.String(),
		"server.max_connections": d.Server.MaxConnections,
		"admin.enabled":          d.Admin.Enabled,
		"admin.addr":             d.Admin.Addr,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every failing field.
func (c Config) Validate() error {
	var msgs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validating config: %w", err)
		}
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	if c.Admin.Enabled && c.Admin.Addr == "" {
		msgs = append(msgs, `Config.Admin.Addr: failed "required" (admin enabled)`)
	}

	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
