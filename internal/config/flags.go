package config

import "github.com/spf13/pflag"

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":       "log.level",
	"log-format":      "log.format",
	"pool-size":       "pool.size",
	"os-threads":      "pool.os_threads",
	"pin-cpu":         "pool.pin_cpu",
	"rate-limit":      "pool.rate_limit",
	"rate-burst":      "pool.rate_burst",
	"addr":            "server.addr",
	"root":            "server.root",
	"max-connections": "server.max_connections",
	"admin":           "admin.enabled",
	"admin-addr":      "admin.addr",
}

// RegisterFlags defines the configuration flags on fs. Their defaults
// mirror DefaultConfig so help output shows the effective values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	fs.String("log-level", d.Log.Level, "log level (trace, debug, info, warn, error)")
	fs.String("log-format", d.Log.Format, "log format (console, json)")
	fs.IntP("pool-size", "n", d.Pool.Size, "number of pool workers")
	fs.Bool("os-threads", d.Pool.OSThreads, "lock each worker to its own OS thread")
	fs.Bool("pin-cpu", d.Pool.PinCPU, "pin each worker thread to a CPU (implies --os-threads, linux only)")
	fs.Float64("rate-limit", d.Pool.RateLimit, "max jobs started per second, 0 for no limit")
	fs.Int("rate-burst", d.Pool.RateBurst, "jobs allowed to start back to back under --rate-limit")
	fs.String("addr", d.Server.Addr, "TCP address to listen on")
	fs.String("root", d.Server.Root, "directory holding hello.html and 404.html")
	fs.Int("max-connections", d.Server.MaxConnections, "stop after this many connections, 0 for no limit")
	fs.Bool("admin", d.Admin.Enabled, "serve /healthz, /stats and /metrics")
	fs.String("admin-addr", d.Admin.Addr, "admin HTTP address")
}
