// Package config loads the keizu configuration file.
//
// Configuration lives in a TOML file, resolved in order from the --config
// flag, $KEIZU_CONFIG, and ~/.config/keizu/config.toml. Every field has a
// working default so the tool runs without any file at all.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/takumik/keizu/pkg/ledger"
	"github.com/takumik/keizu/pkg/render"
)

// Cache backend names accepted in the config file.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the top-level configuration.
type Config struct {
	Ledger LedgerConfig `toml:"ledger"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LedgerConfig controls workbook parsing.
type LedgerConfig struct {
	// Sheet is the worksheet read when the CLI flag is absent.
	Sheet string `toml:"sheet"`
}

// RenderConfig controls diagram output.
type RenderConfig struct {
	// Font overrides the platform-resolved family when set.
	Font string `toml:"font"`

	// Direction is the rank direction, TB or LR.
	Direction string `toml:"direction"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of file, redis, or none.
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Empty means the user cache dir.
	Dir string `toml:"dir"`

	// RedisAddr is the redis backend's host:port.
	RedisAddr string `toml:"redis_addr"`

	// Scope prefixes every cache key, isolating deployments that share a
	// Redis instance. Empty means no prefix.
	Scope string `toml:"scope"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// MaxUploadMB caps workbook upload size in megabytes.
	MaxUploadMB int64 `toml:"max_upload_mb"`

	// MongoURI enables the MongoDB history store when set. Empty keeps
	// history in memory.
	MongoURI string `toml:"mongo_uri"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Ledger: LedgerConfig{
			Sheet: ledger.DefaultSheet,
		},
		Render: RenderConfig{
			Direction: render.DirectionTopBottom,
		},
		Cache: CacheConfig{
			Backend:   CacheBackendFile,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 16,
		},
	}
}

// Load reads the config file at path, or the first discovered location
// when path is empty. A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = discover()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyFallbacks()
	return cfg, nil
}

// CacheDir returns the directory for the file cache backend, falling back
// to the user cache dir when unconfigured.
func (c Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "keizu")
}

// MaxUploadBytes returns the upload cap in bytes.
func (c Config) MaxUploadBytes() int64 {
	mb := c.Server.MaxUploadMB
	if mb <= 0 {
		mb = Defaults().Server.MaxUploadMB
	}
	return mb << 20
}

// applyFallbacks restores defaults for fields an explicit config file set
// to empty.
func (c *Config) applyFallbacks() {
	def := Defaults()
	if c.Ledger.Sheet == "" {
		c.Ledger.Sheet = def.Ledger.Sheet
	}
	if c.Render.Direction == "" {
		c.Render.Direction = def.Render.Direction
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = def.Cache.Backend
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = def.Cache.RedisAddr
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
}

// discover finds the config file from the environment or the standard
// user config location.
func discover() string {
	if p := os.Getenv("KEIZU_CONFIG"); p != "" {
		return p
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(base, "keizu", "config.toml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
