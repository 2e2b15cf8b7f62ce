// Package config loads chaoscrypt's TOML configuration file.
//
// The file supplies defaults for command-line flags: Arnold parameters, the
// Baker orientation, which cache backend stores generated secret keys, and the
// log level. Flags given on the command line always win.
//
// # Example
//
//	[arnold]
//	a = 3
//	b = 5
//	rounds = 2
//
//	[baker]
//	orientation = "vertical"
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[log]
//	level = "debug"
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/chaoscrypt/pkg/arnold"
	"github.com/matzehuels/chaoscrypt/pkg/cache"
	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/pipeline"
	"github.com/matzehuels/chaoscrypt/pkg/transform"
)

const appName = "chaoscrypt"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Arnold ArnoldConfig `toml:"arnold"`
	Baker  BakerConfig  `toml:"baker"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ArnoldConfig holds cat map defaults.
type ArnoldConfig struct {
	A      int `toml:"a"`
	B      int `toml:"b"`
	Rounds int `toml:"rounds"`
}

// BakerConfig holds Baker map defaults.
type BakerConfig struct {
	Orientation string `toml:"orientation"`
}

// CacheConfig selects where generated secret keys are kept.
type CacheConfig struct {
	Backend string      `toml:"backend"` // file, redis or none
	Dir     string      `toml:"dir"`     // file backend directory; empty uses the XDG cache dir
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr        string        `toml:"addr"`
	Password    string        `toml:"password"`
	DB          int           `toml:"db"`
	DialTimeout time.Duration `toml:"dial_timeout"`
	Prefix      string        `toml:"prefix"` // namespace for keys on a shared server
}

// LogConfig sets the default log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Arnold: ArnoldConfig{
			A:      pipeline.DefaultArnoldA,
			B:      pipeline.DefaultArnoldB,
			Rounds: pipeline.DefaultRounds,
		},
		Baker: BakerConfig{Orientation: pipeline.DefaultOrientation},
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: appName + ":"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns the config file location (~/.config/chaoscrypt/config.toml,
// or under $XDG_CONFIG_HOME when set).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path loads
// the default location, where a missing file is not an error. Unknown keys
// are rejected so typos do not pass silently.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(string(data))
}

// Parse decodes TOML text over the defaults and validates the result.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := (arnold.Params{A: c.Arnold.A, B: c.Arnold.B}).Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "[arnold]")
	}
	if c.Arnold.Rounds < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "[arnold] rounds must be non-negative, got %d", c.Arnold.Rounds)
	}
	if _, err := transform.ParseOrientation(c.Baker.Orientation); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "[baker]")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.Redis.Addr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "[cache.redis] addr is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig,
			"[cache] invalid backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, errs.Wrap(errs.ErrCodeInvalidConfig, err, "[log]")
	}
	return level, nil
}

// PipelineOptions returns pipeline options for mapName seeded from the
// config defaults.
func (c *Config) PipelineOptions(mapName string) pipeline.Options {
	return pipeline.Options{
		Map:         mapName,
		A:           c.Arnold.A,
		B:           c.Arnold.B,
		Rounds:      c.Arnold.Rounds,
		Orientation: c.Baker.Orientation,
	}
}

// RedisCacheConfig converts the redis section for the cache package.
func (c *Config) RedisCacheConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:        c.Cache.Redis.Addr,
		Password:    c.Cache.Redis.Password,
		DB:          c.Cache.Redis.DB,
		DialTimeout: c.Cache.Redis.DialTimeout,
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
