// Package config loads bracketeer's settings.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/bracketeer/config.toml
//  3. environment variables prefixed with BRACKETEER_, with a .env file in
//     the working directory filling in variables the process does not set
//  4. command-line flags, applied by the caller
//
// An example file:
//
//	server_url = "http://arena.local:5000"
//	timeout    = "15s"
//	rate_limit = 5
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[serve]
//	addr          = ":8080"
//	poll_interval = "2s"
//
//	[render]
//	style = "handdrawn"
package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/errors"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

const (
	appName = "bracketeer"

	// EnvPrefix prefixes every environment variable, e.g. BRACKETEER_SERVER_URL.
	EnvPrefix = "BRACKETEER_"

	// DefaultTimeout bounds a single backend request.
	DefaultTimeout = 10 * time.Second

	// DefaultAddr is the listen address of the serve command.
	DefaultAddr = ":8080"

	// DefaultPollInterval is how often the server refetches the bracket.
	DefaultPollInterval = 2 * time.Second

	// DotEnvFile is read from the working directory by [Load].
	DotEnvFile = ".env"

	// DefaultMongoDatabase is used when a mongo cache names no database.
	DefaultMongoDatabase = "bracketeer"
)

// Config holds every setting. Field tags name the TOML key and the
// environment variable (without EnvPrefix).
type Config struct {
	ServerURL string        `toml:"server_url" env:"SERVER_URL"`
	Timeout   time.Duration `toml:"timeout" env:"TIMEOUT"`
	RateLimit float64       `toml:"rate_limit" env:"RATE_LIMIT"` // requests per second, 0 for none

	Cache  CacheConfig  `toml:"cache" envPrefix:"CACHE_"`
	Serve  ServeConfig  `toml:"serve" envPrefix:"SERVE_"`
	Render RenderConfig `toml:"render" envPrefix:"RENDER_"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend" env:"BACKEND"`
	Dir           string        `toml:"dir" env:"DIR"`
	TTL           time.Duration `toml:"ttl" env:"TTL"` // problem markup
	RedisURL      string        `toml:"redis_url" env:"REDIS_URL"`
	MongoURI      string        `toml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string        `toml:"mongo_database" env:"MONGO_DATABASE"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr         string        `toml:"addr" env:"ADDR"`
	PollInterval time.Duration `toml:"poll_interval" env:"POLL_INTERVAL"`
}

// RenderConfig holds render defaults shared by the CLI and the server.
type RenderConfig struct {
	Style  string  `toml:"style" env:"STYLE"`
	Scale  float64 `toml:"scale" env:"SCALE"`
	Strict bool    `toml:"strict" env:"STRICT"`
}

// Default returns the built-in configuration.
func Default() Config {
	dir, err := CacheDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), appName)
	}
	return Config{
		ServerURL: arena.DefaultURL,
		Timeout:   DefaultTimeout,
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			Dir:           dir,
			TTL:           cache.TTLProblem,
			MongoDatabase: DefaultMongoDatabase,
		},
		Serve: ServeConfig{
			Addr:         DefaultAddr,
			PollInterval: DefaultPollInterval,
		},
		Render: RenderConfig{
			Style: pipeline.DefaultStyle,
			Scale: pipeline.DefaultScale,
		},
	}
}

// Load layers the file at path and the process environment over the
// defaults and validates the result. An empty path means [DefaultPath]. A
// missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		err := LoadFile(&cfg, path)
		if err != nil && (required || !errors.Is(err, errors.ErrCodeFileNotFound)) {
			return Config{}, err
		}
	}
	environ, err := Environment(DotEnvFile)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&cfg, environ); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes the TOML file at path over cfg. Keys the file sets
// replace the current values; unknown keys are rejected.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return Decode(cfg, string(data), path)
}

// Decode decodes TOML text over cfg. name labels errors.
func Decode(cfg *Config, text, name string) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", name)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	return nil
}

// Environment returns the process environment over the variables in the
// dotenv file at path. A missing file contributes nothing.
func Environment(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
		}
		vars = make(map[string]string)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars, nil
}

// ApplyEnv overrides cfg with BRACKETEER_* variables. A nil environ reads
// the process environment. Unset variables leave fields untouched.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse environment")
	}
	return nil
}

var backends = []string{cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendMongo}

// Validate checks every value.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server_url must be an http(s) URL, got %q", c.ServerURL)
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must be positive, got %s", c.Timeout)
	}
	if c.RateLimit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "rate_limit must not be negative, got %g", c.RateLimit)
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend must be one of %s, got %q", strings.Join(backends, ", "), c.Cache.Backend)
	}
	switch {
	case c.Cache.Backend == cache.BackendFile && c.Cache.Dir == "":
		return errors.New(errors.ErrCodeInvalidInput, "cache.dir is required for the file backend")
	case c.Cache.Backend == cache.BackendRedis && c.Cache.RedisURL == "":
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
	case c.Cache.Backend == cache.BackendMongo && c.Cache.MongoURI == "":
		return errors.New(errors.ErrCodeInvalidInput, "cache.mongo_uri is required for the mongo backend")
	}
	if c.Serve.PollInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "serve.poll_interval must be positive, got %s", c.Serve.PollInterval)
	}
	if err := pipeline.ValidateStyle(c.Render.Style); err != nil {
		return err
	}
	if c.Render.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "render.scale must be positive, got %g", c.Render.Scale)
	}
	return nil
}

// CacheOptions converts the cache section for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		RedisURL:      c.Cache.RedisURL,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
	}
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/bracketeer/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/bracketeer/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
