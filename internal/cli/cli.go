// Package cli implements the bracketeer command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bracketeer/pkg/buildinfo"
	"github.com/matzehuels/bracketeer/pkg/cache"
	"github.com/matzehuels/bracketeer/pkg/config"
	"github.com/matzehuels/bracketeer/pkg/integrations/arena"
	"github.com/matzehuels/bracketeer/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bracketeer"

	// defaultOutputBase names rendered files when neither --output nor
	// --file is given.
	defaultOutputBase = "bracket"

	// annotationConfigOptional marks commands that run even when the file
	// named by --config does not exist yet.
	annotationConfigOptional = "bracketeer/config-optional"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags
	configPath string
	serverURL  string
	noCache    bool

	// cfg is loaded before any subcommand runs.
	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Bracketeer draws tournament brackets and runs their matches",
		Long: `Bracketeer lays out single-elimination, double-elimination and hybrid
tournament brackets from a tournament backend, renders them as SVG, PNG or
JSON, and drives the match workflow (start, complete, reset) with a live
elapsed-time view.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			required := c.configPath != "" && cmd.Annotations[annotationConfigOptional] == ""
			if err := c.loadConfig(required); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/bracketeer/config.toml)")
	flags.StringVarP(&c.serverURL, "server", "s", "", "tournament backend URL (default "+arena.DefaultURL+")")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the problem and artifact caches")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.roundsCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.createCommand())
	root.AddCommand(c.matchCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig layers the global flags over the config file and environment.
func (c *CLI) loadConfig(required bool) error {
	cfg, err := config.Load(c.configPath, required)
	if err != nil {
		return err
	}
	if c.serverURL != "" {
		cfg.ServerURL = c.serverURL
	}
	if c.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "server", cfg.ServerURL, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Backend, Cache and Runner Factories
// =============================================================================

// services bundles what most commands need: the cache, the backend client
// that shares it and a pipeline runner on top of both.
type services struct {
	cache  cache.Cache
	client *arena.Client
	runner *pipeline.Runner
}

// Close releases the cache.
func (s *services) Close() error {
	return s.cache.Close()
}

// connect opens the configured cache and builds a backend client and
// pipeline runner around it.
func (c *CLI) connect(ctx context.Context) (*services, error) {
	ch, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	return &services{
		cache:  ch,
		client: c.newClient(ch),
		runner: pipeline.NewRunner(ch, nil, c.Logger),
	}, nil
}

// openCache opens the configured cache. A file cache whose directory cannot
// be created falls back to no caching.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	ch, err := cache.Open(ctx, c.cfg.CacheOptions())
	if err != nil {
		if c.cfg.Cache.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "dir", c.cfg.Cache.Dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return ch, nil
}

// newClient creates a backend client configured from the loaded config.
func (c *CLI) newClient(ch cache.Cache) *arena.Client {
	client := arena.NewClient(c.cfg.ServerURL, ch, c.cfg.Cache.TTL)
	client.SetTimeout(c.cfg.Timeout)
	client.SetRateLimit(c.cfg.RateLimit, 1)
	client.SetLogger(c.Logger)
	return client
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults applies configured render defaults before flags are read.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	if opts.Style == "" {
		opts.Style = c.cfg.Render.Style
	}
	if opts.Scale == 0 {
		opts.Scale = c.cfg.Render.Scale
	}
	opts.Strict = opts.Strict || c.cfg.Render.Strict
	opts.Logger = c.Logger
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
