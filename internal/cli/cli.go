// Package cli implements the zipcities command-line interface.
//
// The root command runs the pipeline: it reads the ZIP code dataset, keeps
// the most populous entry per (city, state) and writes the JSON city list.
// The cache subcommand manages stored artifacts and completion prints shell
// completion scripts.
//
// Verbose runs (-v) log at debug level with per-row diagnostics and
// deduplication decisions. They always parse the input instead of reusing a
// cached artifact.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zipcities/internal/config"
	"github.com/matzehuels/zipcities/pkg/buildinfo"
	"github.com/matzehuels/zipcities/pkg/cache"
	"github.com/matzehuels/zipcities/pkg/observability"
	"github.com/matzehuels/zipcities/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisPingTimeout bounds the startup check of a configured Redis cache.
	redisPingTimeout = 2 * time.Second

	// redisKeyPrefix scopes artifact keys in a shared Redis instance.
	redisKeyPrefix = appName + ":"
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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// verbose reports whether debug output is enabled. Verbose runs always parse
// the input so row diagnostics are reported even when a cached artifact
// exists.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	setLevel(c.Logger, level)
}

// runFlags holds the root command's flag values.
type runFlags struct {
	input   string
	output  string
	noCache bool
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var flags runFlags

	root := &cobra.Command{
		Use:   appName,
		Short: "Build a deduplicated US city list from a ZIP code database",
		Long: `zipcities reads a US ZIP code CSV dataset and writes a JSON list of
[city, state, population] entries for autocomplete. Each (city, state) pair
appears once, carrying the largest population estimate seen for it.`,
		Example: `  zipcities -o cities.json
  zipcities -i data/zip_code_database.csv -o cities.json -v
  zipcities -c zipcities.toml`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return c.run(cmd.Context(), cfg)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.Flags().StringVarP(&flags.input, "input", "i", pipeline.DefaultInput, "input CSV file containing zip code information")
	root.Flags().StringVarP(&flags.output, "output", "o", "", "output JSON file path (required)")
	root.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the artifact cache")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML config file")

	registerPathCompletion(root)

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and overlays flags that were set
// explicitly on the command line.
func (c *CLI) loadConfig(cmd *cobra.Command, flags runFlags) (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.Input = flags.input
	}
	if fs.Changed("output") {
		cfg.Output = flags.output
	}
	if fs.Changed("no-cache") {
		cfg.NoCache = flags.noCache
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// run executes the pipeline for cfg and reports the outcome.
func (c *CLI) run(ctx context.Context, cfg config.Config) error {
	var hooks observability.PipelineHooks = observability.NewLogPipelineHooks(c.Logger)
	observability.SetCacheHooks(observability.NewLogCacheHooks(c.Logger))

	// Debug output would interleave with the animation.
	var spinner *Spinner
	if !c.verbose() {
		spinner = newSpinner(ctx, os.Stderr, fmt.Sprintf("Reading %s...", cfg.Input))
		hooks = stageHooks{PipelineHooks: hooks, spinner: spinner}
	}
	observability.SetPipelineHooks(hooks)

	timer := startRun(c.Logger)
	runner := c.newRunner(ctx, cfg)
	defer runner.Close()

	if spinner != nil {
		spinner.Start()
	}

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:   cfg.Input,
		Output:  cfg.Output,
		Refresh: c.verbose(),
		Logger:  c.Logger,
	})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	timer.finish(cfg.Input, result)
	printResult(result)
	return nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config) *pipeline.Runner {
	store := c.newCache(ctx, cfg)

	var keyer cache.Keyer
	if _, ok := store.(*cache.RedisCache); ok {
		keyer = cache.NewScopedKeyer(nil, redisKeyPrefix)
	}

	runner := pipeline.NewRunner(store, keyer, c.Logger)
	runner.TTL = cfg.Cache.TTL.Std()
	return runner
}

// newCache selects the artifact cache. Cache problems never fail a run;
// they degrade to the next option and are logged.
func (c *CLI) newCache(ctx context.Context, cfg config.Config) cache.Cache {
	if cfg.NoCache {
		return cache.NewNullCache()
	}

	if cfg.Cache.RedisURL != "" {
		rc, err := connectRedis(ctx, cfg.Cache.RedisURL)
		if err == nil {
			c.Logger.Debug("using redis cache", "addr", rc.Addr())
			return rc
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}

	dir, err := cfg.CacheDir()
	if err != nil {
		c.Logger.Warn("cache directory unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	c.Logger.Debug("using file cache", "dir", fc.Dir())
	return fc
}

// connectRedis opens the Redis cache at url and checks it answers.
func connectRedis(ctx context.Context, url string) (*cache.RedisCache, error) {
	rc, err := cache.NewRedisCache(url)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}
