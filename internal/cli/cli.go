// Package cli implements the graphlens command-line interface.
//
// This package provides commands for querying a streaming graph
// backend, rendering snapshots as diagrams, replaying snapshots as a
// mock backend, and managing the pipeline cache and snapshot archive.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - query: Stream a question to the backend and explore the answer graph
//   - render: Generate SVG, PNG, DOT, or JSON artifacts from a snapshot file
//   - serve: Replay a snapshot file as a local streaming backend
//   - archive: Manage the MongoDB snapshot archive
//   - cache: Manage the pipeline cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/graphlens/graphlens/pkg/buildinfo"
	"github.com/graphlens/graphlens/pkg/cache"
	"github.com/graphlens/graphlens/pkg/config"
	"github.com/graphlens/graphlens/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "graphlens"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "GraphLens explores streamed knowledge-graph answers",
		Long:         `GraphLens is a CLI tool for querying a streaming graph backend and turning the answers into explorable, progressively disclosed graph views.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/graphlens/config.toml)")

	root.AddCommand(c.queryCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.archiveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Config loads the user configuration once and caches it.
func (c *CLI) Config() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	c.config = &cfg
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache builds the cache backend selected by the config. Failures
// to reach a remote backend degrade to uncached operation rather than
// failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}

	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		return cache.NewNullCache(), nil
	case config.CacheBackendRedis:
		store, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			printWarning("Redis unavailable at %s, caching disabled", cfg.Cache.RedisAddr)
			c.Logger.Debug("redis connect failed", "err", err)
			return cache.NewNullCache(), nil
		}
		return store, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir resolves the file cache directory from config, falling back
// to ~/.cache/graphlens.
func (c *CLI) cacheDir() (string, error) {
	cfg, err := c.Config()
	if err == nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return config.DefaultCacheDir()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
