// Package cli implements the ductwork command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ductwork/pkg/buildinfo"
	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/config"
	"github.com/matzehuels/ductwork/pkg/drawing"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/observability"
	"github.com/matzehuels/ductwork/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        config.Config
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
		Short: "Ductwork sizes and lays out air-supply duct networks",
		Long: `Ductwork places an air inlet and outlets on a grid, connects them with a
trunk-and-branch or shortest-path duct network, and sizes every run for the
air it carries at a constant pressure drop.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./ductwork.toml, then ~/.config/ductwork/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the build cache")

	root.AddCommand(c.sizeCommand())
	root.AddCommand(c.supplyCommand())
	root.AddCommand(c.newCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.terminalCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file before any command runs and routes
// observability events to the debug log.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, path, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	return nil
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(ctx), nil, c.Logger)
}

// newCache opens the configured cache. Failing to open it is not fatal: the
// command runs uncached.
func (c *CLI) newCache(ctx context.Context) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	ch, err := c.cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// openDrawing loads a drawing file and restores its network.
func (c *CLI) openDrawing(path string) (*drawing.Drawing, *duct.Network, error) {
	d, err := drawing.Load(path)
	if err != nil {
		return nil, nil, err
	}
	net, err := d.Network()
	if err != nil {
		return nil, nil, err
	}
	net.SetLogger(c.Logger)
	return d, net, nil
}

// saveDrawing captures net into d and writes it to path.
func (c *CLI) saveDrawing(d *drawing.Drawing, net *duct.Network, path string) error {
	d.Capture(net, d.Params, d.Strategy)
	if err := drawing.Save(d, path); err != nil {
		return err
	}
	c.Logger.Debug("saved drawing", "path", path, "terminals", len(d.Terminals), "segments", len(d.Segments))
	return nil
}
