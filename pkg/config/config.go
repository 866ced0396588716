// Package config loads ductwork's TOML configuration.
//
// A config file looks like:
//
//	[sizing]
//	pressure_drop = 0.1   # mmAq/m
//	aspect_ratio = 2
//	step = 50             # mm
//
//	[grid]
//	cell_size_m = 0.5
//
//	[spine]
//	group_tolerance = 1   # cells
//
//	[steiner]
//	max_additions = 25
//	min_improvement = 1
//
//	[cache]
//	dir = "~/.cache/ductwork"
//	redis_addr = ""       # set to use Redis instead of files
//	ttl = "168h"
//
//	[store]
//	backend = "file"      # or "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "ductwork"
//
//	[server]
//	addr = ":8080"
//
// Missing keys keep their defaults. Unknown keys are rejected so that typos
// do not silently fall back to defaults.
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/duct"
	"github.com/matzehuels/ductwork/pkg/duct/spine"
	"github.com/matzehuels/ductwork/pkg/duct/steiner"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/grid"
	"github.com/matzehuels/ductwork/pkg/pipeline"
)

// AppName names the config, cache and data directories.
const AppName = "ductwork"

// FileName is the project-local config file looked up in the working
// directory.
const FileName = "ductwork.toml"

// Store backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config is the full configuration.
type Config struct {
	Sizing  duct.Params   `toml:"sizing"`
	Grid    GridConfig    `toml:"grid"`
	Spine   SpineConfig   `toml:"spine"`
	Steiner SteinerConfig `toml:"steiner"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Server  ServerConfig  `toml:"server"`
}

type GridConfig struct {
	CellSize float64 `toml:"cell_size_m"`
}

type SpineConfig struct {
	GroupTolerance int `toml:"group_tolerance"`
}

type SteinerConfig struct {
	MaxAdditions   int `toml:"max_additions"`
	MinImprovement int `toml:"min_improvement"`
}

// CacheConfig selects the build cache. A non-empty RedisAddr selects
// Redis; otherwise entries are files under Dir.
type CacheConfig struct {
	Dir           string   `toml:"dir,omitempty"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db,omitempty"`
	TTL           Duration `toml:"ttl"`
}

// StoreConfig selects where drawings are saved.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir,omitempty"`
	MongoURI string `toml:"mongo_uri,omitempty"`
	Database string `toml:"database,omitempty"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("168h").
type Duration struct{ time.Duration }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sizing:  duct.DefaultParams(),
		Grid:    GridConfig{CellSize: grid.DefaultCellSize},
		Spine:   SpineConfig{GroupTolerance: spine.DefaultGroupTolerance},
		Steiner: SteinerConfig{MaxAdditions: steiner.DefaultMaxAdditions, MinImprovement: steiner.DefaultMinImprovement},
		Cache:   CacheConfig{TTL: Duration{cache.DefaultTTL}},
		Store:   StoreConfig{Backend: BackendFile, Database: AppName},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Find resolves the config file path. An explicit path is returned as is.
// Otherwise ./ductwork.toml, then $XDG_CONFIG_HOME/ductwork/config.toml
// (~/.config/ductwork/config.toml) are tried. It returns "" if none exists.
func Find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{FileName}
	if dir, err := Dir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Dir returns the XDG config directory for ductwork.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads the config at Find(explicit). Without any file it returns
// the defaults. An explicit path that does not exist is an error.
func Load(explicit string) (Config, string, error) {
	path := Find(explicit)
	if path == "" {
		return Default(), "", nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, path, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, path, err
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, path, errors.Wrap(errors.GetCode(err), err, "config file %s", path)
	}
	return cfg, path, nil
}

// Read decodes a config from r over the defaults and validates it.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse TOML")
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(names, ", "))
	}
	return cfg, cfg.Validate()
}

// Write encodes cfg as TOML.
func Write(cfg Config, w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := c.Sizing.Validate(); err != nil {
		return err
	}
	if err := errors.ValidatePositive("cell size", c.Grid.CellSize); err != nil {
		return err
	}
	if c.Spine.GroupTolerance < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spine group tolerance must not be negative")
	}
	if c.Steiner.MaxAdditions < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "steiner max additions must not be negative")
	}
	if c.Steiner.MinImprovement < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "steiner min improvement must be at least 1")
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (use file or mongo)", c.Store.Backend)
	}
	return nil
}

// Options returns pipeline options carrying the configured build settings.
func (c Config) Options() pipeline.Options {
	tol := c.Spine.GroupTolerance
	adds := c.Steiner.MaxAdditions
	return pipeline.Options{
		Params:         c.Sizing,
		CellSize:       c.Grid.CellSize,
		GroupTolerance: &tol,
		MaxAdditions:   &adds,
		MinImprovement: c.Steiner.MinImprovement,
	}
}

// CacheDir returns the configured cache directory, defaulting to
// $XDG_CACHE_HOME/ductwork (~/.cache/ductwork). A leading ~ is expanded.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir)
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// StoreDir returns the drawing directory for the file backend, defaulting
// to ~/.config/ductwork/drawings.
func (c Config) StoreDir() (string, error) {
	if c.Store.Dir != "" {
		return expandHome(c.Store.Dir)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "drawings"), nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
