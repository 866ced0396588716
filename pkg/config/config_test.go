package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ductwork/pkg/cache"
	"github.com/matzehuels/ductwork/pkg/errors"
	"github.com/matzehuels/ductwork/pkg/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Sizing.PressureDrop != 0.1 || cfg.Sizing.AspectRatio != 2 || cfg.Sizing.Step != 50 {
		t.Errorf("sizing defaults = %+v", cfg.Sizing)
	}
	if cfg.Grid.CellSize != 0.5 {
		t.Errorf("cell size = %g", cfg.Grid.CellSize)
	}
	if cfg.Cache.TTL.Duration != 7*24*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
}

func TestRead(t *testing.T) {
	src := `
[sizing]
pressure_drop = 0.08
aspect_ratio = 4

[steiner]
max_additions = 0

[cache]
ttl = "1h"
`
	cfg, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if cfg.Sizing.PressureDrop != 0.08 || cfg.Sizing.AspectRatio != 4 {
		t.Errorf("sizing = %+v", cfg.Sizing)
	}
	if cfg.Sizing.Step != 50 {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Steiner.MaxAdditions != 0 || cfg.Steiner.MinImprovement != 1 {
		t.Errorf("steiner = %+v", cfg.Steiner)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}

	opts := cfg.Options()
	if *opts.MaxAdditions != 0 || *opts.GroupTolerance != 1 || opts.Params != cfg.Sizing {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"syntax", "[sizing\n", errors.ErrCodeInvalidFormat},
		{"unknown key", "[sizing]\npressure = 1\n", errors.ErrCodeInvalidFormat},
		{"bad ratio", "[sizing]\naspect_ratio = 5\n", errors.ErrCodeInvalidInput},
		{"bad cell", "[grid]\ncell_size_m = 0\n", errors.ErrCodeInvalidInput},
		{"bad backend", "[store]\nbackend = \"s3\"\n", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src))
			if !errors.Is(err, tt.code) {
				t.Errorf("Read() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(Default(), &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cfg, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v\n%s", err, buf.String())
	}
	if cfg != Default() {
		t.Errorf("round trip = %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfg, path, err := Load("")
	if err != nil || path != "" {
		t.Fatalf("Load without files = %q, %v", path, err)
	}
	if cfg != Default() {
		t.Error("Load without files should return defaults")
	}

	if _, _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: %v", err)
	}

	xdg := filepath.Join(dir, "xdg", AppName)
	if err := os.MkdirAll(xdg, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(xdg, "config.toml")
	if err := os.WriteFile(file, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, path, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != file || cfg.Server.Addr != ":9090" {
		t.Errorf("Load = %q, addr %q", path, cfg.Server.Addr)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	cfg := Default()
	dir, err := cfg.CacheDir()
	if err != nil || dir != filepath.Join("/tmp/xdg-cache", AppName) {
		t.Errorf("CacheDir() = %q, %v", dir, err)
	}

	cfg.Cache.Dir = "~/dw"
	home, _ := os.UserHomeDir()
	if dir, _ := cfg.CacheDir(); dir != filepath.Join(home, "dw") {
		t.Errorf("CacheDir() with ~ = %q", dir)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	cfg.Store.Dir = filepath.Join(t.TempDir(), "drawings")

	c, err := cfg.OpenCache(ctx)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("OpenCache() = %T, want *cache.FileCache", c)
	}

	s, err := cfg.OpenStore(ctx)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*store.FileStore); !ok {
		t.Errorf("OpenStore() = %T, want *store.FileStore", s)
	}
}
