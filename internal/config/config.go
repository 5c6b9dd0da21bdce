// Package config loads stemma's settings from YAML or TOML files.
//
// Config file locations (priority order):
//  1. $STEMMA_CONFIG
//  2. ./stemma.yaml or ./stemma.toml
//  3. ~/.config/stemma/config.yaml
//  4. /etc/stemma/config.yaml
//
// A handful of STEMMA_* environment variables override file values, and a
// .env file in the working directory is read first when present.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stemma/internal/domain"
	"stemma/internal/render"
	"stemma/internal/validation"
	"stemma/internal/viewport"
)

// Environment overrides
const (
	EnvAddr     = "STEMMA_ADDR"
	EnvDatabase = "STEMMA_DB"
	EnvLogLevel = "STEMMA_LOG_LEVEL"
	EnvRate     = "STEMMA_INPUT_RATE"
)

// LoadDotEnv reads .env style files into the process environment, skipping
// missing ones. Existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path; the extension picks the
// format, anything other than .toml is read as YAML
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, path, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// Parse decodes config data in the given format ("yaml" or "toml") and
// fills unset values with defaults
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes config to the specified path in the format its extension names
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var buf bytes.Buffer
	if formatOf(path) == "toml" {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	return os.WriteFile(path, buf.Bytes(), 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Server.InputRate == 0 {
		c.Server.InputRate = 240
	}
	if c.Server.InputBurst == 0 {
		c.Server.InputBurst = 60
	}

	if c.Database.Path == "" {
		c.Database.Path = "./stemma.db"
	}

	d := viewport.DefaultParams()
	if c.Canvas.MinScale == 0 {
		c.Canvas.MinScale = d.MinScale
	}
	if c.Canvas.MaxScale == 0 {
		c.Canvas.MaxScale = d.MaxScale
	}
	if c.Canvas.GridSize == 0 {
		c.Canvas.GridSize = d.GridSize
	}
	if c.Canvas.ZoomStep == 0 {
		c.Canvas.ZoomStep = d.ZoomStep
	}
	if c.Canvas.DragThreshold == 0 {
		c.Canvas.DragThreshold = d.DragThreshold
	}
	if c.Canvas.TickInterval == 0 {
		c.Canvas.TickInterval = Duration(100 * time.Millisecond)
	}
	if c.Canvas.QueueSize == 0 {
		c.Canvas.QueueSize = 64
	}

	if c.Style.NodeFill == "" {
		c.Style.NodeFill = "#ffffff"
	}
	if c.Style.EdgeStroke == "" {
		c.Style.EdgeStroke = "#ffffff"
	}
	if c.Style.EdgeWidth == 0 {
		c.Style.EdgeWidth = render.DefaultStyle().EdgeWidth
	}
	if c.Style.HoverAlpha == 0 {
		c.Style.HoverAlpha = render.DefaultStyle().HoverAlpha
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// applyEnv overlays STEMMA_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvRate); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRate, err)
		}
		c.Server.InputRate = r
	}
	return nil
}

// Validate checks field constraints and that the palette parses
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.RenderStyle(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Params returns the viewport limits the canvas runs with
func (c *Config) Params() viewport.Params {
	return viewport.Params{
		MinScale:      c.Canvas.MinScale,
		MaxScale:      c.Canvas.MaxScale,
		GridSize:      c.Canvas.GridSize,
		ZoomStep:      c.Canvas.ZoomStep,
		DragThreshold: c.Canvas.DragThreshold,
	}
}

// RenderStyle converts the palette into a render.Style
func (c *Config) RenderStyle() (render.Style, error) {
	fill, err := domain.ParseHexColor(c.Style.NodeFill)
	if err != nil {
		return render.Style{}, fmt.Errorf("style.node_fill: %w", err)
	}
	stroke, err := domain.ParseHexColor(c.Style.EdgeStroke)
	if err != nil {
		return render.Style{}, fmt.Errorf("style.edge_stroke: %w", err)
	}
	return render.Style{
		NodeFill:   fill,
		HoverAlpha: c.Style.HoverAlpha,
		EdgeStroke: stroke,
		EdgeWidth:  c.Style.EdgeWidth,
	}, nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}
