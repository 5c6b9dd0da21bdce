package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Canvas   CanvasConfig   `yaml:"canvas" toml:"canvas"`
	Style    StyleConfig    `yaml:"style" toml:"style"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr" validate:"required"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout     Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	// InputRate is the sustained input events per second; negative disables
	// limiting
	InputRate  float64 `yaml:"input_rate" toml:"input_rate"`
	InputBurst int     `yaml:"input_burst" toml:"input_burst" validate:"gte=0"`
}

// DatabaseConfig locates the layout store
type DatabaseConfig struct {
	// Path of the SQLite file; empty disables stored layouts
	Path string `yaml:"path" toml:"path"`
}

// CanvasConfig holds viewport limits and engine pacing
type CanvasConfig struct {
	MinScale      float64  `yaml:"min_scale" toml:"min_scale" validate:"gt=0"`
	MaxScale      float64  `yaml:"max_scale" toml:"max_scale" validate:"gtfield=MinScale"`
	GridSize      float64  `yaml:"grid_size" toml:"grid_size" validate:"gt=0"`
	ZoomStep      float64  `yaml:"zoom_step" toml:"zoom_step" validate:"gt=0"`
	DragThreshold float64  `yaml:"drag_threshold" toml:"drag_threshold" validate:"gte=0"`
	TickInterval  Duration `yaml:"tick_interval" toml:"tick_interval"`
	QueueSize     int      `yaml:"queue_size" toml:"queue_size" validate:"gt=0"`
}

// StyleConfig is the render palette, colors as #rgb, #rrggbb or #rrggbbaa
type StyleConfig struct {
	NodeFill   string  `yaml:"node_fill" toml:"node_fill"`
	EdgeStroke string  `yaml:"edge_stroke" toml:"edge_stroke"`
	EdgeWidth  float64 `yaml:"edge_width" toml:"edge_width" validate:"gt=0"`
	HoverAlpha float64 `yaml:"hover_alpha" toml:"hover_alpha" validate:"gte=0,lte=1"`
}

// LogConfig selects the logger level and encoding
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=json console"`
}

// Duration is a time.Duration that reads and writes as "500ms", "10s"
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by TOML
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the value as a time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
