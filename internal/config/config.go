package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/editor"
)

type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	AllowedOrigins   string `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	CanvasWidth      int    `envconfig:"CANVAS_WIDTH" default:"800"`
	CanvasHeight     int    `envconfig:"CANVAS_HEIGHT" default:"600"`
	CanvasBackground string `envconfig:"CANVAS_BACKGROUND" default:"#ffffff"`
	PresetsFile      string `envconfig:"PRESETS_FILE"`

	MaxRooms    int           `envconfig:"MAX_ROOMS" default:"1000"`
	RoomIdleTTL time.Duration `envconfig:"ROOM_IDLE_TTL" default:"10m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas size %dx%d must be positive", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if err := document.CheckSize(cfg.CanvasWidth, cfg.CanvasHeight); err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	if cfg.MaxRooms <= 0 || cfg.RoomIdleTTL <= 0 {
		return nil, fmt.Errorf("room limits %d, %s must be positive", cfg.MaxRooms, cfg.RoomIdleTTL)
	}
	return &cfg, nil
}

// Origins splits ALLOWED_ORIGINS into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Presets are the toolbar defaults new editors start with, loaded from
// PRESETS_FILE:
//
//	[toolbar]
//	stroke = "#333333"
//	stroke_width = 2
//	fill = "#ffffff"
type Presets struct {
	Toolbar editor.Toolbar `toml:"toolbar"`
}

// LoadPresets reads presets from path. An empty path yields the default
// toolbar. Missing keys keep their defaults.
func LoadPresets(path string) (Presets, error) {
	p := Presets{Toolbar: editor.DefaultToolbar()}
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read presets: %w", err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode presets %s: %w", path, err)
	}
	if p.Toolbar.StrokeWidth < 0 {
		return p, fmt.Errorf("decode presets %s: negative stroke_width %v", path, p.Toolbar.StrokeWidth)
	}
	return p, nil
}
