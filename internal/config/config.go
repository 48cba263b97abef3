package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jfoltran/growthgraph/internal/graph"
)

// RenderConfig holds defaults for one-off renders.
type RenderConfig struct {
	Size       float64 `toml:"size" json:"size"`
	Format     string  `toml:"format" json:"format"` // "svg", "png" or "json"
	Background string  `toml:"background" json:"background,omitempty"`
}

// AnimationConfig holds the intro timings.
type AnimationConfig struct {
	TickInterval  time.Duration `toml:"tick_interval" json:"tick_interval"`
	RevealDelay   time.Duration `toml:"reveal_delay" json:"reveal_delay"`
	SlideDelay    time.Duration `toml:"slide_delay" json:"slide_delay"`
	IntroDuration time.Duration `toml:"intro_duration" json:"intro_duration"`
	RestartDelay  time.Duration `toml:"restart_delay" json:"restart_delay"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Listen string `toml:"listen" json:"listen"`
	Port   int    `toml:"port" json:"port"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Listen, s.Port)
}

// ExportConfig holds settings for frame export.
type ExportConfig struct {
	Workers int    `toml:"workers" json:"workers"`
	OutDir  string `toml:"out_dir" json:"out_dir"`
}

// FunnelConfig points at an optional question file.
type FunnelConfig struct {
	QuestionsFile string `toml:"questions_file" json:"questions_file,omitempty"`
}

// LoggingConfig holds settings for structured logging.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"` // "json" or "console"
}

// Config is the top-level configuration for growthgraph.
type Config struct {
	Render    RenderConfig    `toml:"render" json:"render"`
	Animation AnimationConfig `toml:"animation" json:"animation"`
	Server    ServerConfig    `toml:"server" json:"server"`
	Export    ExportConfig    `toml:"export" json:"export"`
	Funnel    FunnelConfig    `toml:"funnel" json:"funnel"`
	Logging   LoggingConfig   `toml:"logging" json:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Render: RenderConfig{
			Size:   300,
			Format: "svg",
		},
		Animation: AnimationConfig{
			TickInterval:  20 * time.Millisecond,
			RevealDelay:   100 * time.Millisecond,
			SlideDelay:    5 * time.Second,
			IntroDuration: 3 * time.Second,
			RestartDelay:  2 * time.Second,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1",
			Port:   7654,
		},
		Export: ExportConfig{
			Workers: 4,
			OutDir:  "frames",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path (or the first default location found),
// then applies GROWTHGRAPH_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = findConfigFile()
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".growthgraph", "config.toml"))
	}
	candidates = append(candidates, "/etc/growthgraph/config.toml")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GROWTHGRAPH_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("GROWTHGRAPH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GROWTHGRAPH_SIZE"); v != "" {
		if size, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Render.Size = size
		}
	}
	if v := os.Getenv("GROWTHGRAPH_TICK"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Animation.TickInterval = d
		}
	}
	if v := os.Getenv("GROWTHGRAPH_QUESTIONS"); v != "" {
		cfg.Funnel.QuestionsFile = v
	}
	if v := os.Getenv("GROWTHGRAPH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GROWTHGRAPH_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks that values are sane, filling defaults where a zero value
// has an obvious meaning.
func (c *Config) Validate() error {
	var errs []error

	if err := graph.Validate(0, c.Render.Size); err != nil {
		errs = append(errs, fmt.Errorf("render: %w", err))
	}
	switch c.Render.Format {
	case "":
		c.Render.Format = "svg"
	case "svg", "png", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported render format %q", c.Render.Format))
	}
	if c.Animation.TickInterval <= 0 {
		errs = append(errs, errors.New("animation tick interval must be positive"))
	}
	if c.Animation.RevealDelay < 0 || c.Animation.SlideDelay < 0 || c.Animation.IntroDuration < 0 || c.Animation.RestartDelay < 0 {
		errs = append(errs, errors.New("animation delays must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Export.Workers < 1 {
		c.Export.Workers = 4
	}
	if c.Export.OutDir == "" {
		c.Export.OutDir = "frames"
	}
	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
