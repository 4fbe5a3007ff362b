package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the file-backed settings for lanecal.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Calendar CalendarConfig `toml:"calendar"`
	Logging  LoggingConfig  `toml:"logging"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CalendarConfig controls seeding, colors, and grid layout.
type CalendarConfig struct {
	SeedResources int      `toml:"seed_resources"`
	Palette       []string `toml:"palette"`
	DayWidth      int      `toml:"day_width"`
	ConfirmDelete bool     `toml:"confirm_delete"`
}

// ServerConfig controls the `serve` HTTP and MCP listener.
type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string               `toml:"level"`
	DevFile LoggingDevFileConfig `toml:"dev_file"`
}

type LoggingDevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

const (
	minDayWidth = 3
	maxDayWidth = 12
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func defaultPalette() []string {
	return []string{
		"#3b82f6",
		"#ef4444",
		"#10b981",
		"#f59e0b",
		"#8b5cf6",
		"#ec4899",
		"#14b8a6",
		"#6366f1",
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Calendar: CalendarConfig{
			SeedResources: 6,
			Palette:       defaultPalette(),
			DayWidth:      5,
			ConfirmDelete: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: LoggingDevFileConfig{
				Enabled: true,
				Dir:     ".lanecal/log",
			},
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Calendar.SeedResources < 0 {
		return fmt.Errorf("calendar.seed_resources must be >= 0")
	}
	if c.Calendar.DayWidth < minDayWidth || c.Calendar.DayWidth > maxDayWidth {
		return fmt.Errorf("calendar.day_width must be between %d and %d", minDayWidth, maxDayWidth)
	}
	if len(c.Calendar.Palette) == 0 {
		return errors.New("calendar.palette must include at least one color")
	}
	for i, color := range c.Calendar.Palette {
		if !hexColorPattern.MatchString(strings.TrimSpace(color)) {
			return fmt.Errorf("calendar.palette[%d] is not a hex color: %q", i, color)
		}
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}
	api := "/" + strings.Trim(strings.TrimSpace(c.Server.APIEndpoint), "/")
	mcp := "/" + strings.Trim(strings.TrimSpace(c.Server.MCPEndpoint), "/")
	if api == "/" || mcp == "/" {
		return errors.New("server.api_endpoint and server.mcp_endpoint must not be empty")
	}
	if api == mcp {
		return fmt.Errorf("server.api_endpoint and server.mcp_endpoint must differ: %q", api)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Save writes cfg as TOML to path, creating the parent directory. An existing file is
// left untouched and reported with os.ErrExist.
func Save(path string, cfg Config) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("config path is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("write config %q: %w", path, os.ErrExist)
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
