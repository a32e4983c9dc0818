package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SourceMap registers a translator for one generated file.
type SourceMap struct {
	Generated string `yaml:"generated" toml:"generated"`
	Map       string `yaml:"map" toml:"map"`
	Kind      string `yaml:"kind" toml:"kind"` // "sourcemap" or "markers"
}

type Config struct {
	Project struct {
		Root      string `yaml:"root" toml:"root"`
		Extension string `yaml:"extension" toml:"extension"`
		Strict    bool   `yaml:"strict" toml:"strict"`
	} `yaml:"project" toml:"project"`
	Decks struct {
		Patterns []string `yaml:"patterns" toml:"patterns"`
	} `yaml:"decks" toml:"decks"`
	Storage struct {
		Path string `yaml:"path" toml:"path"`
	} `yaml:"storage" toml:"storage"`
	Log struct {
		Level string `yaml:"level" toml:"level"`
	} `yaml:"log" toml:"log"`
	SourceMaps []SourceMap `yaml:"source_maps" toml:"source_maps"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Project.Extension = ".link"
	cfg.Storage.Path = "cardmesh.db"
	cfg.Log.Level = "info"
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML or TOML config
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := decode(path, file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if root := os.Getenv("CARDMESH_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if db := os.Getenv("CARDMESH_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if level := os.Getenv("CARDMESH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	for i, sm := range cfg.SourceMaps {
		if sm.Kind == "" {
			cfg.SourceMaps[i].Kind = "sourcemap"
		}
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

// LogLevel maps the configured level name to a slog level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
