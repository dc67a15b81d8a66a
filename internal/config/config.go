package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration. Precedence, lowest to highest:
// defaults, YAML file, environment, command-line flags (applied in main).
type Config struct {
	Addr           string `yaml:"addr"`
	DataDir        string `yaml:"data_dir"`
	ProfileDB      string `yaml:"profile_db"`
	AssetCacheSize int    `yaml:"asset_cache_size"`
	DisableAssets  bool   `yaml:"disable_assets"`
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		DataDir:        "data",
		AssetCacheSize: 64,
	}
}

// Merge overlays non-zero fields from the override onto the base.
func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Addr) != "" {
		result.Addr = strings.TrimSpace(override.Addr)
	}
	if strings.TrimSpace(override.DataDir) != "" {
		result.DataDir = strings.TrimSpace(override.DataDir)
	}
	if strings.TrimSpace(override.ProfileDB) != "" {
		result.ProfileDB = strings.TrimSpace(override.ProfileDB)
	}
	if override.AssetCacheSize > 0 {
		result.AssetCacheSize = override.AssetCacheSize
	}
	if override.DisableAssets {
		result.DisableAssets = true
	}
	return result
}

// LoadFile reads a YAML config file. A missing file is not an error; it
// yields a zero override.
func LoadFile(path string) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// FromEnv reads the SEOFORGE_* environment overrides.
func FromEnv() Config {
	var cfg Config
	cfg.Addr = strings.TrimSpace(os.Getenv("SEOFORGE_ADDR"))
	cfg.DataDir = strings.TrimSpace(os.Getenv("SEOFORGE_DATA_DIR"))
	cfg.ProfileDB = strings.TrimSpace(os.Getenv("SEOFORGE_PROFILE_DB"))
	if raw := strings.TrimSpace(os.Getenv("SEOFORGE_ASSET_CACHE")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.AssetCacheSize = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv("SEOFORGE_DISABLE_ASSETS")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			cfg.DisableAssets = parsed
		}
	}
	return cfg
}

// Load builds the effective configuration from defaults, an optional YAML
// file and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	fileCfg, err := LoadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg = cfg.Merge(fileCfg)
	cfg = cfg.Merge(FromEnv())
	if cfg.ProfileDB == "" {
		cfg.ProfileDB = filepath.Join(cfg.DataDir, "profiles.db")
	}
	return cfg, nil
}

// ConversationDir is where per-session transcripts live.
func (c Config) ConversationDir() string {
	return filepath.Join(c.DataDir, "conversations")
}

// SnapshotDir is where session state snapshots live.
func (c Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}
