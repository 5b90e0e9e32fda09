// Package config loads the small set of settings the cmd/hfs CLI needs:
// where the pool lives on disk and which ref name operations default to.
// It follows the same global-dotfile-plus-repo-file merge pattern the
// rest of this codebase's CLI tooling uses, repo taking precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the settings read from the global and repo-local config
// files.
type Config struct {
	Pool Pool `json:"pool"`
}

// Pool holds storage-layer settings.
type Pool struct {
	Dir        string `json:"dir,omitempty"`
	DefaultRef string `json:"default_ref,omitempty"`
}

// DefaultConfig returns sensible defaults: a pool under the current
// directory's .hfs subdirectory, ref name "main".
func DefaultConfig() *Config {
	return &Config{
		Pool: Pool{
			Dir:        ".hfs/pool",
			DefaultRef: "main",
		},
	}
}

// globalConfigPath is the per-user config file.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".hfsconfig"), nil
}

// repoConfigPath is the per-directory config file.
func repoConfigPath() string {
	return filepath.Join(".hfs", "config")
}

// Load reads the global config, then the repo config (which overrides
// any non-empty field the global one sets), falling back to defaults
// for anything neither file mentions.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if globalPath, err := globalConfigPath(); err == nil {
		if data, err := os.ReadFile(globalPath); err == nil {
			var global Config
			if err := json.Unmarshal(data, &global); err == nil {
				merge(cfg, &global)
			}
		}
	}

	if data, err := os.ReadFile(repoConfigPath()); err == nil {
		var repo Config
		if err := json.Unmarshal(data, &repo); err == nil {
			merge(cfg, &repo)
		}
	}

	return cfg, nil
}

// LoadScope reads only the global (if global is true) or only the repo
// config file, without merging or defaulting, returning an empty
// Config if the file does not exist. This is the base a caller should
// modify before writing back with SaveGlobal/SaveRepo, so that setting
// one field never clobbers sibling fields already on disk.
func LoadScope(global bool) (*Config, error) {
	var path string
	if global {
		p, err := globalConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	} else {
		path = repoConfigPath()
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return &Config{}, nil
	}
	return cfg, nil
}

// SaveGlobal writes cfg to the per-user config file.
func SaveGlobal(cfg *Config) error {
	path, err := globalConfigPath()
	if err != nil {
		return err
	}
	return writeJSON(path, cfg)
}

// SaveRepo writes cfg to the per-directory config file, creating the
// .hfs directory if necessary.
func SaveRepo(cfg *Config) error {
	path := repoConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return writeJSON(path, cfg)
}

func writeJSON(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// merge overlays any non-empty field of src onto dst.
func merge(dst, src *Config) {
	if src.Pool.Dir != "" {
		dst.Pool.Dir = src.Pool.Dir
	}
	if src.Pool.DefaultRef != "" {
		dst.Pool.DefaultRef = src.Pool.DefaultRef
	}
}
