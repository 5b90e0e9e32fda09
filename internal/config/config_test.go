package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(prev) })
	return dir
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Pool.Dir != ".hfs/pool" {
		t.Fatalf("Pool.Dir = %q, want .hfs/pool", cfg.Pool.Dir)
	}
	if cfg.Pool.DefaultRef != "main" {
		t.Fatalf("Pool.DefaultRef = %q, want main", cfg.Pool.DefaultRef)
	}
}

func TestLoadWithNoFilesReturnsDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pool.Dir != ".hfs/pool" || cfg.Pool.DefaultRef != "main" {
		t.Fatalf("Load() = %+v, want defaults", cfg)
	}
}

func TestRepoConfigOverridesGlobal(t *testing.T) {
	chdirTemp(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	global := &Config{Pool: Pool{Dir: "/global/pool", DefaultRef: "trunk"}}
	if err := SaveGlobal(global); err != nil {
		t.Fatalf("SaveGlobal: %v", err)
	}

	repo := &Config{Pool: Pool{DefaultRef: "dev"}}
	if err := SaveRepo(repo); err != nil {
		t.Fatalf("SaveRepo: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pool.Dir != "/global/pool" {
		t.Fatalf("Pool.Dir = %q, want /global/pool (from global)", cfg.Pool.Dir)
	}
	if cfg.Pool.DefaultRef != "dev" {
		t.Fatalf("Pool.DefaultRef = %q, want dev (repo overrides global)", cfg.Pool.DefaultRef)
	}
}

func TestLoadScopeDoesNotMergeOrDefault(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOME", t.TempDir())

	if err := SaveGlobal(&Config{Pool: Pool{Dir: "/global"}}); err != nil {
		t.Fatalf("SaveGlobal: %v", err)
	}

	repoOnly, err := LoadScope(false)
	if err != nil {
		t.Fatalf("LoadScope(false): %v", err)
	}
	if repoOnly.Pool.Dir != "" || repoOnly.Pool.DefaultRef != "" {
		t.Fatalf("LoadScope(false) = %+v, want zero value (no repo file yet)", repoOnly)
	}

	globalOnly, err := LoadScope(true)
	if err != nil {
		t.Fatalf("LoadScope(true): %v", err)
	}
	if globalOnly.Pool.Dir != "/global" {
		t.Fatalf("LoadScope(true).Pool.Dir = %q, want /global", globalOnly.Pool.Dir)
	}
}

func TestSaveRepoCreatesConfigDirectory(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOME", t.TempDir())

	if err := SaveRepo(&Config{Pool: Pool{Dir: "x"}}); err != nil {
		t.Fatalf("SaveRepo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(".hfs", "config")); err != nil {
		t.Fatalf("expected .hfs/config to exist: %v", err)
	}
}
