package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPaths(t *testing.T) {
	paths, err := NewPaths()
	if err != nil {
		t.Fatalf("NewPaths error: %v", err)
	}
	if paths.HomeDir == "" {
		t.Error("HomeDir should not be empty")
	}
}

func TestPaths(t *testing.T) {
	tmpDir := t.TempDir()
	paths := &Paths{HomeDir: tmpDir}

	base := filepath.Join(tmpDir, DefaultBaseDir)
	if got := paths.BaseDir(); got != base {
		t.Errorf("BaseDir() = %q, want %q", got, base)
	}
	if got := paths.ConfigFile(); got != filepath.Join(base, DefaultConfigFile) {
		t.Errorf("ConfigFile() = %q", got)
	}
	if got := paths.CacheDir(); got != filepath.Join(base, "cache") {
		t.Errorf("CacheDir() = %q", got)
	}

	if err := paths.EnsureCacheDir(); err != nil {
		t.Fatalf("EnsureCacheDir error: %v", err)
	}
	if info, err := os.Stat(paths.CacheDir()); err != nil || !info.IsDir() {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestPaths_ResolveCacheDir(t *testing.T) {
	paths := &Paths{HomeDir: "/home/u"}
	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{"nil context", nil, paths.CacheDir()},
		{"unset", &Context{}, paths.CacheDir()},
		{"override", &Context{CacheDir: "/var/cache/ogg"}, "/var/cache/ogg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paths.ResolveCacheDir(tt.ctx); got != tt.want {
				t.Errorf("ResolveCacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}
