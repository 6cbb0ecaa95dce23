package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the oggextract directory structure
type Paths struct {
	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths returns the paths under the current user's home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.oggextract)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.oggextract/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// CacheDir returns the probe cache directory (~/.oggextract/cache)
func (p *Paths) CacheDir() string {
	return filepath.Join(p.BaseDir(), "cache")
}

// EnsureCacheDir creates the cache directory if it doesn't exist
func (p *Paths) EnsureCacheDir() error {
	return os.MkdirAll(p.CacheDir(), 0755)
}

// ResolveCacheDir returns the cache directory of ctx, falling back to the
// default location.
func (p *Paths) ResolveCacheDir(ctx *Context) string {
	if ctx != nil && ctx.CacheDir != "" {
		return ctx.CacheDir
	}
	return p.CacheDir()
}
