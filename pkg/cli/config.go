package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".oggextract"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config represents the configuration file
type Config struct {
	// CurrentContext is the name of the currently active context
	CurrentContext string `yaml:"current_context,omitempty"`

	// Contexts is a map of context name to context configuration
	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// Context is one named set of settings.
type Context struct {
	// Name is the context name
	Name string `json:"name" yaml:"name"`

	// S3 configures access to s3:// URIs (optional)
	S3 *S3Settings `json:"s3,omitempty" yaml:"s3,omitempty"`

	// CacheDir is the probe cache directory. Defaults to ~/.oggextract/cache.
	CacheDir string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`

	// NoCache disables the probe cache
	NoCache bool `json:"no_cache,omitempty" yaml:"no_cache,omitempty"`

	// VerifyChecksums enables page CRC verification
	VerifyChecksums bool `json:"verify_checksums,omitempty" yaml:"verify_checksums,omitempty"`

	// SkipDurationProbe disables the tail scan for the stream duration
	SkipDurationProbe bool `json:"skip_duration_probe,omitempty" yaml:"skip_duration_probe,omitempty"`

	// WindowSize is the read-ahead window in bytes (optional)
	WindowSize int `json:"window_size,omitempty" yaml:"window_size,omitempty"`
}

// S3Settings holds the S3 endpoint and credentials of a context.
type S3Settings struct {
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey    string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey    string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	UsePathStyle bool   `json:"use_path_style,omitempty" yaml:"use_path_style,omitempty"`
}

// LoadConfig loads the configuration file at path, or at
// ~/.oggextract/config.yaml if path is empty. A missing file yields an empty
// configuration; it is created on the first Save.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := NewPaths()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = p.ConfigFile()
	}

	cfg := &Config{
		Contexts:   make(map[string]*Context),
		configPath: path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, ctx := range cfg.Contexts {
		if ctx == nil {
			return nil, fmt.Errorf("failed to parse config %s: context %q is empty", path, name)
		}
		ctx.Name = name
	}
	cfg.configPath = path
	return cfg, nil
}

// Save writes the configuration to disk, creating its directory.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// AddContext adds or replaces a context
func (c *Config) AddContext(name string, ctx *Context) error {
	if name == "" {
		return fmt.Errorf("context name is required")
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext sets the current context
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q not found", name)
	}
	c.CurrentContext = name
	return c.Save()
}

// GetContext returns a specific context
func (c *Config) GetContext(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}
	return ctx, nil
}

// ResolveContext returns the named context. An empty name selects the
// current context, and an empty default context if none is set.
func (c *Config) ResolveContext(name string) (*Context, error) {
	if name != "" {
		return c.GetContext(name)
	}
	if c.CurrentContext == "" {
		return &Context{Name: "default"}, nil
	}
	return c.GetContext(c.CurrentContext)
}

// ListContexts returns all context names in sorted order
func (c *Config) ListContexts() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Redacted returns a copy of the context with secrets masked for display.
func (ctx *Context) Redacted() *Context {
	out := *ctx
	if ctx.S3 != nil {
		s3 := *ctx.S3
		s3.AccessKey = MaskSecret(s3.AccessKey)
		s3.SecretKey = MaskSecret(s3.SecretKey)
		out.S3 = &s3
	}
	return &out
}

// MaskSecret masks a credential for display
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
