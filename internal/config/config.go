package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the documentation-site configuration. Field names mirror the
// on-disk schema (mkdocs.yml style): site identity, theme, markdown
// extensions, plugins, and the navigation tree.
type Config struct {
	SiteName        string `yaml:"site_name"`
	SiteDescription string `yaml:"site_description,omitempty"`
	SiteURL         string `yaml:"site_url,omitempty"`
	RepoURL         string `yaml:"repo_url,omitempty"`

	// DocsDir is the directory holding markdown sources; SiteDir receives
	// the rendered site. Both are relative to the config file's directory
	// unless absolute.
	DocsDir string `yaml:"docs_dir,omitempty"`
	SiteDir string `yaml:"site_dir,omitempty"`

	Theme Theme `yaml:"theme,omitempty"`

	// MarkdownExtensions and Plugins are ordered; entry order controls
	// pipeline assembly order and plugin stage order respectively.
	MarkdownExtensions EntryList `yaml:"markdown_extensions,omitempty"`
	Plugins            EntryList `yaml:"plugins,omitempty"`

	Nav NavList `yaml:"nav,omitempty"`

	// Sources lists remote git repositories whose docs are fetched into
	// DocsDir subtrees before a build.
	Sources []Source `yaml:"sources,omitempty"`

	Serve     ServeConfig     `yaml:"serve,omitempty"`
	LinkCheck LinkCheckConfig `yaml:"linkcheck,omitempty"`

	// path holds the config file location for resolving relative dirs.
	path string
}

// Source is a remote git repository contributing documentation pages.
type Source struct {
	URL    string      `yaml:"url"`
	Name   string      `yaml:"name"`
	Branch string      `yaml:"branch,omitempty"`
	Path   string      `yaml:"path,omitempty"` // subdirectory inside the repo, defaults to "docs"
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig carries git credentials for private sources.
type AuthConfig struct {
	Type     string `yaml:"type"` // "token", "basic", "ssh"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
	KeyPath  string `yaml:"key_path,omitempty"`
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	Addr            string   `yaml:"addr,omitempty"`
	LiveReload      *bool    `yaml:"live_reload,omitempty"`
	RebuildInterval string   `yaml:"rebuild_interval,omitempty"` // Go duration, "" disables scheduled rebuilds
	Watch           []string `yaml:"watch,omitempty"`            // extra paths beyond docs_dir and plugin watch paths
}

// LiveReloadEnabled reports whether live reload is on (default true).
func (s ServeConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// RebuildIntervalDuration parses RebuildInterval. Zero means disabled.
func (s ServeConfig) RebuildIntervalDuration() (time.Duration, error) {
	if s.RebuildInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.RebuildInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid serve.rebuild_interval %q: %w", s.RebuildInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("serve.rebuild_interval must not be negative: %s", s.RebuildInterval)
	}
	return d, nil
}

// LinkCheckConfig controls post-build link verification.
type LinkCheckConfig struct {
	External    bool          `yaml:"external,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	Timeout     string        `yaml:"timeout,omitempty"` // per-request, Go duration
	Cache       *LinkCacheRef `yaml:"cache,omitempty"`
}

// LinkCacheRef points at a NATS JetStream KV bucket holding external link results.
type LinkCacheRef struct {
	NATSURL string `yaml:"nats_url"`
	Bucket  string `yaml:"bucket,omitempty"`
	TTL     string `yaml:"ttl,omitempty"`
}

// TimeoutDuration parses Timeout with a 10s default.
func (l LinkCheckConfig) TimeoutDuration() (time.Duration, error) {
	if l.Timeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(l.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid linkcheck.timeout %q: %w", l.Timeout, err)
	}
	return d, nil
}

// Load reads and decodes the configuration file. A .env/.env.local file next
// to the working directory is loaded first (without overriding the process
// environment), and ${VAR} references in the raw config are expanded.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = configPath
	return cfg, nil
}

// Parse decodes configuration bytes and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SiteName == "" {
		c.SiteName = "Documentation"
	}
	if c.DocsDir == "" {
		c.DocsDir = "docs"
	}
	if c.SiteDir == "" {
		c.SiteDir = "site"
	}
	if c.Theme.Name == "" {
		c.Theme.Name = "material"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = "localhost:8000"
	}
	if c.LinkCheck.Concurrency <= 0 {
		c.LinkCheck.Concurrency = 8
	}
	for i := range c.Sources {
		if c.Sources[i].Branch == "" {
			c.Sources[i].Branch = "main"
		}
		if c.Sources[i].Path == "" {
			c.Sources[i].Path = "docs"
		}
	}
}

// Path returns the file the config was loaded from, or "" when built in memory.
func (c *Config) Path() string { return c.path }

// BaseDir is the directory relative paths in the config resolve against.
func (c *Config) BaseDir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// DocsPath resolves DocsDir against the config file's directory.
func (c *Config) DocsPath() string { return c.resolve(c.DocsDir) }

// SitePath resolves SiteDir against the config file's directory.
func (c *Config) SitePath() string { return c.resolve(c.SiteDir) }

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.BaseDir(), dir)
}

// Save writes the configuration back out, preserving extension, plugin and
// nav entry order.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func loadDotEnv() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			// godotenv never overrides variables already set in the process.
			_ = godotenv.Load(p)
			return
		}
	}
}
