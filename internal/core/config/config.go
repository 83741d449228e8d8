// Package config loads tickr settings from config.toml and TICKR_* variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const DefaultExportTemplate = `# Time report

Generated {{generated}}. {{count}} entries, {{total}} tracked.
{{#days}}

## {{date}} ({{total}})

{{#entries}}
- {{start}}-{{end}} **{{{activity}}}** ({{duration}}){{#description}}: {{{description}}}{{/description}}{{#tags}} [{{{tags}}}]{{/tags}}
{{/entries}}
{{/days}}
`

// Auth provider names
const (
	AuthLocal  = "local"
	AuthRemote = "remote"
)

type Config struct {
	DBPath    string     `mapstructure:"db_path" toml:"db_path"`
	LogLevel  string     `mapstructure:"log_level" toml:"log_level"`
	LogFormat string     `mapstructure:"log_format" toml:"log_format"`
	Auth      AuthConfig `mapstructure:"auth" toml:"auth"`
	Sync      SyncConfig `mapstructure:"sync" toml:"sync"`
	UI        UIConfig   `mapstructure:"ui" toml:"ui"`

	Dir            string `mapstructure:"-" toml:"-"` // directory holding config.toml
	ExportTemplate string `mapstructure:"-" toml:"-"`
}

type AuthConfig struct {
	Provider string `mapstructure:"provider" toml:"provider"` // local or remote
	URL      string `mapstructure:"url" toml:"url"`
}

type SyncConfig struct {
	ServerURL string `mapstructure:"server_url" toml:"server_url"`
	Timeout   string `mapstructure:"timeout" toml:"timeout"`
}

type UIConfig struct {
	ConfirmDelete bool     `mapstructure:"confirm_delete" toml:"confirm_delete"`
	DefaultTags   []string `mapstructure:"default_tags" toml:"default_tags"`
}

// DefaultDir returns ~/.config/tickr, honoring XDG_CONFIG_HOME
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tickr"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tickr"), nil
}

// DefaultPath returns the config.toml path inside DefaultDir
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the built-in settings for a config directory
func Default(dir string) *Config {
	return &Config{
		DBPath:    filepath.Join(dir, "tickr.db"),
		LogLevel:  "info",
		LogFormat: "console",
		Auth:      AuthConfig{Provider: AuthLocal},
		Sync:      SyncConfig{Timeout: "30s"},
		UI:        UIConfig{ConfirmDelete: true, DefaultTags: []string{}},

		Dir:            dir,
		ExportTemplate: DefaultExportTemplate,
	}
}

// Load reads defaults, then path (or the default config.toml), then
// TICKR_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default("."), nil // Use defaults
		}
		path = p
	}
	dir := filepath.Dir(path)
	def := Default(dir)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("TICKR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, def)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	cfg.Dir = dir
	cfg.ExportTemplate = DefaultExportTemplate
	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	// If custom template exists, use it
	if data, err := os.ReadFile(cfg.ExportTemplatePath()); err == nil {
		cfg.ExportTemplate = string(data)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("auth.provider", def.Auth.Provider)
	v.SetDefault("auth.url", def.Auth.URL)
	v.SetDefault("sync.server_url", def.Sync.ServerURL)
	v.SetDefault("sync.timeout", def.Sync.Timeout)
	v.SetDefault("ui.confirm_delete", def.UI.ConfirmDelete)
	v.SetDefault("ui.default_tags", def.UI.DefaultTags)
}

func normalize(cfg *Config) {
	cfg.Auth.Provider = strings.ToLower(strings.TrimSpace(cfg.Auth.Provider))
	if cfg.Auth.Provider == "" {
		cfg.Auth.Provider = AuthLocal
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if strings.HasPrefix(cfg.DBPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.DBPath = filepath.Join(home, cfg.DBPath[2:])
		}
	}
	if cfg.UI.DefaultTags == nil {
		cfg.UI.DefaultTags = []string{}
	}
}

// Validate checks settings that would only fail later at first use
func (c *Config) Validate() error {
	switch c.Auth.Provider {
	case AuthLocal:
	case AuthRemote:
		if c.Auth.URL == "" {
			return errors.New("auth.url is required when auth.provider is \"remote\"")
		}
	default:
		return fmt.Errorf("unknown auth.provider %q (want %q or %q)", c.Auth.Provider, AuthLocal, AuthRemote)
	}
	if _, err := c.SyncTimeout(); err != nil {
		return err
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	return nil
}

// SyncTimeout parses sync.timeout; empty means 30s
func (c *Config) SyncTimeout() (time.Duration, error) {
	if c.Sync.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Sync.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid sync.timeout %q: %w", c.Sync.Timeout, err)
	}
	return d, nil
}

// SessionPath is where the signed-in token is saved
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, "session.json")
}

// LogPath is where the TUI writes its log
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, "tickr.log")
}

// ExportTemplatePath is the optional override for the markdown export template
func (c *Config) ExportTemplatePath() string {
	return filepath.Join(c.Dir, "export_template.mustache")
}

// Encode renders cfg as TOML
func Encode(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# tickr configuration\n# Environment variables TICKR_<KEY> override these (e.g. TICKR_SYNC_SERVER_URL).\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write saves cfg to path. An existing file is kept unless force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := Encode(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
