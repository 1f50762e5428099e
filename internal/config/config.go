// Package config loads kanbo settings from YAML files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backends
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the merged application configuration
type Config struct {
	DataDir string        `yaml:"data_dir" mapstructure:"data_dir"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
}

// StorageConfig selects and configures the blob store
type StorageConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	RedisURL    string `yaml:"redis_url" mapstructure:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix" mapstructure:"redis_prefix"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// UIConfig holds terminal UI options
type UIConfig struct {
	// Theme is used when nobody is logged in
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// DefaultDataDir returns the default data directory path
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "kanbo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kanbo"
	}
	return filepath.Join(home, ".local", "share", "kanbo")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Storage: StorageConfig{
			Backend:     BackendSQLite,
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "kanbo:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Theme: "nord",
		},
	}
}

// SQLiteFile returns the database path, derived from DataDir when unset
func (c *Config) SQLiteFile() string {
	if c.Storage.SQLitePath != "" {
		return c.Storage.SQLitePath
	}
	return filepath.Join(c.DataDir, "kanbo.db")
}

// Validate rejects values the app cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want sqlite, redis or memory)", c.Storage.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// Load reads the global config, then the project config, then KANBO_*
// environment variables. Missing files are skipped.
func Load() (*Config, error) {
	return LoadFrom(GlobalConfigPath(), ProjectConfigPath())
}

// LoadFrom merges the given files in order over the defaults
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("KANBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.Storage.SQLitePath = expandHome(cfg.Storage.SQLitePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.redis_url", cfg.Storage.RedisURL)
	v.SetDefault("storage.redis_prefix", cfg.Storage.RedisPrefix)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("ui.theme", cfg.UI.Theme)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GlobalConfigPath returns the path to the per-user config file
func GlobalConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "kanbo", "config.yaml")
}

// ProjectConfigPath returns the path to the config file in the working directory
func ProjectConfigPath() string {
	cwd, _ := os.Getwd()
	return filepath.Join(cwd, ".kanbo", "config.yaml")
}

// WriteDefault writes a commented default config to path
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	content := `# kanbo configuration

# Where boards, accounts and logs are kept
# data_dir: ~/.local/share/kanbo

storage:
  backend: sqlite  # "sqlite", "redis" or "memory"
  # sqlite_path: ~/.local/share/kanbo/kanbo.db
  redis_url: redis://localhost:6379/0
  redis_prefix: "kanbo:"

log:
  level: info   # debug, info, warn, error
  format: text  # text or json

ui:
  theme: nord  # nord, dracula, gruvbox, catppuccin
`
	return os.WriteFile(path, []byte(content), 0644)
}
