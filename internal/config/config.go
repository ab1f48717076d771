package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	UI      UIConfig      `mapstructure:"ui"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type GeneralConfig struct {
	// Records is a doublestar glob of json/yaml/csv files loaded as the record set
	Records       string   `mapstructure:"records"`
	SearchFields  []string `mapstructure:"search_fields"`
	ExportColumns []string `mapstructure:"export_columns"`
	PostgresDSN   string   `mapstructure:"postgres_dsn"`
	PostgresQuery string   `mapstructure:"postgres_query"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	DefaultView  string `mapstructure:"default_view"`
	GridColumns  int    `mapstructure:"grid_columns"`
}

type StorageConfig struct {
	// Backend is one of file, sqlite, redis or memory
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	Key        string `mapstructure:"key"`
	RedisURL   string `mapstructure:"redis_url"`
	TimeoutMs  int    `mapstructure:"timeout_ms"`
	SeedSystem bool   `mapstructure:"seed_system"`

	// HistoryPath is the sqlite database of past queries, empty disables it
	HistoryPath string `mapstructure:"history_path"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	Encoding    string `mapstructure:"encoding"`
	Output      string `mapstructure:"output"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	Mode    string `mapstructure:"mode"`
	MaxBody int64  `mapstructure:"max_body"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// EnvPrefix prefixes environment overrides, e.g. LAZYFACET_STORAGE_BACKEND
const EnvPrefix = "LAZYFACET"

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	dir, err := GetConfigPath()
	if err != nil {
		dir = "."
	}

	return &Config{
		General: GeneralConfig{
			SearchFields: []string{"name", "description"},
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
			DefaultView:  "list",
			GridColumns:  3,
		},
		Storage: StorageConfig{
			Backend:    "file",
			Path:       filepath.Join(dir, "presets.json"),
			Key:        "filter-presets",
			TimeoutMs:  2000,
			SeedSystem: true,

			HistoryPath: filepath.Join(dir, "history.db"),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
			Output:   "stderr",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Mode:    "release",
			MaxBody: 32 << 20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()

	v.SetDefault("general.records", d.General.Records)
	v.SetDefault("general.search_fields", d.General.SearchFields)
	v.SetDefault("general.export_columns", d.General.ExportColumns)
	v.SetDefault("general.postgres_dsn", d.General.PostgresDSN)
	v.SetDefault("general.postgres_query", d.General.PostgresQuery)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.default_view", d.UI.DefaultView)
	v.SetDefault("ui.grid_columns", d.UI.GridColumns)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.key", d.Storage.Key)
	v.SetDefault("storage.redis_url", d.Storage.RedisURL)
	v.SetDefault("storage.timeout_ms", d.Storage.TimeoutMs)
	v.SetDefault("storage.seed_system", d.Storage.SeedSystem)
	v.SetDefault("storage.history_path", d.Storage.HistoryPath)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.max_body", d.Server.MaxBody)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load loads configuration from the standard locations. A missing file is
// not an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")

	// Add config paths in priority order
	// 1. User config directory
	if configDir, err := GetConfigPath(); err == nil {
		v.AddConfigPath(configDir)
	}

	// 2. Current directory
	v.AddConfigPath(".")

	// 3. Default config directory
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFile loads configuration from an explicit file
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyfacet"), nil
}
