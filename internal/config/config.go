package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tayloree/foodcat/internal/api"
)

// Config holds all configuration for foodcat.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Matching MatchingConfig `mapstructure:"matching"`
	Data     DataConfig     `mapstructure:"data"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// CatalogConfig configures the catalog API client.
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Dealers           []string      `mapstructure:"dealers"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Retries           int           `mapstructure:"retries"`
}

// MatchingConfig holds categorization defaults.
type MatchingConfig struct {
	MatchItemsLimit   int `mapstructure:"match_items_limit"`
	FilterItemsLimit  int `mapstructure:"filter_items_limit"`
	AccuracyThreshold int `mapstructure:"accuracy_threshold"`
	Workers           int `mapstructure:"workers"`
}

// DataConfig locates input and output files.
type DataConfig struct {
	Dir            string `mapstructure:"dir"`
	CategoriesFile string `mapstructure:"categories_file"`
}

// StoreConfig configures the SQLite sink.
type StoreConfig struct {
	Path       string        `mapstructure:"path"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port              string `mapstructure:"port"`
	Environment       string `mapstructure:"environment"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads .env, an optional foodcat.yaml and FOODCAT_* environment
// variables, in increasing precedence over the built-in defaults. When path
// is set that file must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("foodcat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.config/foodcat")
	}

	v.SetEnvPrefix("FOODCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// BUSINESS_IDS is the variable name older deployments use.
	if err := v.BindEnv("catalog.dealers", "FOODCAT_CATALOG_DEALERS", "BUSINESS_IDS"); err != nil {
		return nil, fmt.Errorf("binding dealer env: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "https://squid-api.tjek.com/v2")
	v.SetDefault("catalog.dealers", []string{})
	v.SetDefault("catalog.requests_per_second", 5)
	v.SetDefault("catalog.timeout", "15s")
	v.SetDefault("catalog.retries", 3)

	v.SetDefault("matching.match_items_limit", 2)
	v.SetDefault("matching.filter_items_limit", 0)
	v.SetDefault("matching.accuracy_threshold", 40)
	v.SetDefault("matching.workers", 0)

	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.categories_file", "Foodcomponent.json")

	v.SetDefault("store.path", "data/foodcat.db")
	v.SetDefault("store.batch_size", 50)
	v.SetDefault("store.batch_delay", "500ms")

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.requests_per_minute", 120)

	v.SetDefault("log.level", "info")
}

func validate(cfg *Config) error {
	m := cfg.Matching
	switch {
	case m.AccuracyThreshold < 0 || m.AccuracyThreshold > 100:
		return fmt.Errorf("matching.accuracy_threshold must be within 0-100, got %d", m.AccuracyThreshold)
	case m.MatchItemsLimit < 0 || m.FilterItemsLimit < 0:
		return fmt.Errorf("matching item limits must not be negative")
	case m.Workers < 0:
		return fmt.Errorf("matching.workers must not be negative, got %d", m.Workers)
	case cfg.Store.BatchSize < 1:
		return fmt.Errorf("store.batch_size must be at least 1, got %d", cfg.Store.BatchSize)
	case cfg.Store.BatchDelay < 0:
		return fmt.Errorf("store.batch_delay must not be negative")
	case cfg.Catalog.RequestsPerSecond <= 0:
		return fmt.Errorf("catalog.requests_per_second must be positive")
	case cfg.Catalog.Retries < 0:
		return fmt.Errorf("catalog.retries must not be negative")
	case strings.TrimSpace(cfg.Server.Port) == "":
		return fmt.Errorf("server.port is required")
	case cfg.Server.RequestsPerMinute < 0:
		return fmt.Errorf("server.requests_per_minute must not be negative")
	}
	if _, err := log.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := cfg.Catalog.DealerList(); err != nil {
		return fmt.Errorf("catalog.dealers: %w", err)
	}
	return nil
}

// DealerList parses the configured dealers.
func (c CatalogConfig) DealerList() ([]api.Dealer, error) {
	return api.ParseDealers(strings.Join(c.Dealers, ","))
}

// ClientOptions converts the catalog settings to client options.
func (c CatalogConfig) ClientOptions() api.Options {
	return api.Options{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		Retries:           c.Retries,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// CategoriesPath returns the category reference file path.
func (d DataConfig) CategoriesPath() string {
	if filepath.IsAbs(d.CategoriesFile) {
		return d.CategoriesFile
	}
	return filepath.Join(d.Dir, d.CategoriesFile)
}

// Path joins name onto the data directory.
func (d DataConfig) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}
