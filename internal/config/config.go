package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Pricing    PricingConfig    `yaml:"pricing" mapstructure:"pricing"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the snapshot store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CatalogConfig configures where the product catalog is loaded from.
// Source is "fixture", "sqlite" or "postgres". Fixture is the path of a JSON
// or YAML catalog file; Path is the sqlite database file.
type CatalogConfig struct {
	Source      string `yaml:"source" mapstructure:"source"`
	Fixture     string `yaml:"fixture" mapstructure:"fixture"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PricingConfig holds the calculation defaults. These match the office's
// standard rates and are overridable per project in the input.
type PricingConfig struct {
	HourlyRate            float64 `yaml:"hourly_rate" mapstructure:"hourly_rate"`
	ProductMarginPercent  float64 `yaml:"product_margin_percent" mapstructure:"product_margin_percent"`
	MaterialMarginPercent float64 `yaml:"material_margin_percent" mapstructure:"material_margin_percent"`
	VATPercent            float64 `yaml:"vat_percent" mapstructure:"vat_percent"`
}

// ImportConfig configures supplier price-list imports.
type ImportConfig struct {
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	Delimiter   string `yaml:"delimiter" mapstructure:"delimiter"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	FTPUsername string `yaml:"ftp_username" mapstructure:"ftp_username"`
	FTPPassword string `yaml:"ftp_password" mapstructure:"ftp_password"`
}

// NotionConfig holds the Notion integration token and target database.
type NotionConfig struct {
	Token      string `yaml:"token" mapstructure:"token"`
	EstimateDB string `yaml:"estimate_db" mapstructure:"estimate_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// AnthropicConfig holds Anthropic API settings for offer-text generation.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the estimation HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "kalk.db")
	v.SetDefault("catalog.source", "fixture")
	v.SetDefault("catalog.fixture", "katalog.yaml")
	v.SetDefault("catalog.path", "kalk.db")
	v.SetDefault("pricing.hourly_rate", 495)
	v.SetDefault("pricing.product_margin_percent", 25)
	v.SetDefault("pricing.material_margin_percent", 40)
	v.SetDefault("pricing.vat_percent", 25)
	v.SetDefault("import.batch_size", 500)
	v.SetDefault("import.concurrency", 4)
	v.SetDefault("import.delimiter", ";")
	v.SetDefault("import.user_agent", "kalk-cli/1.0")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
