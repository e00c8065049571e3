// Package config loads application configuration from file and environment
// and owns global logger setup.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. The pipeline core never
// reads or persists configuration itself; it receives these values from the
// command layer.
type Config struct {
	Window  WindowConfig  `yaml:"window" mapstructure:"window"`
	Ages    AgesConfig    `yaml:"ages" mapstructure:"ages"`
	Phone   PhoneConfig   `yaml:"phone" mapstructure:"phone"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	ERPNext ERPNextConfig `yaml:"erpnext" mapstructure:"erpnext"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// WindowConfig holds the inclusive processing date window. End may precede
// start, in which case the window wraps the year boundary.
type WindowConfig struct {
	Start string `yaml:"start" mapstructure:"start"` // 2006-01-02
	End   string `yaml:"end" mapstructure:"end"`
}

// Parse returns the window bounds as dates.
func (w WindowConfig) Parse() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", w.Start)
	if err != nil {
		return start, end, eris.Wrap(err, "config: parse window start")
	}
	end, err = time.Parse("2006-01-02", w.End)
	if err != nil {
		return start, end, eris.Wrap(err, "config: parse window end")
	}
	return start, end, nil
}

// AgesConfig bounds the turning age of exported children.
type AgesConfig struct {
	Min int `yaml:"min" mapstructure:"min"`
	Max int `yaml:"max" mapstructure:"max"`
}

// PhoneConfig configures phone normalization.
type PhoneConfig struct {
	// Validate enables the international parser fallback and requires a
	// valid phone on every exported child.
	Validate bool   `yaml:"validate" mapstructure:"validate"`
	Region   string `yaml:"region" mapstructure:"region"`
}

// OutputConfig configures the export writers.
type OutputConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	WriteCSV  bool   `yaml:"write_csv" mapstructure:"write_csv"`
	WriteXLSX bool   `yaml:"write_xlsx" mapstructure:"write_xlsx"`
}

// ERPNextConfig holds the remote CRM credentials.
type ERPNextConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	APISecret string  `yaml:"api_secret" mapstructure:"api_secret"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
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
	v.SetEnvPrefix("BIRTHDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ages.min", 2)
	v.SetDefault("ages.max", 12)
	v.SetDefault("phone.validate", false)
	v.SetDefault("phone.region", "AE")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.write_csv", true)
	v.SetDefault("output.write_xlsx", false)
	v.SetDefault("erpnext.rate_limit", 5)
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
