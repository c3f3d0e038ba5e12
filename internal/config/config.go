// Package config loads the bot configuration from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"crosstab/internal/domain/bot"
	"crosstab/internal/domain/reports"
)

// EnvPrefix prefixes every environment override, e.g. CROSSTAB_SERVER_PORT.
const EnvPrefix = "CROSSTAB"

// Config is the full bot configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Server   ServerConfig   `mapstructure:"server"`
	Pyrus    PyrusConfig    `mapstructure:"pyrus"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// Alias maps a generic column code to a form-specific one. Codes are
// case-sensitive, so aliases are a list rather than a map.
type Alias struct {
	Code  string `mapstructure:"code" validate:"required"`
	Alias string `mapstructure:"alias" validate:"required"`
}

// BotConfig holds the report engine settings.
type BotConfig struct {
	AllowForms      []int   `mapstructure:"allow_forms"`
	ServiceAliases  []Alias `mapstructure:"mapping_for_service_field" validate:"dive"`
	TotalCode       string  `mapstructure:"total_code"`
	RegistryCode    string  `mapstructure:"registry_code"`
	FiltersCode     string  `mapstructure:"code_additional_filters"`
	TotalLabel      string  `mapstructure:"total_label" validate:"required"`
	RegistryHost    string  `mapstructure:"registry_host" validate:"required,hostname"`
	ApproveOnRun    bool    `mapstructure:"approve_on_run"`
	ApprovalComment string  `mapstructure:"approval_comment"`
}

// Runner converts the bot section into run-level switches.
func (b BotConfig) Runner() bot.Config {
	return bot.Config{
		AllowForms:      b.AllowForms,
		ApproveOnRun:    b.ApproveOnRun,
		ApprovalComment: b.ApprovalComment,
	}
}

// Reports converts the bot section into report engine settings.
func (b BotConfig) Reports() reports.Config {
	aliases := make(map[string]string, len(b.ServiceAliases))
	for _, a := range b.ServiceAliases {
		aliases[a.Code] = a.Alias
	}
	return reports.Config{
		Aliases:      aliases,
		TotalCode:    b.TotalCode,
		RegistryCode: b.RegistryCode,
		FiltersCode:  b.FiltersCode,
		TotalLabel:   b.TotalLabel,
		RegistryHost: b.RegistryHost,
	}
}

// ServerConfig holds the webhook server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	SecretKey       string        `mapstructure:"secret_key"`
	SkipSignature   bool          `mapstructure:"skip_signature"`
	Workers         int           `mapstructure:"workers" validate:"min=1"`
	QueueSize       int           `mapstructure:"queue_size" validate:"min=0"`
	AdminJWTSecret  string        `mapstructure:"admin_jwt_secret" validate:"omitempty,min=16"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PyrusConfig holds the platform API settings.
type PyrusConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	AuthURL     string        `mapstructure:"auth_url" validate:"omitempty,url"`
	Login       string        `mapstructure:"login"`
	SecurityKey string        `mapstructure:"security_key"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"min=0"`
	RetryCount  int           `mapstructure:"retry_count" validate:"min=0,max=10"`
}

// DatabaseConfig enables the run journal when URL is set.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns" validate:"min=0"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.allow_forms", []int{})
	v.SetDefault("bot.mapping_for_service_field", []map[string]string{})
	v.SetDefault("bot.total_code", "")
	v.SetDefault("bot.registry_code", "")
	v.SetDefault("bot.code_additional_filters", "")
	v.SetDefault("bot.total_label", reports.DefaultTotalLabel)
	v.SetDefault("bot.registry_host", reports.DefaultRegistryHost)
	v.SetDefault("bot.approve_on_run", true)
	v.SetDefault("bot.approval_comment", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.secret_key", "")
	v.SetDefault("server.skip_signature", false)
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.queue_size", 64)
	v.SetDefault("server.admin_jwt_secret", "")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("pyrus.base_url", "https://api.pyrus.com/v4")
	v.SetDefault("pyrus.auth_url", "")
	v.SetDefault("pyrus.login", "")
	v.SetDefault("pyrus.security_key", "")
	v.SetDefault("pyrus.timeout", time.Duration(0))
	v.SetDefault("pyrus.retry_count", 2)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads path (JSON or YAML by extension) when given, overlays
// CROSSTAB_* environment variables and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if (c.Pyrus.Login == "") != (c.Pyrus.SecurityKey == "") {
		return errors.New("invalid config: pyrus.login and pyrus.security_key must be set together")
	}
	return nil
}

// ValidateServer checks settings that only the webhook server needs.
func (c *Config) ValidateServer() error {
	if !c.Server.SkipSignature && c.Server.SecretKey == "" {
		return errors.New("invalid config: server.secret_key is required unless server.skip_signature is set")
	}
	return nil
}

// ValidateCLI checks settings that only the one-shot runner needs.
func (c *Config) ValidateCLI() error {
	if c.Pyrus.Login == "" {
		return errors.New("invalid config: pyrus.login and pyrus.security_key are required")
	}
	return nil
}
