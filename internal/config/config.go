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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Engage    EngageConfig    `yaml:"engage" mapstructure:"engage"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the customer record store.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// AnthropicConfig holds Anthropic API settings for the insight provider.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	AnalysisMaxTokens int64   `yaml:"analysis_max_tokens" mapstructure:"analysis_max_tokens"`
	MessageMaxTokens  int64   `yaml:"message_max_tokens" mapstructure:"message_max_tokens"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec    float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// EngageConfig holds classification and contact-policy thresholds.
// Defaults follow the strictest revision of the engagement rules; see
// DESIGN.md for the threshold provenance.
type EngageConfig struct {
	TargetSegment       string  `yaml:"target_segment" mapstructure:"target_segment"`
	HighChurnRisk       int     `yaml:"high_churn_risk" mapstructure:"high_churn_risk"`
	MediumChurnRisk     int     `yaml:"medium_churn_risk" mapstructure:"medium_churn_risk"`
	ContactChurnRisk    int     `yaml:"contact_churn_risk" mapstructure:"contact_churn_risk"`
	RetentionChurnRisk  int     `yaml:"retention_churn_risk" mapstructure:"retention_churn_risk"`
	LowEngagement       int     `yaml:"low_engagement" mapstructure:"low_engagement"`
	VeryLowEngagement   int     `yaml:"very_low_engagement" mapstructure:"very_low_engagement"`
	LowSatisfaction     int     `yaml:"low_satisfaction" mapstructure:"low_satisfaction"`
	HighDailyUsageKWh   float64 `yaml:"high_daily_usage_kwh" mapstructure:"high_daily_usage_kwh"`
	DormantTenureYears  float64 `yaml:"dormant_tenure_years" mapstructure:"dormant_tenure_years"`
	UnopenedNotifyRatio float64 `yaml:"unopened_notify_ratio" mapstructure:"unopened_notify_ratio"`
	MediumContactRisk   int     `yaml:"medium_contact_risk" mapstructure:"medium_contact_risk"`
	LowContactRiskFloor int     `yaml:"low_contact_risk_floor" mapstructure:"low_contact_risk_floor"`
}

// BatchConfig configures batch classification runs.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API server.
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
	v.SetEnvPrefix("ENGAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.database_path", "customer_data.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.analysis_max_tokens", 600)
	v.SetDefault("anthropic.message_max_tokens", 200)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.requests_per_sec", 2.0)
	v.SetDefault("engage.target_segment", "Value Seekers")
	v.SetDefault("engage.high_churn_risk", 70)
	v.SetDefault("engage.medium_churn_risk", 40)
	v.SetDefault("engage.contact_churn_risk", 60)
	v.SetDefault("engage.retention_churn_risk", 80)
	v.SetDefault("engage.low_engagement", 30)
	v.SetDefault("engage.very_low_engagement", 20)
	v.SetDefault("engage.low_satisfaction", 3)
	v.SetDefault("engage.high_daily_usage_kwh", 30)
	v.SetDefault("engage.dormant_tenure_years", 2)
	v.SetDefault("engage.unopened_notify_ratio", 0.5)
	v.SetDefault("engage.medium_contact_risk", 5)
	v.SetDefault("engage.low_contact_risk_floor", 6)

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
