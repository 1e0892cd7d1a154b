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
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds the analytical engine thresholds and rule tables.
type EngineConfig struct {
	SuccessThreshold     float64             `yaml:"success_threshold" mapstructure:"success_threshold"`
	CriticalThreshold    float64             `yaml:"critical_threshold" mapstructure:"critical_threshold"`
	QuickWinLow          float64             `yaml:"quick_win_low" mapstructure:"quick_win_low"`
	QuickWinHigh         float64             `yaml:"quick_win_high" mapstructure:"quick_win_high"`
	TopOpportunities     int                 `yaml:"top_opportunities_limit" mapstructure:"top_opportunities_limit"`
	MaxSuccessStories    int                 `yaml:"max_success_stories" mapstructure:"max_success_stories"`
	EvidenceCaps         map[string]int      `yaml:"evidence_truncation_caps" mapstructure:"evidence_truncation_caps"`
	ThemeKeywords        map[string][]string `yaml:"theme_keyword_table" mapstructure:"theme_keyword_table"`
	ModelProviderHint    string              `yaml:"model_provider_hint" mapstructure:"model_provider_hint"`
}

// StoreConfig configures the optional run-snapshot store.
// Driver "none" disables persistence entirely.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AnthropicConfig holds settings for the injectable narrative generator.
type AnthropicConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	Model     string  `yaml:"model" mapstructure:"model"`
	MaxTokens int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPS       float64 `yaml:"rps" mapstructure:"rps"`
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
	v.SetEnvPrefix("BRANDAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("engine.success_threshold", 7.5)
	v.SetDefault("engine.critical_threshold", 4.0)
	v.SetDefault("engine.quick_win_low", 2.0)
	v.SetDefault("engine.quick_win_high", 6.0)
	v.SetDefault("engine.top_opportunities_limit", 10)
	v.SetDefault("engine.max_success_stories", 10)
	v.SetDefault("engine.evidence_truncation_caps", map[string]int{
		"evidence":                  500,
		"business_impact":           300,
		"effective_copy_examples":   400,
		"ineffective_copy_examples": 400,
		"trust_assessment":          200,
		"information_gaps":          200,
	})
	v.SetDefault("store.driver", "none")
	v.SetDefault("store.sqlite_path", "brand_audit.db")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.rps", 1.0)
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
