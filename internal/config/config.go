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
	Scorer ScorerConfig `yaml:"scorer" mapstructure:"scorer"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ScorerConfig configures the opportunity scoring engine: the component
// weight vector (should sum to 1.0) and the income curve parameters.
// Validation lives in the scorer package; a ScorerConfig is just data.
type ScorerConfig struct {
	IncomeWeight      float64 `yaml:"income_weight" mapstructure:"income_weight"`
	RenterWeight      float64 `yaml:"renter_weight" mapstructure:"renter_weight"`
	DensityWeight     float64 `yaml:"density_weight" mapstructure:"density_weight"`
	CompetitionWeight float64 `yaml:"competition_weight" mapstructure:"competition_weight"`

	// Income Gaussian: score peaks at Ideal and decays with Spread.
	IncomeIdeal  float64 `yaml:"income_ideal" mapstructure:"income_ideal"`
	IncomeSpread float64 `yaml:"income_spread" mapstructure:"income_spread"`

	// TopN is the default size of the top slice shown by the CLI.
	TopN int `yaml:"top_n" mapstructure:"top_n"`

	// MinScore is the composite threshold above which an area counts
	// as a high-opportunity market.
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
}

// ServerConfig configures the scoring API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// BatchConfig configures concurrent multi-file scoring.
type BatchConfig struct {
	MaxConcurrentFiles int `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
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
	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_files", 4)
	v.SetDefault("scorer.income_weight", 0.25)
	v.SetDefault("scorer.renter_weight", 0.30)
	v.SetDefault("scorer.density_weight", 0.25)
	v.SetDefault("scorer.competition_weight", 0.20)
	v.SetDefault("scorer.income_ideal", 50000)
	v.SetDefault("scorer.income_spread", 40000)
	v.SetDefault("scorer.top_n", 10)
	v.SetDefault("scorer.min_score", 75)

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
